package pipeline

import (
	"fmt"
	"strings"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
)

// Selector picks containers for a run: all of them, or an explicit name set.
type Selector struct {
	All   bool
	Names []string
}

// ParseSelector parses the --containers flag value: "all" (case-insensitive)
// selects everything, otherwise a comma-separated name list. An empty value
// yields an empty selector, which callers treat per command (dump requires
// one, upload defaults to all).
func ParseSelector(value string) Selector {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Selector{}
	}
	if strings.EqualFold(trimmed, "all") {
		return Selector{All: true}
	}
	var names []string
	for _, part := range strings.Split(trimmed, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return Selector{Names: names}
}

// IsZero reports whether the selector selects nothing.
func (s Selector) IsZero() bool {
	return !s.All && len(s.Names) == 0
}

// resolve filters available container descriptors by the selector, preserving
// the available order. Explicitly requested names that are absent fail with
// ErrNotFound naming every missing container.
func (s Selector) resolve(available []clientpkg.Container) ([]clientpkg.Container, error) {
	if s.All {
		return available, nil
	}
	byName := make(map[string]clientpkg.Container, len(available))
	for _, c := range available {
		byName[c.Name] = c
	}
	var missing []string
	for _, name := range s.Names {
		if _, ok := byName[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("containers %s: %w", strings.Join(missing, ", "), clientpkg.ErrNotFound)
	}
	requested := make(map[string]bool, len(s.Names))
	for _, name := range s.Names {
		requested[name] = true
	}
	var selected []clientpkg.Container
	for _, c := range available {
		if requested[c.Name] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}
