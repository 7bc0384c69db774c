// Package snapshot defines the JSON document produced by dump and consumed
// by upload. The file layout is the tool's one bit-exact contract: a dump
// written by one version must upload with any other.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
)

// Document is the exported representation of one or more containers.
// Container and item order is the order observed at dump time; it is
// deterministic per invocation but carries no semantic meaning.
type Document struct {
	Database        string           `json:"database"`
	ExportedAt      time.Time        `json:"exportedAt"`
	TotalContainers int              `json:"totalContainers"`
	TotalItems      int              `json:"totalItems"`
	Containers      []ContainerEntry `json:"containers"`
}

// ContainerEntry holds one container's descriptor and its items.
type ContainerEntry struct {
	Name             string           `json:"name"`
	PartitionKeyPath string           `json:"partitionKeyPath"`
	Throughput       *int32           `json:"throughput"`
	TotalItems       int              `json:"totalItems"`
	Items            []clientpkg.Item `json:"items"`
}

// Descriptor returns the container descriptor carried by the entry.
func (e *ContainerEntry) Descriptor() clientpkg.Container {
	return clientpkg.Container{
		Name:             e.Name,
		PartitionKeyPath: e.PartitionKeyPath,
		Throughput:       e.Throughput,
		ItemCount:        int64(len(e.Items)),
	}
}

// FormatError reports a snapshot file that does not match the expected schema.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid snapshot %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid snapshot %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is a snapshot schema violation.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// New assembles a document over the given entries, stamping counts.
func New(database string, exportedAt time.Time, entries []ContainerEntry) *Document {
	doc := &Document{
		Database:        database,
		ExportedAt:      exportedAt.UTC(),
		TotalContainers: len(entries),
		Containers:      entries,
	}
	for i := range entries {
		doc.Containers[i].TotalItems = len(entries[i].Items)
		doc.TotalItems += len(entries[i].Items)
	}
	return doc
}

// legacyDocument is the single-container layout emitted by early versions of
// the dump tooling. Still accepted on upload.
type legacyDocument struct {
	Container    string           `json:"container"`
	PartitionKey json.RawMessage  `json:"partition_key"`
	Items        []clientpkg.Item `json:"items"`
}

// Read loads and validates a snapshot file. Schema violations are returned
// as *FormatError before any decoding result is handed to the caller.
func Read(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(raw, path)
}

// Decode parses snapshot bytes. The path is used only in error messages.
func Decode(raw []byte, path string) (*Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &FormatError{Path: path, Reason: "file is empty"}
	}
	if trimmed[0] != '{' {
		return nil, &FormatError{Path: path, Reason: "expected a JSON object at the top level"}
	}

	// Sniff for the multi-container layout first; fall back to legacy.
	var shape struct {
		Containers json.RawMessage `json:"containers"`
		Container  json.RawMessage `json:"container"`
	}
	if err := json.Unmarshal(trimmed, &shape); err != nil {
		return nil, &FormatError{Path: path, Reason: "not valid JSON", Err: err}
	}

	if len(shape.Containers) > 0 && !bytes.Equal(bytes.TrimSpace(shape.Containers), []byte("null")) {
		var doc Document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, &FormatError{Path: path, Reason: "container entries do not match the expected schema", Err: err}
		}
		for i := range doc.Containers {
			if doc.Containers[i].Name == "" {
				return nil, &FormatError{Path: path, Reason: fmt.Sprintf("container entry %d has no name", i)}
			}
			if doc.Containers[i].Items == nil {
				doc.Containers[i].Items = []clientpkg.Item{}
			}
		}
		return &doc, nil
	}

	if len(shape.Container) > 0 {
		return decodeLegacy(trimmed, path)
	}
	return nil, &FormatError{Path: path, Reason: `missing "containers" array`}
}

func decodeLegacy(raw []byte, path string) (*Document, error) {
	var legacy legacyDocument
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, &FormatError{Path: path, Reason: "legacy single-container layout does not match", Err: err}
	}
	if legacy.Container == "" {
		return nil, &FormatError{Path: path, Reason: "legacy snapshot has an empty container name"}
	}
	entry := ContainerEntry{
		Name:             legacy.Container,
		PartitionKeyPath: legacyPartitionKeyPath(legacy.PartitionKey),
		TotalItems:       len(legacy.Items),
		Items:            legacy.Items,
	}
	if entry.Items == nil {
		entry.Items = []clientpkg.Item{}
	}
	return &Document{
		TotalContainers: 1,
		TotalItems:      len(entry.Items),
		Containers:      []ContainerEntry{entry},
	}, nil
}

// legacyPartitionKeyPath accepts the shapes the old tooling wrote: a plain
// path string or a Cosmos partitionKey object with a "paths" array.
func legacyPartitionKeyPath(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var obj struct {
		Paths []string `json:"paths"`
	}
	if err := json.Unmarshal(trimmed, &obj); err == nil && len(obj.Paths) > 0 {
		return obj.Paths[0]
	}
	return ""
}

// Write serializes the document to path atomically: the bytes land in a temp
// file in the destination directory and are renamed into place, so a failed
// dump never leaves a partial snapshot behind.
func (d *Document) Write(path string, pretty bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var raw []byte
	var err error
	if pretty {
		raw, err = json.MarshalIndent(d, "", "  ")
	} else {
		raw, err = json.Marshal(d)
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalize snapshot: %w", err)
	}
	return nil
}
