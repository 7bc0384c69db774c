package version

import (
	"fmt"
	"strings"
)

// Name identifies the CLI in user agents and metadata.
const Name = "cosmosctl"

// Version holds the CLI version. It can be overridden at build time via -ldflags.
var Version = "dev"

// value returns a sanitized version string.
func value() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	return v
}

// String returns the sanitized version for display.
func String() string {
	return value()
}

// UserAgent returns the application identifier sent with SDK requests.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", Name, value())
}
