package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	configpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/config"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("COSMOS_ENDPOINT", "")
	t.Setenv("COSMOS_KEY", "")
	t.Setenv("COSMOS_DATABASE", "")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigSetPersistsField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := runCommand(t, "--config", path, "config", "set", "database", "appdb"); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}
	if _, err := runCommand(t, "--config", path, "config", "set", "endpoint", "https://acct.documents.azure.com"); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}

	cfg, err := configpkg.Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Database != "appdb" {
		t.Fatalf("expected database appdb, got %q", cfg.Database)
	}
	if cfg.Endpoint != "https://acct.documents.azure.com" {
		t.Fatalf("expected endpoint persisted, got %q", cfg.Endpoint)
	}
}

func TestConfigSetRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := runCommand(t, "--config", path, "config", "set", "nonsense", "value")
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestConfigUnsetClearsField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &configpkg.Config{Database: "appdb", Endpoint: "https://acct.documents.azure.com"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("seeding config: %v", err)
	}

	if _, err := runCommand(t, "--config", path, "config", "unset", "database"); err != nil {
		t.Fatalf("config unset returned error: %v", err)
	}
	got, err := configpkg.Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if got.Database != "" {
		t.Fatalf("expected database cleared, got %q", got.Database)
	}
	if got.Endpoint != "https://acct.documents.azure.com" {
		t.Fatal("unset must not clear other fields")
	}
}

func TestConfigShowMasksKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &configpkg.Config{Key: "super-secret-account-key"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("seeding config: %v", err)
	}

	out, err := runCommand(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if strings.Contains(out, "super-secret-account-key") {
		t.Fatal("config show must not print the raw key")
	}
	if !strings.Contains(out, "sup") || !strings.Contains(out, "key") {
		t.Fatalf("masked key should keep the edges, got:\n%s", out)
	}
}

func TestConnectionCommandsRequireParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	for _, args := range [][]string{
		{"--config", path, "status"},
		{"--config", path, "dump", "-c", "all", "-o", filepath.Join(t.TempDir(), "out.json")},
		{"--config", path, "delete-db", "--list-databases"},
	} {
		_, err := runCommand(t, args...)
		if err == nil {
			t.Fatalf("expected missing-parameter error for %v", args)
		}
		if !strings.Contains(err.Error(), "missing required connection parameters") {
			t.Fatalf("unexpected error for %v: %v", args, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !strings.Contains(out, "cosmosctl") {
		t.Fatalf("expected version output to name the tool, got:\n%s", out)
	}
}
