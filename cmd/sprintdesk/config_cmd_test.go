package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sprintdesk/internal/config"
)

func TestConfigEntriesCoverEveryKey(t *testing.T) {
	cfg := config.Default()
	cfg.Timezone = "America/New_York"
	cfg.Storage.Postgres.Password = "secret"

	entries, err := configEntries(&cfg)
	if err != nil {
		t.Fatalf("config entries: %v", err)
	}
	if len(entries) != len(config.AllowedKeys()) {
		t.Fatalf("expected %d entries, got %d", len(config.AllowedKeys()), len(entries))
	}
	values := make(map[string]string, len(entries))
	for _, entry := range entries {
		values[entry.Key] = entry.Value
	}
	if values["timezone"] != "America/New_York" {
		t.Fatalf("unexpected timezone entry %q", values["timezone"])
	}
	if values["storage.postgres.password"] == "secret" {
		t.Fatal("password printed in clear text")
	}
}

func TestConfigSetWritesOverrideDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SPRINTDESK_CONFIG_DIR", dir)

	cmd := newRootCmd(&config.Config{})
	cmd.SetArgs([]string{"config", "set", "timezone", "Europe/Berlin"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config set: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".sprintdesk.toml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), `timezone = "Europe/Berlin"`) {
		t.Fatalf("unexpected config file:\n%s", data)
	}

	cmd = newRootCmd(&config.Config{})
	cmd.SetArgs([]string{"config", "set", "timezone", "Mars/Olympus"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "IANA") {
		t.Fatalf("expected timezone validation error, got %v", err)
	}
}

func TestConfigGetRejectsUnknownKey(t *testing.T) {
	cfg := config.Default()
	if _, err := configValue(&cfg, "storage.nope"); err == nil || !strings.Contains(err.Error(), "allowed") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}
