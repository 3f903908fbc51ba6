package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configDirEnvKey,
		trustProjectConfigEnvKey,
		"SPRINTDESK_API_URL",
		"SPRINTDESK_DB",
		"SPRINTDESK_STORAGE_DRIVER",
		"SPRINTDESK_TIMEZONE",
		"SPRINTDESK_PG_HOST",
		"SPRINTDESK_PG_PORT",
		"SPRINTDESK_PG_USER",
		"SPRINTDESK_PG_PASSWORD",
		"SPRINTDESK_PG_DBNAME",
		"SPRINTDESK_PG_SSLMODE",
		"SPRINTDESK_PG_MAX_CONNS",
	} {
		t.Setenv(key, "")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default API URL, got %q", cfg.APIURL)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("expected UTC timezone, got %q", cfg.Timezone)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.DBPath != "" {
		t.Fatalf("expected empty db path, got %q", cfg.Storage.DBPath)
	}
	if cfg.Storage.Postgres.Port != 5432 || cfg.Storage.Postgres.MaxConns != DefaultPostgresMaxConns {
		t.Fatalf("unexpected postgres defaults: %+v", cfg.Storage.Postgres)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(`api_url = "http://localhost:9999"
log_level = "warn"
timezone = "Europe/Berlin"

[storage]
driver = "postgres"

[storage.postgres]
host = "db.internal"
dbname = "sprintdesk"
max_conns = 12
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://localhost:9999" {
		t.Fatalf("expected api_url override, got %q", cfg.APIURL)
	}
	if cfg.LogLevel != "warn" || cfg.Timezone != "Europe/Berlin" {
		t.Fatalf("unexpected log level/timezone: %q %q", cfg.LogLevel, cfg.Timezone)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.Storage.Driver)
	}
	pg := cfg.Storage.Postgres
	if pg.Host != "db.internal" || pg.DBName != "sprintdesk" || pg.MaxConns != 12 {
		t.Fatalf("unexpected postgres config: %+v", pg)
	}
	if pg.Port != DefaultPostgresPort {
		t.Fatalf("expected default port to survive partial table, got %d", pg.Port)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFile("/nonexistent/path/"+configFileName, &cfg); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("defaults should be preserved")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte("api_url = [\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := Default()
	if err := loadFile(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPostgresDSN(t *testing.T) {
	pg := PostgresConfig{
		Host:     "db",
		Port:     5433,
		User:     "app",
		Password: "p@ss",
		DBName:   "work",
		SSLMode:  "require",
	}
	want := "postgres://app:p%40ss@db:5433/work?sslmode=require"
	if got := pg.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	pg.User = ""
	pg.SSLMode = ""
	if got := pg.DSN(); got != "postgres://db:5433/work" {
		t.Fatalf("unexpected anonymous dsn: %q", got)
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v (err: %v)", loc, err)
	}

	cfg.Timezone = "America/New_York"
	loc, err = cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "America/New_York" {
		t.Fatalf("unexpected location %s", loc)
	}

	cfg.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range AllowedKeys() {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	for _, key := range []string{"", "db_path", "storage", "storage.postgres"} {
		if IsAllowedKey(key) {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestGetKey(t *testing.T) {
	cfg := Default()
	cfg.APIURL = "http://test:1234"
	cfg.Storage.DBPath = "/tmp/test.db"
	cfg.Storage.Postgres.Password = "secret"
	cfg.Storage.Postgres.MaxConns = 9

	cases := map[string]string{
		"api_url":                    "http://test:1234",
		"log_level":                  DefaultLogLevel,
		"timezone":                   "UTC",
		"storage.driver":             "sqlite",
		"storage.db_path":            "/tmp/test.db",
		"storage.postgres.port":      "5432",
		"storage.postgres.password":  "********",
		"storage.postgres.max_conns": "9",
	}
	for key, want := range cases {
		got, err := cfg.Get(key)
		if err != nil || got != want {
			t.Fatalf("Get(%q) = %q (err: %v), want %q", key, got, err, want)
		}
	}
	if _, err := cfg.Get("invalid"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSetKeyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "new.toml")
	if err := SetKey(path, "api_url", "http://127.0.0.1:9000"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9000" {
		t.Fatalf("unexpected api_url %q", cfg.APIURL)
	}
}

func TestSetKeyUpdatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.toml")
	if err := os.WriteFile(path, []byte("log_level = \"debug\"\napi_url = \"http://keep\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := SetKey(path, "log_level", "error"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected 'error', got %q", cfg.LogLevel)
	}
	if cfg.APIURL != "http://keep" {
		t.Fatalf("expected preserved api_url 'http://keep', got %q", cfg.APIURL)
	}
}

func TestSetNestedStorageKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.toml")
	if err := SetKey(path, "storage.driver", "Postgres"); err != nil {
		t.Fatalf("set driver: %v", err)
	}
	if err := SetKey(path, "storage.postgres.port", "6543"); err != nil {
		t.Fatalf("set port: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Fatalf("expected normalized driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Postgres.Port != 6543 {
		t.Fatalf("expected port 6543, got %d", cfg.Storage.Postgres.Port)
	}
}

func TestSetKeyRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.toml")
	cases := []struct {
		key   string
		value string
	}{
		{"invalid_key", "value"},
		{"storage.postgres.port", "zero"},
		{"storage.postgres.max_conns", "-1"},
		{"storage.driver", "mysql"},
		{"timezone", "Mars/Olympus"},
	}
	for _, tc := range cases {
		if err := SetKey(path, tc.key, tc.value); err == nil {
			t.Fatalf("expected error for %s=%q", tc.key, tc.value)
		}
	}
}

func TestConfigDirOverridePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)

	globalPath, err := GlobalPath()
	if err != nil {
		t.Fatalf("global path: %v", err)
	}
	if globalPath != filepath.Join(dir, configFileName) {
		t.Fatalf("unexpected global path: %s", globalPath)
	}

	projectPath, err := ProjectPath()
	if err != nil {
		t.Fatalf("project path: %v", err)
	}
	if projectPath != filepath.Join(dir, configFileName) {
		t.Fatalf("unexpected project path: %s", projectPath)
	}
}

func TestLoadConfigDirOverride(t *testing.T) {
	clearEnv(t)
	configDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(configDir, configFileName), []byte("api_url = \"http://127.0.0.1:9001\"\n"), 0o644); err != nil {
		t.Fatalf("write override config: %v", err)
	}

	workspace := t.TempDir()
	if err := os.WriteFile(filepath.Join(workspace, configFileName), []byte("api_url = \"http://ignored\"\n"), 0o644); err != nil {
		t.Fatalf("write workspace config: %v", err)
	}
	chdir(t, workspace)

	t.Setenv(configDirEnvKey, configDir)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9001" {
		t.Fatalf("expected config-dir api_url override, got %q", cfg.APIURL)
	}
	if cfg.Storage.DBPath != filepath.Join(workspace, DefaultDBFileName) {
		t.Fatalf("expected default workspace db path, got %q", cfg.Storage.DBPath)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv("SPRINTDESK_API_URL", "http://example.com:8080")
	t.Setenv("SPRINTDESK_DB", "/tmp/override.db")
	t.Setenv("SPRINTDESK_STORAGE_DRIVER", "postgres")
	t.Setenv("SPRINTDESK_TIMEZONE", "Asia/Tokyo")
	t.Setenv("SPRINTDESK_PG_HOST", "pg")
	t.Setenv("SPRINTDESK_PG_PORT", "6000")
	t.Setenv("SPRINTDESK_PG_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://example.com:8080" {
		t.Fatalf("expected env override for API URL, got %q", cfg.APIURL)
	}
	if cfg.Storage.DBPath != "/tmp/override.db" {
		t.Fatalf("expected env override for DB path, got %q", cfg.Storage.DBPath)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Timezone != "Asia/Tokyo" {
		t.Fatalf("unexpected driver/timezone: %q %q", cfg.Storage.Driver, cfg.Timezone)
	}
	if cfg.Storage.Postgres.Host != "pg" || cfg.Storage.Postgres.Port != 6000 {
		t.Fatalf("unexpected postgres overrides: %+v", cfg.Storage.Postgres)
	}
	if cfg.Storage.Postgres.MaxConns != DefaultPostgresMaxConns {
		t.Fatalf("invalid max conns should be ignored, got %d", cfg.Storage.Postgres.MaxConns)
	}
}

func TestLoadFallsBackToDefaultsWhenConfiguredEmpty(t *testing.T) {
	clearEnv(t)
	homeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(homeDir, configFileName), []byte("log_level = \"\"\ntimezone = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write home config: %v", err)
	}
	chdir(t, t.TempDir())
	t.Setenv("HOME", homeDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Timezone != DefaultTimezone {
		t.Fatalf("expected default timezone, got %q", cfg.Timezone)
	}
}

func TestLoadIgnoresProjectConfigByDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	workspace := t.TempDir()
	if err := os.WriteFile(filepath.Join(workspace, configFileName), []byte("api_url = \"http://project\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	chdir(t, workspace)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("project config should be ignored, got %q", cfg.APIURL)
	}
	if cfg.TrustedProjectConfigPath != "" {
		t.Fatalf("expected no trusted project path, got %q", cfg.TrustedProjectConfigPath)
	}
}

func TestLoadAppliesProjectConfigWhenTrusted(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	workspace := t.TempDir()
	projectPath := filepath.Join(workspace, configFileName)
	if err := os.WriteFile(projectPath, []byte("api_url = \"http://project\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	chdir(t, workspace)
	t.Setenv(trustProjectConfigEnvKey, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://project" {
		t.Fatalf("expected project api_url, got %q", cfg.APIURL)
	}
	// macOS temp dirs resolve through /private; compare by base name.
	if filepath.Base(cfg.TrustedProjectConfigPath) != configFileName {
		t.Fatalf("unexpected trusted project path %q", cfg.TrustedProjectConfigPath)
	}
}
