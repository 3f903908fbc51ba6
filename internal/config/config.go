package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL        = "http://127.0.0.1:7480"
	DefaultDBFileName    = ".sprintdesk.db"
	DefaultLogLevel      = "info"
	DefaultTimezone      = "UTC"
	DefaultStorageDriver = "sqlite"

	DefaultPostgresHost     = "localhost"
	DefaultPostgresPort     = 5432
	DefaultPostgresSSLMode  = "disable"
	DefaultPostgresMaxConns = 4

	configFileName           = ".sprintdesk.toml"
	configDirEnvKey          = "SPRINTDESK_CONFIG_DIR"
	trustProjectConfigEnvKey = "SPRINTDESK_TRUST_PROJECT_CONFIG"
)

// PostgresConfig holds connection settings for the postgres storage driver.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
	SSLMode  string `toml:"sslmode"`
	MaxConns int    `toml:"max_conns"`
}

// StorageConfig selects the database backend.
type StorageConfig struct {
	Driver   string         `toml:"driver"`
	DBPath   string         `toml:"db_path"`
	Postgres PostgresConfig `toml:"postgres"`
}

// Config defines runtime configuration for sprintdesk.
type Config struct {
	APIURL                   string        `toml:"api_url"`
	LogLevel                 string        `toml:"log_level"`
	Timezone                 string        `toml:"timezone"`
	Storage                  StorageConfig `toml:"storage"`
	TrustedProjectConfigPath string        `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		Timezone: DefaultTimezone,
		Storage: StorageConfig{
			Driver: DefaultStorageDriver,
			Postgres: PostgresConfig{
				Host:     DefaultPostgresHost,
				Port:     DefaultPostgresPort,
				SSLMode:  DefaultPostgresSSLMode,
				MaxConns: DefaultPostgresMaxConns,
			},
		},
	}
}

// DSN renders the postgres settings as a connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.DBName,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// Location resolves the configured timezone used to bucket burndown days.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"log_level",
	"timezone",
	"storage.driver",
	"storage.db_path",
	"storage.postgres.host",
	"storage.postgres.port",
	"storage.postgres.user",
	"storage.postgres.password",
	"storage.postgres.dbname",
	"storage.postgres.sslmode",
	"storage.postgres.max_conns",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "timezone":
		return c.Timezone, nil
	case "storage.driver":
		return c.Storage.Driver, nil
	case "storage.db_path":
		return c.Storage.DBPath, nil
	case "storage.postgres.host":
		return c.Storage.Postgres.Host, nil
	case "storage.postgres.port":
		return strconv.Itoa(c.Storage.Postgres.Port), nil
	case "storage.postgres.user":
		return c.Storage.Postgres.User, nil
	case "storage.postgres.password":
		if c.Storage.Postgres.Password == "" {
			return "", nil
		}
		return "********", nil
	case "storage.postgres.dbname":
		return c.Storage.Postgres.DBName, nil
	case "storage.postgres.sslmode":
		return c.Storage.Postgres.SSLMode, nil
	case "storage.postgres.max_conns":
		return strconv.Itoa(c.Storage.Postgres.MaxConns), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.Storage.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.Storage.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	applyEnvOverrides(&cfg)
	cfg.normalizeDefaults()

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if apiURL := os.Getenv("SPRINTDESK_API_URL"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv("SPRINTDESK_DB"); dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if driver := strings.TrimSpace(os.Getenv("SPRINTDESK_STORAGE_DRIVER")); driver != "" {
		cfg.Storage.Driver = driver
	}
	if tz := strings.TrimSpace(os.Getenv("SPRINTDESK_TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}

	pg := &cfg.Storage.Postgres
	if raw := os.Getenv("SPRINTDESK_PG_HOST"); raw != "" {
		pg.Host = raw
	}
	if raw := strings.TrimSpace(os.Getenv("SPRINTDESK_PG_PORT")); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil && port > 0 {
			pg.Port = port
		}
	}
	if raw := os.Getenv("SPRINTDESK_PG_USER"); raw != "" {
		pg.User = raw
	}
	if raw := os.Getenv("SPRINTDESK_PG_PASSWORD"); raw != "" {
		pg.Password = raw
	}
	if raw := os.Getenv("SPRINTDESK_PG_DBNAME"); raw != "" {
		pg.DBName = raw
	}
	if raw := os.Getenv("SPRINTDESK_PG_SSLMODE"); raw != "" {
		pg.SSLMode = raw
	}
	if raw := strings.TrimSpace(os.Getenv("SPRINTDESK_PG_MAX_CONNS")); raw != "" {
		if conns, err := strconv.Atoi(raw); err == nil && conns > 0 {
			pg.MaxConns = conns
		}
	}
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "storage.postgres.port", "storage.postgres.max_conns":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "storage.driver":
		switch strings.ToLower(value) {
		case "sqlite", "postgres":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("%s must be sqlite or postgres", key)
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return nil, fmt.Errorf("%s must be an IANA timezone name", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = DefaultTimezone
	}
	if strings.TrimSpace(c.Storage.Driver) == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Postgres.Port <= 0 {
		c.Storage.Postgres.Port = DefaultPostgresPort
	}
	if c.Storage.Postgres.MaxConns <= 0 {
		c.Storage.Postgres.MaxConns = DefaultPostgresMaxConns
	}
}
