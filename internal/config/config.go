// Package config loads runtime settings for the marketplace API.
//
// Values are layered with koanf: struct defaults first, then an optional YAML
// file, then environment variables. Environment always wins.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	// ConfigPathEnvVar overrides the YAML file location.
	ConfigPathEnvVar = "CONFIG_PATH"

	minSecretLength = 32
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

type Config struct {
	Env      string         `koanf:"env"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Security SecurityConfig `koanf:"security"`
	Authz    AuthzConfig    `koanf:"authz"`
	Web      WebConfig      `koanf:"web"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type APIConfig struct {
	// BasePath prefixes every REST route, e.g. "/api".
	BasePath string `koanf:"base_path"`
}

type DatabaseConfig struct {
	Driver      string        `koanf:"driver"`
	URL         string        `koanf:"url"`
	Name        string        `koanf:"name"`
	MaxOpen     int           `koanf:"max_open"`
	MaxIdle     int           `koanf:"max_idle"`
	MaxLifetime time.Duration `koanf:"max_lifetime"`
	// Timeout bounds every credential store call.
	Timeout time.Duration `koanf:"timeout"`
}

type AuthConfig struct {
	Secret     string        `koanf:"secret"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
	// DenylistPath is the badger directory for revoked tokens. Empty keeps it in memory.
	DenylistPath string `koanf:"denylist_path"`
	// DenylistGCSchedule is a cron spec for badger value log GC.
	DenylistGCSchedule string `koanf:"denylist_gc_schedule"`
}

type SecurityConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
}

type AuthzConfig struct {
	// PolicyPath points to a casbin CSV policy. Empty uses the embedded policy.
	PolicyPath string `koanf:"policy_path"`
}

type WebConfig struct {
	// Root is a static directory served behind the route guard.
	Root string `koanf:"root"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IsProduction reports whether cookies must be Secure and error details hidden.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// IsDevelopment reports whether error responses may carry internal detail.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// defaultConfig starts in production; development must be asked for with APP_ENV.
func defaultConfig() *Config {
	return &Config{
		Env: EnvProduction,
		Server: ServerConfig{
			Port:            "4000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		API: APIConfig{
			BasePath: "/api",
		},
		Database: DatabaseConfig{
			Driver:      DriverPostgres,
			Name:        "cinnamart",
			MaxOpen:     25,
			MaxIdle:     25,
			MaxLifetime: 300 * time.Second,
			Timeout:     5 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:           7 * 24 * time.Hour,
			BcryptCost:         10,
			DenylistGCSchedule: "@every 10m",
		},
		Security: SecurityConfig{
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config from defaults, an optional YAML file and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	if err := splitCommaList(k, "security.cors_origins"); err != nil {
		return nil, err
	}
	for _, path := range durationKeys {
		if err := bareSeconds(k, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail late or insecurely.
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if len(c.Auth.Secret) < minSecretLength {
		return fmt.Errorf("auth.secret must be at least %d characters", minSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("database.timeout must be positive")
	}
	if c.API.BasePath != "" && !strings.HasPrefix(c.API.BasePath, "/") {
		return fmt.Errorf("api.base_path must start with /")
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps flat environment names onto nested config keys.
var envMappings = map[string]string{
	"app_env":              "env",
	"port":                 "server.port",
	"api_base_path":        "api.base_path",
	"database_driver":      "database.driver",
	"database_url":         "database.url",
	"database_name":        "database.name",
	"db_max_open":          "database.max_open",
	"db_max_idle":          "database.max_idle",
	"db_max_lifetime":      "database.max_lifetime",
	"db_timeout":           "database.timeout",
	"auth_secret":          "auth.secret",
	"auth_token_ttl":       "auth.token_ttl",
	"auth_bcrypt_cost":     "auth.bcrypt_cost",
	"auth_denylist_path":   "auth.denylist_path",
	"cors_origins":         "security.cors_origins",
	"login_rate_limit":     "security.login_rate_limit",
	"login_rate_window":    "security.login_rate_window",
	"authz_policy_path":    "authz.policy_path",
	"web_root":             "web.root",
	"log_level":            "log.level",
	"log_format":           "log.format",
	"denylist_gc_schedule": "auth.denylist_gc_schedule",
}

// envTransformFunc maps known variables and drops everything else, so
// unrelated process environment never leaks into the config tree.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

// durationKeys accept either a Go duration ("300s", "5m") or a bare number of
// seconds ("300"), the format DB_MAX_LIFETIME has always used.
var durationKeys = []string{
	"server.read_timeout",
	"server.write_timeout",
	"server.shutdown_timeout",
	"database.max_lifetime",
	"database.timeout",
	"auth.token_ttl",
	"security.login_rate_window",
}

func bareSeconds(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	if err := k.Set(path, time.Duration(n)*time.Second); err != nil {
		return fmt.Errorf("config: set %s: %w", path, err)
	}
	return nil
}

func splitCommaList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok || s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("config: set %s: %w", path, err)
	}
	return nil
}
