/*
Package config loads server configuration from an optional YAML file with
environment-variable overrides for secrets.

Everything has a usable default so the server runs with no config file at
all. The JWT secret can be supplied via WATER_OFFICE_JWT_SECRET instead of
the file, which is what deployments should do.
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// envJWTSecret overrides jwt_secret from the file when set.
const envJWTSecret = "WATER_OFFICE_JWT_SECRET"

// Duration wraps time.Duration so YAML values can be written as "30s" or "1h".
type Duration time.Duration

// UnmarshalYAML parses Go duration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full server configuration.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	JWTSecret string   `yaml:"jwt_secret"`
	TokenTTL  Duration `yaml:"token_ttl"`

	DirectoryDB string `yaml:"directory_db"`

	TelemetryInterval     Duration `yaml:"telemetry_interval"`
	StatusRefreshInterval Duration `yaml:"status_refresh_interval"`

	SeedDemoData bool `yaml:"seed_demo_data"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:            ":8000",
		AllowedOrigins:        []string{"*"},
		JWTSecret:             "dev-only-change-me",
		TokenTTL:              Duration(7 * 24 * time.Hour),
		DirectoryDB:           "", // in-memory
		TelemetryInterval:     Duration(5 * time.Second),
		StatusRefreshInterval: Duration(time.Hour),
		SeedDemoData:          true,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults (plus any environment overrides).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if secret := os.Getenv(envJWTSecret); secret != "" {
		cfg.JWTSecret = secret
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must not be empty")
	}
	if c.TokenTTL.Std() <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.TelemetryInterval.Std() <= 0 {
		return fmt.Errorf("telemetry_interval must be positive")
	}
	if c.StatusRefreshInterval.Std() <= 0 {
		return fmt.Errorf("status_refresh_interval must be positive")
	}
	return nil
}
