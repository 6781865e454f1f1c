package apiweave

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variable names for overrides. Environment values win over the
// config file, matching user expectations for one-off overrides without
// editing the file.
const (
	EnvBaseURL      = "APIWEAVE_BASE_URL"
	EnvUserAgent    = "APIWEAVE_USER_AGENT"
	EnvClientID     = "APIWEAVE_CLIENT_ID"
	EnvClientSecret = "APIWEAVE_CLIENT_SECRET"
)

// fileConfig is the TOML shape of a config file. Credentials may be left
// out of the file and supplied via environment instead, so only the base
// URL is required here; the token manager enforces credential presence at
// exchange time.
type fileConfig struct {
	BaseURL      string `toml:"base_url"      validate:"required,url"`
	UserAgent    string `toml:"user_agent"    validate:"omitempty"`
	ClientID     string `toml:"client_id"     validate:"omitempty"`
	ClientSecret string `toml:"client_secret" validate:"omitempty"`
}

var configValidate = validator.New()

// LoadConfig reads and parses a TOML config file, validates it, and returns
// the resulting Config. Unknown keys are fatal — silently ignoring a typo in
// a config file leads to hard-to-debug behavior.
func LoadConfig(path string) (*Config, error) {
	var fc fileConfig

	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	if err := configValidate.Struct(fc); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := NewConfig(fc.BaseURL)
	if fc.UserAgent != "" {
		cfg.SetUserAgent(fc.UserAgent)
	}

	cfg.SetCredentials(fc.ClientID, fc.ClientSecret)

	return cfg, nil
}

// ResolveConfig loads configuration with the override chain: config file,
// then an optional .env file, then process environment. path may be "", in
// which case only environment sources apply. envFile may be "" to skip
// .env loading; a missing .env file is not an error.
func ResolveConfig(path, envFile string) (*Config, error) {
	cfg := NewConfig("")

	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.BaseURL() == "" {
		return nil, fmt.Errorf("no base URL configured (set base_url or %s)", EnvBaseURL)
	}

	return cfg, nil
}

// applyEnvOverrides copies any set override variables into cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.SetBaseURL(v)
	}

	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.SetUserAgent(v)
	}

	id, secret := cfg.Credentials()

	if v := os.Getenv(EnvClientID); v != "" {
		id = v
	}

	if v := os.Getenv(EnvClientSecret); v != "" {
		secret = v
	}

	cfg.SetCredentials(id, secret)
}
