package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// AdminPassword is the password accepted by the admin login endpoint.
	// Empty means admin login is disabled.
	AdminPassword string `json:"admin_password,omitempty"`

	// TokenSecret is the HMAC key used to sign admin tokens.
	// If empty, a random per-process secret is generated at startup and
	// issued tokens stop validating on restart.
	TokenSecret string `json:"token_secret,omitempty"`

	// TokenTTLMinutes is how long an issued admin token stays valid.
	TokenTTLMinutes int `json:"token_ttl_minutes"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TokenTTLMinutes: 60,
	}
}

// Load loads configuration from baseDir/config.json, then applies
// environment overrides for the secrets (SEALBOX_ADMIN_PASSWORD and
// SEALBOX_TOKEN_SECRET) so deployments can keep them out of the file.
// Returns default config if the file doesn't exist. The baseDir parameter
// allows tests to use t.TempDir() instead of ~/.sealbox.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}

	if pw := os.Getenv("SEALBOX_ADMIN_PASSWORD"); pw != "" {
		cfg.AdminPassword = pw
	}
	if secret := os.Getenv("SEALBOX_TOKEN_SECRET"); secret != "" {
		cfg.TokenSecret = secret
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for non-zero scalars.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.AdminPassword = overlay.AdminPassword
	if result.AdminPassword == "" {
		result.AdminPassword = base.AdminPassword
	}

	result.TokenSecret = overlay.TokenSecret
	if result.TokenSecret == "" {
		result.TokenSecret = base.TokenSecret
	}

	result.TokenTTLMinutes = overlay.TokenTTLMinutes
	if result.TokenTTLMinutes == 0 {
		result.TokenTTLMinutes = base.TokenTTLMinutes
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	return result
}
