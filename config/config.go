// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Store kinds.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config holds the settings shared by the server, the CLI and the example.
type Config struct {
	Addr            string `mapstructure:"SALBP_ADDR"`
	Store           string `mapstructure:"SALBP_STORE"`
	DataDir         string `mapstructure:"SALBP_DATA_DIR"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	DefaultInstance string `mapstructure:"SALBP_DEFAULT_INSTANCE"`
	Seed            uint64 `mapstructure:"SALBP_SEED"`
}

// Default returns the settings used when nothing is set.
func Default() Config {
	return Config{
		Addr:            ":3000",
		Store:           StoreFile,
		DataDir:         "public",
		DefaultInstance: "i1",
	}
}

// Load overlays the process environment on Default.
func Load() (Config, error) {
	return FromMap(environ())
}

// FromMap overlays raw string settings on Default. Numeric settings are
// converted from their string form.
func FromMap(raw map[string]any) (Config, error) {
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	return cfg, cfg.Validate()
}

// Validate checks the combination of settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreFile:
		if c.DataDir == "" {
			return fmt.Errorf("config: SALBP_DATA_DIR is empty")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is not set")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	return nil
}

// environ collects the non-empty variables Config knows about.
func environ() map[string]any {
	raw := make(map[string]any)
	for _, key := range []string{
		"SALBP_ADDR",
		"SALBP_STORE",
		"SALBP_DATA_DIR",
		"DATABASE_URL",
		"SALBP_DEFAULT_INSTANCE",
		"SALBP_SEED",
	} {
		if v := os.Getenv(key); v != "" {
			raw[key] = v
		}
	}
	return raw
}
