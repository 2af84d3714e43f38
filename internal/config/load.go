package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load resolves the configuration from defaults, an optional YAML file,
// and the environment, in that order. An empty path probes DefaultPath
// and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	// Populate the environment from .env before the env overlay reads
	// it. Variables already set in the real environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	switch {
	case path != "":
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	default:
		err := loadFile(cfg, DefaultPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.normalize()

	return cfg, nil
}

// loadFile overlays the YAML file at path onto cfg.
func loadFile(cfg *Config, path string) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	return nil
}

// normalize cleans up values that arrive in equivalent spellings. Remote
// paths lose a single trailing slash so command strings join cleanly.
func (c *Config) normalize() {
	c.Minecraft.ScriptsPath = strings.TrimSuffix(c.Minecraft.ScriptsPath, "/")
	c.Minecraft.LogsPath = strings.TrimSuffix(c.Minecraft.LogsPath, "/")
	c.SSH.Host = strings.TrimSpace(c.SSH.Host)
	c.SSH.Port = strings.TrimSpace(c.SSH.Port)
}
