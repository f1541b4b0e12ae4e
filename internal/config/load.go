package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the search locations.
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)
	cfg.normalize()

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./meshwarp.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Meshwarp")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Meshwarp")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meshwarp")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meshwarp")
	}
}

// loadFromFile merges a YAML file into cfg. Unknown keys are an error so a
// misspelled pipeline option does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := Default()
	if c.Pipeline.Workers < 0 {
		c.Pipeline.Workers = 0
	}
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = def.Pipeline.BatchSize
	}
	if c.Pipeline.NormalBatchSize <= 0 {
		c.Pipeline.NormalBatchSize = max(1, c.Pipeline.BatchSize/4)
	}
	if c.Bench.Frames <= 0 {
		c.Bench.Frames = def.Bench.Frames
	}
	if c.Bench.FrameRate <= 0 {
		c.Bench.FrameRate = def.Bench.FrameRate
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}
