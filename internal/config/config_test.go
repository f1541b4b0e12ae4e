package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Pipeline defaults
	if !cfg.Pipeline.UpdateNormals {
		t.Error("expected update_normals to be true by default")
	}
	if !cfg.Pipeline.UpdateBounds {
		t.Error("expected update_bounds to be true by default")
	}
	if cfg.Pipeline.UpdateInEditMode {
		t.Error("expected update_in_edit_mode to be false by default")
	}
	if cfg.Pipeline.RenderersChangedCheckCooldown != time.Second {
		t.Errorf("expected cooldown 1s, got %v", cfg.Pipeline.RenderersChangedCheckCooldown)
	}
	if cfg.Pipeline.BatchSize != 2048 {
		t.Errorf("expected batch size 2048, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.NormalBatchSize != 512 {
		t.Errorf("expected normal batch size 512, got %d", cfg.Pipeline.NormalBatchSize)
	}

	// Bench defaults
	if cfg.Bench.Frames != 300 {
		t.Errorf("expected 300 frames, got %d", cfg.Bench.Frames)
	}
	if cfg.Bench.FrameRate != 60 {
		t.Errorf("expected frame rate 60, got %d", cfg.Bench.FrameRate)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
pipeline:
  update_normals: false
  update_in_edit_mode: true
  renderers_changed_check_cooldown: -1s
  workers: 4
  batch_size: 1024

bench:
  scene: "scenes/twist.yaml"
  frames: 120
  frame_rate: 144
  profile: true

logging:
  level: "debug"
  log_file: "bench.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Pipeline.UpdateNormals {
		t.Error("expected update_normals to be false")
	}
	if !cfg.Pipeline.UpdateBounds {
		t.Error("expected update_bounds to keep its default")
	}
	if !cfg.Pipeline.UpdateInEditMode {
		t.Error("expected update_in_edit_mode to be true")
	}
	if cfg.Pipeline.RenderersChangedCheckCooldown != -time.Second {
		t.Errorf("expected cooldown -1s, got %v", cfg.Pipeline.RenderersChangedCheckCooldown)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.BatchSize != 1024 {
		t.Errorf("expected batch size 1024, got %d", cfg.Pipeline.BatchSize)
	}

	if cfg.Bench.Scene != "scenes/twist.yaml" {
		t.Errorf("expected scene scenes/twist.yaml, got %s", cfg.Bench.Scene)
	}
	if cfg.Bench.Frames != 120 {
		t.Errorf("expected 120 frames, got %d", cfg.Bench.Frames)
	}
	if cfg.Bench.FrameTime() != time.Second/144 {
		t.Errorf("unexpected frame time %v", cfg.Bench.FrameTime())
	}
	if !cfg.Bench.Profile {
		t.Error("expected profile to be true")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "bench.log" {
		t.Errorf("expected log file 'bench.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "pipeline:\n  workers: not a number\n  invalid syntax here\n"},
		{"unknown key", "pipeline:\n  update_normal: false\n"},
		{"bad duration", "pipeline:\n  renderers_changed_check_cooldown: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load, got %v", err)
	}
	if cfg.Bench.Frames != 300 {
		t.Errorf("defaults changed by empty file: %+v", cfg.Bench)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("meshwarp.yaml", []byte("bench:\n  frames: 10\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find meshwarp.yaml in current directory")
	}
}

func TestNormalize(t *testing.T) {
	cfg := &Config{}
	cfg.Pipeline.Workers = -3
	cfg.Pipeline.BatchSize = 400
	cfg.normalize()

	if cfg.Pipeline.Workers != 0 {
		t.Errorf("expected workers 0, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.BatchSize != 400 {
		t.Errorf("expected batch size 400 kept, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.NormalBatchSize != 100 {
		t.Errorf("expected normal batch size 100, got %d", cfg.Pipeline.NormalBatchSize)
	}
	if cfg.Bench.Frames != 300 || cfg.Bench.FrameRate != 60 {
		t.Errorf("expected bench defaults, got %+v", cfg.Bench)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected level info, got %s", cfg.Logging.Level)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Bench.Profile {
					t.Error("expected profile to be enabled with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "scene flag",
			setup: func() { *flagScene = "wave.yaml" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Bench.Scene != "wave.yaml" {
					t.Errorf("expected scene wave.yaml, got %s", cfg.Bench.Scene)
				}
			},
			teardown: func() { *flagScene = "" },
		},
		{
			name:  "frames flag",
			setup: func() { *flagFrames = 10 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Bench.Frames != 10 {
					t.Errorf("expected 10 frames, got %d", cfg.Bench.Frames)
				}
			},
			teardown: func() { *flagFrames = 0 },
		},
		{
			name:  "workers flag",
			setup: func() { *flagWorkers = 2 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Pipeline.Workers != 2 {
					t.Errorf("expected 2 workers, got %d", cfg.Pipeline.Workers)
				}
			},
			teardown: func() { *flagWorkers = -1 },
		},
		{
			name:  "workers unset",
			setup: func() {},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Pipeline.Workers != 0 {
					t.Errorf("expected default workers, got %d", cfg.Pipeline.Workers)
				}
			},
			teardown: func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
bench:
  frames: 50
  frame_rate: 30
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagFrames = 75
	defer func() {
		*flagConfig = ""
		*flagFrames = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Frames come from the flag, frame rate from the file.
	if cfg.Bench.Frames != 75 {
		t.Errorf("expected 75 frames from flag, got %d", cfg.Bench.Frames)
	}
	if cfg.Bench.FrameRate != 30 {
		t.Errorf("expected frame rate 30 from file, got %d", cfg.Bench.FrameRate)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Pipeline.RenderersChangedCheckCooldown = 250 * time.Millisecond
	cfg.Bench.Scene = "roll.yaml"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}
