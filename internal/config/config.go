// Package config handles benchmark and pipeline configuration.
package config

import "time"

// Config holds all settings.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Bench    BenchConfig    `yaml:"bench"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PipelineConfig controls the per-frame deformation pipeline.
type PipelineConfig struct {
	UpdateNormals    bool `yaml:"update_normals"`
	UpdateBounds     bool `yaml:"update_bounds"`
	UpdateInEditMode bool `yaml:"update_in_edit_mode"`
	// RenderersChangedCheckCooldown is how often Update compares the renderer
	// list with the working set. Negative disables the check.
	RenderersChangedCheckCooldown time.Duration `yaml:"renderers_changed_check_cooldown"`
	Workers                       int           `yaml:"workers"`           // 0 = GOMAXPROCS
	BatchSize                     int           `yaml:"batch_size"`        // vertices per task
	NormalBatchSize               int           `yaml:"normal_batch_size"` // triangles per task
}

// BenchConfig holds settings for the deformbench driver.
type BenchConfig struct {
	Scene     string `yaml:"scene"`
	Frames    int    `yaml:"frames"`
	FrameRate int    `yaml:"frame_rate"`
	Profile   bool   `yaml:"profile"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// FrameTime returns the simulated time step for one frame.
func (b BenchConfig) FrameTime() time.Duration {
	if b.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(b.FrameRate)
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			UpdateNormals:                 true,
			UpdateBounds:                  true,
			UpdateInEditMode:              false,
			RenderersChangedCheckCooldown: time.Second,
			Workers:                       0,
			BatchSize:                     2048,
			NormalBatchSize:               512,
		},
		Bench: BenchConfig{
			Scene:     "",
			Frames:    300,
			FrameRate: 60,
			Profile:   false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
