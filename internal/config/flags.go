package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagScene   = flag.String("scene", "", "Path to scene file")
	flagFrames  = flag.Int("frames", 0, "Number of frames to run")
	flagWorkers = flag.Int("workers", -1, "Worker goroutines (0 = GOMAXPROCS)")
	flagProfile = flag.Bool("profile", false, "Report section timings")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Bench.Profile = true
	}
	if *flagScene != "" {
		cfg.Bench.Scene = *flagScene
	}
	if *flagFrames > 0 {
		cfg.Bench.Frames = *flagFrames
	}
	if *flagWorkers >= 0 {
		cfg.Pipeline.Workers = *flagWorkers
	}
	if *flagProfile {
		cfg.Bench.Profile = true
	}
}
