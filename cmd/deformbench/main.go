// Package main runs the deformation pipeline over a scene for a fixed number
// of frames and reports per-section timing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshwarp/internal/config"
	"github.com/Faultbox/meshwarp/internal/jobs"
	"github.com/Faultbox/meshwarp/internal/logger"
	"github.com/Faultbox/meshwarp/internal/pipeline"
	"github.com/Faultbox/meshwarp/internal/profile"
	"github.com/Faultbox/meshwarp/internal/scene"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== meshwarp deformbench ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("benchmark failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	sc, err := loadScene(cfg.Bench.Scene)
	if err != nil {
		return err
	}

	sched := jobs.NewScheduler(cfg.Pipeline.Workers)
	defer sched.Close()

	mgr := pipeline.New(cfg.Pipeline, sched)
	defer mgr.Dispose()
	if err := mgr.AddDeformers(sc.Deformers...); err != nil {
		return err
	}

	var timer *profile.Timer
	if cfg.Bench.Profile {
		timer = profile.New(cfg.Bench.FrameRate, cfg.Bench.FrameRate, logger.Named("profile"))
		mgr.SetTimer(timer)
	}

	logger.Info("starting",
		zap.Int("renderers", len(sc.Renderers)),
		zap.Int("deformers", len(sc.Deformers)),
		zap.Int("workers", sched.Workers()),
		zap.Int("frames", cfg.Bench.Frames))

	step := cfg.Bench.FrameTime()
	renderers := sc.MeshRenderers()
	start := time.Now()
	frames := 0
	for ; frames < cfg.Bench.Frames; frames++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("interrupted", zap.Int("frame", frames))
			break
		}
		sc.Advance(step)
		if err := mgr.Update(ctx, renderers); err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}
	}
	elapsed := time.Since(start)

	report(sc, mgr, timer, frames, elapsed)
	return nil
}

func loadScene(path string) (*scene.Scene, error) {
	if path == "" {
		logger.Info("no scene given, using the built-in one")
		return scene.Default()
	}
	return scene.Load(path)
}

func report(sc *scene.Scene, mgr *pipeline.Manager, timer *profile.Timer, frames int, elapsed time.Duration) {
	var perFrame time.Duration
	if frames > 0 {
		perFrame = elapsed / time.Duration(frames)
	}
	vertices := 0
	for _, m := range mgr.Meshes() {
		vertices += len(m.Vertices)
	}
	logger.Info("finished",
		zap.Int("frames", frames),
		zap.Int("meshes", len(mgr.Meshes())),
		zap.Int("vertices", vertices),
		zap.Duration("elapsed", elapsed),
		zap.Duration("per_frame", perFrame))

	for _, name := range timer.Sections() {
		avg := timer.Average(name)
		logger.Info("section",
			zap.String("name", name),
			zap.Duration("average", avg),
			zap.String("budget", fmt.Sprintf("%.1f%%", timer.BudgetShare(avg))))
	}

	for _, r := range sc.Renderers {
		local, world := r.Bounds()
		logger.Debug("bounds",
			zap.String("renderer", r.Name()),
			zap.Bool("deformed", r.Displayed() != nil),
			zap.Any("local", local),
			zap.Any("world", world))
	}
}
