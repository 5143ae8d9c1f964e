// Command dpdsim runs a headless DPD simulation from a parameter file,
// writing property output as it steps (spec.md §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pthm-cable/dpd/config"
	"github.com/pthm-cable/dpd/sim"
	"github.com/pthm-cable/dpd/telemetry"
)

var (
	input      = flag.String("input", "", "path to the run parameter YAML file (required)")
	restart    = flag.String("restart", "", "path to a restart file to resume from (unused: out of scope parser has no restart reader yet)")
	configPath = flag.String("config", "", "path to a process-level config YAML overriding defaults.yaml")
)

func main() {
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "dpdsim: -input is required")
		os.Exit(1)
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "dpdsim: loading config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *restart != "" {
		logger.Warn("restart_unsupported", "path", *restart)
	}

	params, err := loadParams(*input)
	if err != nil {
		logger.Error("load_params_failed", "err", err)
		os.Exit(1)
	}
	if params.WorkerPoolSize == 0 {
		params.WorkerPoolSize = cfg.Worker.PoolSize
	}
	if params.OutputStepFrequency == 0 {
		params.OutputStepFrequency = cfg.Output.StepFrequency
	}

	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		logger.Error("output_dir_failed", "err", err)
		os.Exit(1)
	}
	writer, err := telemetry.NewPropertyWriter(filepath.Join(cfg.Output.Directory, cfg.Output.PropertyFile))
	if err != nil {
		logger.Error("output_writer_failed", "err", err)
		os.Exit(1)
	}
	defer writer.Close()

	driver, err := sim.New(params, writer, slogAdapter{logger})
	if err != nil {
		logger.Error("driver_construction_failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	info, err := driver.Run(ctx)
	if err != nil {
		logger.Error("run_failed", "err", err)
		os.Exit(1)
	}

	logger.Info("run_complete", "last_step", info.LastTimeStep, "stopped", info.Stopped)
}

// slogAdapter satisfies sim.Logger with a *slog.Logger.
type slogAdapter struct{ l *slog.Logger }

func (a slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
