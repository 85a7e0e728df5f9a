// Package main is the entry point for the rangebrush terminal slider.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/rangebrush/internal/app"
	"github.com/dshills/rangebrush/internal/config"
	"github.com/dshills/rangebrush/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	envFile    string
	logLevel   string
	logFile    string
	listen     string
	snapScript string
	point      bool
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "rangebrush",
		Short: "Pick a value or an interval with a terminal range brush",
		Long: `rangebrush draws a draggable range brush in the terminal.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. Config file (--config, TOML or YAML)
  3. .env file (--env-file, or .env in the current directory)
  4. RANGEBRUSH_* environment variables
  5. Command line flags

Environment variables:
  RANGEBRUSH_RANGE             min,max
  RANGEBRUSH_VALUE             v or v0,v1
  RANGEBRUSH_STEP              step size, 0 disables stepping
  RANGEBRUSH_MARKS             comma-separated snap marks
  RANGEBRUSH_POINT             pick a single value
  RANGEBRUSH_LISTEN            link server address
  RANGEBRUSH_SNAP_SCRIPT       Lua file defining normalize()
  RANGEBRUSH_LOG_LEVEL         debug, info, warn, error
  RANGEBRUSH_LOG_FILE          log destination`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to a TOML or YAML config file (watched for changes)")
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().StringVar(&f.listen, "listen", "", "Serve the link API on this address, e.g. 127.0.0.1:7070")
	cmd.Flags().StringVar(&f.snapScript, "snap-script", "", "Lua snap script")
	cmd.Flags().BoolVar(&f.point, "point", false, "Pick a single value instead of an interval")

	cmd.AddCommand(versionCmd())
	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	overlay := flagOverlay(cmd, f)
	cfg, err := loadConfig(f, overlay)
	if err != nil {
		return err
	}

	level := new(slog.LevelVar)
	logger, logCloser, err := app.NewLogger(cfg.Log, level)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger.Info("starting", "version", version, "config", f.configPath)

	application, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: f.configPath,
		Logger:     logger,
		LogLevel:   level,
		Overlay:    overlay,
	})
	if err != nil {
		return err
	}

	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("creating terminal: %w", err)
	}
	if err := application.SetBackend(term); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

// loadConfig layers defaults, file, .env, environment and flags.
func loadConfig(f flags, overlay func(*config.Config)) (config.Config, error) {
	if err := config.LoadDotEnv(f.envFile); err != nil {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadWith(f.configPath, overlay)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// flagOverlay returns a function that writes the explicitly set flags
// over a config. It is applied at startup and after every reload.
func flagOverlay(cmd *cobra.Command, f flags) func(*config.Config) {
	set := cmd.Flags().Changed
	return func(cfg *config.Config) {
		if set("log-level") {
			cfg.Log.Level = f.logLevel
		}
		if set("log-file") {
			cfg.Log.File = f.logFile
		}
		if set("listen") {
			cfg.Link.Listen = f.listen
		}
		if set("snap-script") {
			cfg.Plugin.SnapScript = f.snapScript
		}
		if set("point") {
			cfg.Brush.Point = f.point
		}
	}
}
