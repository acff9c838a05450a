package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger, ConfigPath: "config.toml"})

	app := &cli.Command{
		Name:    "homepanel",
		Usage:   "Terminal control panel for a home automation server",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides the config file",
			},
		},
		Before:   runner.Before,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented", "error", err)
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// Before loads the configuration file, when present, and applies the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	r.configPath = path

	config := r.config
	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		config = loaded
		r.logger.Debug("loaded config", "path", path)
	}

	level := config.Log.Level
	if flag := cmd.String("log-level"); flag != "" {
		level = flag
	}
	if level != "" {
		lvl, err := shared.ParseLogLevel(level)
		if err != nil {
			return ctx, err
		}
		shared.SetLogLevel(r.logger, lvl)
	}

	r.configure(config, nil)
	return ctx, nil
}
