package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

// Exit codes for failures a script may want to tell apart.
const (
	exitError            = 1
	exitNotAuthenticated = 2
	exitForbidden        = 3
)

func main() {
	os.Exit(run(os.Args))
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrSessionExpired):
		return exitNotAuthenticated
	case errors.Is(err, shared.ErrForbidden):
		return exitForbidden
	default:
		return exitError
	}
}

// run executes the CLI and returns the exit status. Deferred cleanup runs before the process exits.
func run(args []string) int {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(".env"); err != nil {
		logger.Warn("ignoring env file", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	shared.ApplyEnv(config)

	opts := RunnerOpts{Config: config, ConfigPath: configPath, Logger: logger}

	db, err := shared.OpenStorage(config.Database)
	if err != nil {
		logger.Warn("persistent storage unavailable, session will not survive this run", "error", err)
	} else {
		defer db.Close()
		opts.Storage = repositories.NewStorageRepository(db)
		opts.Drafts = repositories.NewDraftRepository(db)
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "encore",
		Usage:    "Browse concerts, buy tickets and moderate listings from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
	}

	err = app.Run(context.Background(), args)
	if err != nil {
		logger.Error("application error", "error", err)
	}
	return exitCode(err)
}
