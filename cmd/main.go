package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/taskx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:     "taskx",
		Usage:    "Track tasks, earn points and keep your streak",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   runner.Configure,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
		case errors.Is(err, shared.ErrTaskNotFound), errors.Is(err, shared.ErrInvalidInput),
			errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument),
			errors.Is(err, shared.ErrInvalidFormat), errors.Is(err, shared.ErrInvalidFlag),
			errors.Is(err, shared.ErrInvalidConfig):
			logger.Error(err.Error())
			runner.Close()
			os.Exit(2)
		default:
			runner.Close()
			logger.Fatalf("application error: %v", err)
		}
	}
}
