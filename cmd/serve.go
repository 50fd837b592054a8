package main

import (
	"context"

	"github.com/desertthunder/taskx/internal/server"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the dashboard API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	tracker, err := r.open()
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	srv := server.New(server.ServerOpts{
		Service: tracker,
		Config:  cfg,
		Logger:  shared.WithLogger(r.logger, "component", "server"),
	})

	r.writePlain("Serving dashboard API at %s/api\n", srv.URL())

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(srv.URL() + "/api/stats"); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return srv.ListenAndServe(ctx)
}
