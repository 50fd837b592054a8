package main

import (
	"context"

	"github.com/desertthunder/taskx/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Analytics prints the analytics report, or writes it to --output.
func (r *Runner) Analytics(ctx context.Context, cmd *cli.Command) error {
	tracker, err := r.open()
	if err != nil {
		return err
	}

	report, err := tracker.Analytics(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := r.files.WriteAnalytics(path, report, format); err != nil {
			return err
		}
		return r.writePlain("✓ Analytics written to %s\n", path)
	}

	data, err := formatter.ExportAnalytics(report, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}
