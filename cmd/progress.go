package main

import (
	"context"

	"github.com/desertthunder/taskx/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Stats prints level, points and streaks. With --reset progress starts over.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(); err != nil {
		return err
	}

	if cmd.Bool("reset") {
		profile, err := r.engine.Reset()
		if err != nil {
			return err
		}
		r.logger.Info("progress reset")
		r.writePlainln("✓ Progress reset")
		return r.writeBytes(formatter.StatsText(profile))
	}

	profile, err := r.engine.Profile()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}
	return r.writeBytes(formatter.StatsText(profile))
}

// Achievements lists the catalog with unlock state and progress.
func (r *Runner) Achievements(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(); err != nil {
		return err
	}

	achievements, err := r.engine.Achievements()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(achievements, true)
	}
	return r.writeBytes(formatter.AchievementsText(achievements))
}
