package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskx/internal/events"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logFile := r.config.Log.File
	if logFile == "" {
		logFile = "./tmp/taskx-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	tracker, err := r.open()
	if err != nil {
		return err
	}

	sub, unsubscribe := r.bus.Subscribe()
	defer unsubscribe()

	if cmd.Bool("watch") && r.config.Database.Path != ":memory:" {
		watcher, err := events.NewWatcher(events.WatcherOpts{
			DatabasePath: r.config.Database.Path,
			Bus:          r.bus,
			Logger:       shared.WithLogger(fileLogger, "component", "watcher"),
		})
		if err != nil {
			return fmt.Errorf("failed to watch database: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to watch database: %w", err)
		}
		defer watcher.Stop()
	}

	model := ui.NewModel(ctx, tracker, sub)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
