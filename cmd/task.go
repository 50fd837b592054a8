package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/taskx/internal/formatter"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
	"github.com/urfave/cli/v3"
)

var dueLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", shared.DateLayout}

// parseDue reads a due date in loc. A bare date means the end of that day.
func parseDue(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == shared.DateLayout {
			t = t.Add(24*time.Hour - time.Minute)
		}
		return &t, nil
	}
	return nil, fmt.Errorf("%w: due date %q (want YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339)", shared.ErrInvalidFlag, s)
}

func requireID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}
	return id, nil
}

// TaskAdd creates a task from the remaining arguments.
func (r *Runner) TaskAdd(ctx context.Context, cmd *cli.Command) error {
	text := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: task text", shared.ErrMissingArgument)
	}

	tracker, err := r.open()
	if err != nil {
		return err
	}

	due, err := parseDue(cmd.String("due"), tracker.Location())
	if err != nil {
		return err
	}

	task, err := tracker.Add(ctx, text, due)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(task, true)
	}
	return r.writePlain("✓ Added %s  %s\n", shortID(task.ID), task.Text)
}

// TaskList prints tasks matching --status and --search.
func (r *Runner) TaskList(ctx context.Context, cmd *cli.Command) error {
	status, err := tasks.ParseStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	tracker, err := r.open()
	if err != nil {
		return err
	}

	list, err := tracker.List(ctx, tasks.Filter{Status: status, Search: cmd.String("search")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}

	if len(list) == 0 {
		return r.writePlain("No tasks.\n")
	}

	now := tracker.Now()
	for _, t := range list {
		r.writePlain("%s\n", taskLine(t, now))
	}
	return nil
}

func taskLine(t models.Task, now time.Time) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %s  %s", box, shortID(t.ID), t.Text)
	if t.DueDate != nil {
		switch {
		case t.IsOverdue(now):
			line += fmt.Sprintf("  (overdue since %s)", shared.DayKey(*t.DueDate))
		default:
			line += fmt.Sprintf("  (due %s)", shared.DayKey(*t.DueDate))
		}
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID expands a unique id prefix, as printed by task list, to the full id.
func (r *Runner) resolveID(ctx context.Context, tracker *tasks.Tracker, prefix string) (string, error) {
	all, err := tracker.List(ctx, tasks.Filter{})
	if err != nil {
		return "", err
	}

	match := ""
	for _, t := range all {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: id prefix %q matches more than one task", shared.ErrInvalidArgument, prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrTaskNotFound, prefix)
	}
	return match, nil
}

func (r *Runner) trackerAndID(ctx context.Context, cmd *cli.Command) (*tasks.Tracker, string, error) {
	prefix, err := requireID(cmd)
	if err != nil {
		return nil, "", err
	}

	tracker, err := r.open()
	if err != nil {
		return nil, "", err
	}

	id, err := r.resolveID(ctx, tracker, prefix)
	if err != nil {
		return nil, "", err
	}
	return tracker, id, nil
}

// TaskDone completes a task and reports points and unlocked achievements.
func (r *Runner) TaskDone(ctx context.Context, cmd *cli.Command) error {
	tracker, id, err := r.trackerAndID(ctx, cmd)
	if err != nil {
		return err
	}

	res, err := tracker.Complete(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, true)
	}

	if !res.Changed {
		return r.writePlain("Task %s is already complete.\n", shortID(id))
	}

	stats := res.Progress.Stats
	r.writePlain("✓ Completed %s  %s\n", shortID(id), res.Task.Text)
	r.writePlain("  +%d points • %s total • level %d • streak %d\n",
		models.PointsPerTask, formatter.Number(stats.TotalPoints), stats.Level, stats.CurrentStreak)
	for _, a := range res.Progress.NewlyUnlocked {
		r.writePlain("  %s Achievement unlocked: %s (+%d)\n", a.Icon, a.Name, models.PointsPerAchievement)
	}
	return nil
}

// TaskUndo reopens a completed task. Points already earned are kept.
func (r *Runner) TaskUndo(ctx context.Context, cmd *cli.Command) error {
	tracker, id, err := r.trackerAndID(ctx, cmd)
	if err != nil {
		return err
	}

	res, err := tracker.Reopen(ctx, id)
	if err != nil {
		return err
	}

	if !res.Changed {
		return r.writePlain("Task %s is not complete.\n", shortID(id))
	}
	return r.writePlain("↺ Reopened %s  %s\n", shortID(id), res.Task.Text)
}

// TaskEdit changes the text and/or due date of a task.
func (r *Runner) TaskEdit(ctx context.Context, cmd *cli.Command) error {
	tracker, id, err := r.trackerAndID(ctx, cmd)
	if err != nil {
		return err
	}

	task, err := tracker.Get(ctx, id)
	if err != nil {
		return err
	}

	text := task.Text
	if cmd.IsSet("text") {
		text = cmd.String("text")
	}

	due := task.DueDate
	switch {
	case cmd.Bool("clear-due"):
		due = nil
	case cmd.IsSet("due"):
		if due, err = parseDue(cmd.String("due"), tracker.Location()); err != nil {
			return err
		}
	}

	updated, err := tracker.Edit(ctx, id, text, due)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", taskLine(*updated, tracker.Now()))
}

// TaskRemove deletes a task.
func (r *Runner) TaskRemove(ctx context.Context, cmd *cli.Command) error {
	tracker, id, err := r.trackerAndID(ctx, cmd)
	if err != nil {
		return err
	}

	if err := tracker.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", shortID(id))
}

// TaskClear deletes every task after confirmation. Progress is untouched.
func (r *Runner) TaskClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") && !r.confirm("Delete all tasks? This cannot be undone. [y/N] ") {
		return r.writePlain("Aborted.\n")
	}

	tracker, err := r.open()
	if err != nil {
		return err
	}

	n, err := tracker.Clear(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %d tasks\n", n)
}

func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s", prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// TaskExport writes every task to a file, or to stdout with --stdout.
func (r *Runner) TaskExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	tracker, err := r.open()
	if err != nil {
		return err
	}

	all, err := tracker.Export(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("stdout") {
		data, err := formatter.ExportTasks(all, format)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	}

	path, err := r.files.WriteTasks(cmd.String("output"), r.config.Tracker.ExportDir, all, format, tracker.Now())
	if err != nil {
		return err
	}

	r.logger.Info("tasks exported", "path", path, "count", len(all))
	return r.writePlain("✓ Exported %d tasks to %s\n", len(all), path)
}

// TaskImport replaces the task collection with the contents of a file.
func (r *Runner) TaskImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: file path", shared.ErrMissingArgument)
	}

	imported, err := r.files.ReadTasks(path)
	if err != nil {
		return err
	}

	tracker, err := r.open()
	if err != nil {
		return err
	}

	n, err := tracker.Import(ctx, imported)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Imported %d tasks from %s\n", n, path)
}
