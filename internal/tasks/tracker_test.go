package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/taskx/internal/events"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/repositories"
	"github.com/desertthunder/taskx/internal/shared"
	tu "github.com/desertthunder/taskx/internal/testing"
)

type fixture struct {
	tracker *Tracker
	engine  *progress.Engine
	bus     *events.Bus
	clock   *tu.Clock
	blobs   *tu.BlobStore
}

func setupTracker(t *testing.T) *fixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	clock := tu.NewClock(time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC))
	blobs := tu.NewBlobStore()
	engine := progress.NewEngine(progress.EngineOpts{Store: blobs, Clock: clock.Now})
	bus := events.NewBus(32)

	tracker, err := NewTracker(TrackerOpts{
		Store:    repositories.NewTaskRepository(db),
		Progress: engine,
		Bus:      bus,
		Clock:    clock.Now,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	return &fixture{tracker: tracker, engine: engine, bus: bus, clock: clock, blobs: blobs}
}

func drain(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestNewTracker(t *testing.T) {
	if _, err := NewTracker(TrackerOpts{}); !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig without store, got %v", err)
	}
	if _, err := NewTracker(TrackerOpts{Store: repositories.NewTaskRepository(nil)}); !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig without engine, got %v", err)
	}
}

func TestTrackerAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("stores task and publishes", func(t *testing.T) {
		f := setupTracker(t)
		ch, cancel := f.bus.Subscribe(events.TaskCreated)
		defer cancel()

		due := f.clock.Now().Add(24 * time.Hour)
		task, err := f.tracker.Add(ctx, "  plan sprint ", &due)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if task.ID == "" || task.Text != "plan sprint" || !task.CreatedAt.Equal(f.clock.Now()) {
			t.Errorf("unexpected task: %+v", task)
		}

		got := drain(ch)
		if len(got) != 1 || got[0].TaskID != task.ID || got[0].Source != "tracker" {
			t.Errorf("expected one task-created event, got %+v", got)
		}
	})

	t.Run("rejects empty text", func(t *testing.T) {
		f := setupTracker(t)
		if _, err := f.tracker.Add(ctx, "   ", nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := setupTracker(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := f.tracker.Add(cctx, "x", nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestTrackerComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("first completion records progress", func(t *testing.T) {
		f := setupTracker(t)
		ch, cancel := f.bus.Subscribe(events.StatsUpdated)
		defer cancel()

		task, _ := f.tracker.Add(ctx, "one", nil)
		res, err := f.tracker.Complete(ctx, task.ID)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}

		if !res.Changed || !res.Task.Completed {
			t.Errorf("expected completed transition, got %+v", res)
		}
		if res.Progress == nil || res.Progress.Stats.TotalPoints != 60 {
			t.Fatalf("expected 60 points after first completion, got %+v", res.Progress)
		}

		got := drain(ch)
		if len(got) != 1 || len(got[0].Unlocked) != 1 || got[0].Unlocked[0] != "first_task" {
			t.Errorf("expected stats-updated with first_task, got %+v", got)
		}
	})

	t.Run("completing twice records once", func(t *testing.T) {
		f := setupTracker(t)
		task, _ := f.tracker.Add(ctx, "one", nil)

		if _, err := f.tracker.Complete(ctx, task.ID); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		res, err := f.tracker.Complete(ctx, task.ID)
		if err != nil {
			t.Fatalf("second Complete failed: %v", err)
		}
		if res.Changed || res.Progress != nil {
			t.Errorf("expected no-op, got %+v", res)
		}

		stats, _ := f.engine.Stats()
		if stats.TotalTasksCompleted != 1 {
			t.Errorf("expected 1 completion recorded, got %d", stats.TotalTasksCompleted)
		}
	})

	t.Run("reopen then complete counts again", func(t *testing.T) {
		f := setupTracker(t)
		task, _ := f.tracker.Add(ctx, "one", nil)

		if _, err := f.tracker.Toggle(ctx, task.ID); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		reopened, err := f.tracker.Toggle(ctx, task.ID)
		if err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if !reopened.Changed || reopened.Task.Completed {
			t.Errorf("expected reopen, got %+v", reopened)
		}

		stats, _ := f.engine.Stats()
		if stats.TotalPoints != 60 {
			t.Errorf("reopening should keep points, got %d", stats.TotalPoints)
		}

		if _, err := f.tracker.Toggle(ctx, task.ID); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		stats, _ = f.engine.Stats()
		if stats.TotalTasksCompleted != 2 || stats.TotalPoints != 70 {
			t.Errorf("expected second completion recorded, got %+v", stats)
		}
	})

	t.Run("streak follows the tracker clock", func(t *testing.T) {
		f := setupTracker(t)

		for i := range 3 {
			task, _ := f.tracker.Add(ctx, "daily", nil)
			if _, err := f.tracker.Complete(ctx, task.ID); err != nil {
				t.Fatalf("Complete failed: %v", err)
			}
			if i < 2 {
				f.clock.Advance(tu.Days(1))
			}
		}

		p, err := f.tracker.Profile(ctx)
		if err != nil {
			t.Fatalf("Profile failed: %v", err)
		}
		if p.Stats.CurrentStreak != 3 {
			t.Errorf("expected streak 3, got %d", p.Stats.CurrentStreak)
		}
		if s := progress.Summarize(p.Achievements); s.Unlocked != 2 {
			t.Errorf("expected first_task and streak_3, got %d unlocked", s.Unlocked)
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		f := setupTracker(t)
		if _, err := f.tracker.Complete(ctx, "missing"); !errors.Is(err, shared.ErrTaskNotFound) {
			t.Errorf("expected ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("progress failure reverts completion", func(t *testing.T) {
		f := setupTracker(t)
		task, _ := f.tracker.Add(ctx, "one", nil)
		f.blobs.FailPut = true

		if _, err := f.tracker.Complete(ctx, task.ID); !errors.Is(err, tu.ErrInjected) {
			t.Fatalf("expected injected error, got %v", err)
		}

		reloaded, err := f.tracker.Get(ctx, task.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if reloaded.Completed {
			t.Error("completion should be reverted when progress cannot be saved")
		}

		f.blobs.FailPut = false
		res, err := f.tracker.Complete(ctx, task.ID)
		if err != nil || !res.Changed {
			t.Errorf("expected retry to succeed, got %+v, %v", res, err)
		}
	})
}

func TestTrackerListAndDelete(t *testing.T) {
	ctx := context.Background()
	f := setupTracker(t)

	a, _ := f.tracker.Add(ctx, "alpha", nil)
	b, _ := f.tracker.Add(ctx, "beta", nil)
	c, _ := f.tracker.Add(ctx, "gamma", nil)
	if _, err := f.tracker.Complete(ctx, b.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	tc := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "all", filter: Filter{}, want: []string{"alpha", "beta", "gamma"}},
		{name: "pending", filter: Filter{Status: StatusPending}, want: []string{"alpha", "gamma"}},
		{name: "completed", filter: Filter{Status: StatusCompleted}, want: []string{"beta"}},
		{name: "search", filter: Filter{Search: "GAM"}, want: []string{"gamma"}},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.tracker.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %d tasks", tt.want, len(got))
			}
			for i := range got {
				if got[i].Text != tt.want[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.want[i], got[i].Text)
				}
			}
		})
	}

	if err := f.tracker.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := f.tracker.Get(ctx, a.ID); !errors.Is(err, shared.ErrTaskNotFound) {
		t.Errorf("expected deleted task to be gone, got %v", err)
	}

	edited, err := f.tracker.Edit(ctx, c.ID, "gamma ray", nil)
	if err != nil || edited.Text != "gamma ray" {
		t.Errorf("Edit failed: %+v, %v", edited, err)
	}

	n, err := f.tracker.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}

	stats, _ := f.engine.Stats()
	if stats.TotalTasksCompleted != 1 {
		t.Error("clearing tasks must not touch progress")
	}
}

func TestTrackerImportExport(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		f := setupTracker(t)
		ch, cancel := f.bus.Subscribe(events.TaskUpdated)
		defer cancel()

		created := f.clock.Now().Add(-tu.Days(3))
		imported := []models.Task{
			tu.NewTask("a", "imported done", created, tu.Completed()),
			{Text: "no id or time"},
		}

		n, err := f.tracker.Import(ctx, imported)
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 imported, got %d", n)
		}
		if len(drain(ch)) != 1 {
			t.Error("expected one task-updated event")
		}

		exported, err := f.tracker.Export(ctx)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if len(exported) != 2 || exported[0].ID != "a" || !exported[0].Completed {
			t.Fatalf("unexpected export: %+v", exported)
		}
		if exported[1].ID == "" || !exported[1].CreatedAt.Equal(f.clock.Now()) {
			t.Errorf("expected generated id and creation time, got %+v", exported[1])
		}

		stats, _ := f.engine.Stats()
		if stats.TotalTasksCompleted != 0 {
			t.Error("importing completed tasks must not award points")
		}
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		f := setupTracker(t)
		if _, err := f.tracker.Add(ctx, "keep", nil); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		now := f.clock.Now()
		_, err := f.tracker.Import(ctx, []models.Task{
			tu.NewTask("x", "one", now),
			tu.NewTask("x", "two", now),
		})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}

		tasks, _ := f.tracker.Export(ctx)
		if len(tasks) != 1 {
			t.Errorf("expected collection untouched, got %d tasks", len(tasks))
		}
	})

	t.Run("rejects invalid task", func(t *testing.T) {
		f := setupTracker(t)
		if _, err := f.tracker.Import(ctx, []models.Task{{ID: "x", Text: ""}}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestTrackerAnalytics(t *testing.T) {
	ctx := context.Background()
	f := setupTracker(t)

	now := f.clock.Now()
	yesterday := now.Add(-tu.Days(1))
	_, err := f.tracker.Import(ctx, []models.Task{
		tu.NewTask("1", "done old", now.Add(-tu.Days(10)), tu.Completed()),
		tu.NewTask("2", "done new", now.Add(-tu.Days(3)), tu.Completed()),
		tu.NewTask("3", "late", now.Add(-tu.Days(5)), tu.Due(yesterday)),
		tu.NewTask("4", "later", now.Add(-tu.Days(9)), tu.Due(now.Add(tu.Days(10)))),
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	a, err := f.tracker.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	if a.TotalTasks != 4 || a.CompletedTasks != 2 || a.OverdueTasks != 1 || a.CompletionRate != 50 {
		t.Errorf("unexpected analytics: %+v", a)
	}
	if a.TasksCreatedThisWeek != 2 {
		t.Errorf("expected 2 created this week, got %d", a.TasksCreatedThisWeek)
	}
	if len(a.DailyData) != 30 || len(a.WeeklyData) != 8 {
		t.Errorf("unexpected series lengths %d/%d", len(a.DailyData), len(a.WeeklyData))
	}
}

func TestParseStatus(t *testing.T) {
	tc := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"", StatusAll, false},
		{"all", StatusAll, false},
		{"Pending", StatusPending, false},
		{"done", StatusCompleted, false},
		{"completed", StatusCompleted, false},
		{"archived", "", true},
	}
	for _, tt := range tc {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, %v", tt.in, got, err)
		}
	}
}
