package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskx/internal/events"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/repositories"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
	tu "github.com/desertthunder/taskx/internal/testing"
)

func setupModel(t *testing.T, sub <-chan events.Event) (*Model, *tasks.Tracker) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	clock := tu.NewClock(time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC))
	tracker, err := tasks.NewTracker(tasks.TrackerOpts{
		Store:    repositories.NewTaskRepository(db),
		Progress: progress.NewEngine(progress.EngineOpts{Store: repositories.NewBlobRepository(db), Clock: clock.Now}),
		Clock:    clock.Now,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	m := NewModel(context.Background(), tracker, sub)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, tracker
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := m.Update(cmd())
	return next
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelLoad(t *testing.T) {
	m, tracker := setupModel(t, nil)
	if _, err := tracker.Add(context.Background(), "water plants", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	run(t, m, m.load())

	if !strings.Contains(m.View(), "[ ] water plants") {
		t.Errorf("expected task in view:\n%s", m.View())
	}
	if m.waitForEvent() != nil {
		t.Error("expected no event loop without a subscription")
	}
}

func TestModelEmpty(t *testing.T) {
	m, _ := setupModel(t, nil)
	run(t, m, m.load())

	if !strings.Contains(m.View(), "No tasks yet") {
		t.Errorf("expected empty state:\n%s", m.View())
	}
}

func TestModelToggleShowsBanner(t *testing.T) {
	m, tracker := setupModel(t, nil)
	ctx := context.Background()
	if _, err := tracker.Add(ctx, "first", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	run(t, m, m.load())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	reload := run(t, m, cmd)
	if !strings.Contains(m.banner, "Achievement unlocked") {
		t.Errorf("expected unlock banner, got %q", m.banner)
	}
	run(t, m, reload)

	if !strings.Contains(m.View(), "[x] first") {
		t.Errorf("expected completed task:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.banner != "" {
		t.Error("banner should clear on the next key press")
	}

	p, _ := tracker.Profile(ctx)
	if p.Stats.TotalPoints != 60 {
		t.Errorf("expected 60 points, got %d", p.Stats.TotalPoints)
	}
}

func TestModelAddAndDelete(t *testing.T) {
	m, tracker := setupModel(t, nil)
	ctx := context.Background()
	run(t, m, m.load())

	m.Update(runes("a"))
	if !m.adding {
		t.Fatal("expected input mode")
	}
	m.Update(runes("buy milk"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	reload := run(t, m, cmd)
	run(t, m, reload)

	list, _ := tracker.List(ctx, tasks.Filter{})
	if len(list) != 1 || list[0].Text != "buy milk" {
		t.Fatalf("expected task to be added, got %+v", list)
	}
	if !strings.Contains(m.View(), `Added "buy milk"`) {
		t.Errorf("expected status line:\n%s", m.View())
	}

	_, cmd = m.Update(runes("d"))
	run(t, m, run(t, m, cmd))

	list, _ = tracker.List(ctx, tasks.Filter{})
	if len(list) != 0 {
		t.Errorf("expected task to be deleted, got %d", len(list))
	}
}

func TestModelCancelInput(t *testing.T) {
	m, _ := setupModel(t, nil)

	m.Update(runes("a"))
	m.Update(runes("never mind"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.adding || cmd != nil {
		t.Error("esc should leave input mode without a command")
	}
}

func TestModelViews(t *testing.T) {
	m, _ := setupModel(t, nil)
	run(t, m, m.load())

	tc := []struct {
		view ViewState
		want string
	}{
		{ProgressView, "Level 1"},
		{AchievementsView, "Getting Started"},
		{AnalyticsView, "Most productive day"},
		{TaskView, "No tasks yet"},
	}
	for _, tt := range tc {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.view != tt.view {
			t.Fatalf("expected view %s, got %s", tt.view, m.view)
		}
		if !strings.Contains(m.View(), tt.want) {
			t.Errorf("%s view missing %q:\n%s", tt.view, tt.want, m.View())
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.view != AnalyticsView {
		t.Errorf("shift+tab should go back, got %s", m.view)
	}
}

func TestModelFailure(t *testing.T) {
	m, _ := setupModel(t, nil)

	m.Update(failedMsg(errors.New("disk on fire")))
	if !strings.Contains(m.View(), "Error: disk on fire") {
		t.Errorf("expected error in view:\n%s", m.View())
	}
}

func TestModelRefreshesOnEvents(t *testing.T) {
	bus := events.NewBus(4)
	sub, cancel := bus.Subscribe()
	defer cancel()

	m, tracker := setupModel(t, sub)
	run(t, m, m.load())

	if _, err := tracker.Add(context.Background(), "from another process", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	bus.Publish(events.Event{Kind: events.TaskUpdated, Source: "watcher"})

	msg := m.waitForEvent()()
	if got, ok := msg.(Msg); !ok || got.kind != MsgEvent {
		t.Fatalf("expected event message, got %#v", msg)
	}

	_, cmd := m.Update(msg)
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("expected reload and wait commands, got %#v", batch)
	}
	run(t, m, batch[0])

	if !strings.Contains(m.View(), "from another process") {
		t.Errorf("expected reloaded task:\n%s", m.View())
	}
}
