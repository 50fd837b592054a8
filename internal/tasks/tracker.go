package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/analytics"
	"github.com/desertthunder/taskx/internal/events"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/shared"
)

// TaskStore persists the task collection. Implemented by repositories.TaskRepository.
type TaskStore interface {
	Create(task *models.Task) error
	Get(id string) (*models.Task, error)
	Update(task *models.Task) error
	SetCompleted(id string, completed bool) (bool, error)
	Delete(id string) error
	DeleteAll() (int, error)
	List(criteria map[string]any) ([]*models.Task, error)
	ReplaceAll(tasks []models.Task) error
}

// ProgressEngine is the part of [progress.Engine] the tracker drives.
type ProgressEngine interface {
	RecordTaskCompletion(now time.Time) (*progress.Result, error)
	Profile() (*progress.Profile, error)
}

// Status filters [Tracker.List].
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus maps a flag value to a [Status].
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted, "done":
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("%w: status %q (want all, pending or completed)", shared.ErrInvalidArgument, s)
	}
}

// Filter narrows [Tracker.List].
type Filter struct {
	Status Status
	Search string
}

func (f Filter) criteria() map[string]any {
	c := map[string]any{}
	switch f.Status {
	case StatusPending:
		c["completed"] = false
	case StatusCompleted:
		c["completed"] = true
	}
	if f.Search != "" {
		c["search"] = f.Search
	}
	return c
}

// CompletionResult reports what a completion toggle did.
//
// Progress is nil unless the call moved the task from incomplete to complete.
type CompletionResult struct {
	Task     *models.Task     `json:"task"`
	Changed  bool             `json:"changed"`
	Progress *progress.Result `json:"progress,omitempty"`
}

// TrackerOpts configures a [Tracker]. Store and Progress are required.
type TrackerOpts struct {
	Store    TaskStore
	Progress ProgressEngine
	Bus      *events.Bus
	Clock    func() time.Time
	Location *time.Location
	Logger   *log.Logger
}

// Tracker coordinates the task store, the progress engine and the analytics engine.
type Tracker struct {
	store    TaskStore
	progress ProgressEngine
	bus      *events.Bus
	clock    func() time.Time
	loc      *time.Location
	logger   *log.Logger
}

// NewTracker creates a [Tracker] from opts.
func NewTracker(opts TrackerOpts) (*Tracker, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: tracker requires a task store", shared.ErrInvalidConfig)
	}
	if opts.Progress == nil {
		return nil, fmt.Errorf("%w: tracker requires a progress engine", shared.ErrInvalidConfig)
	}

	t := &Tracker{
		store:    opts.Store,
		progress: opts.Progress,
		bus:      opts.Bus,
		clock:    opts.Clock,
		loc:      opts.Location,
		logger:   opts.Logger,
	}
	if t.clock == nil {
		t.clock = time.Now
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	return t, nil
}

// Now returns the tracker clock in the configured location.
func (t *Tracker) Now() time.Time {
	return t.clock().In(t.loc)
}

// Location returns the configured location.
func (t *Tracker) Location() *time.Location { return t.loc }

// Add creates a task with the given text and optional due date.
func (t *Tracker) Add(ctx context.Context, text string, due *time.Time) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	task := models.NewTask(shared.GenerateID(), text, due, t.Now())
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if err := t.store.Create(task); err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}

	t.logger.Debug("task added", "id", task.ID)
	t.publish(events.Event{Kind: events.TaskCreated, TaskID: task.ID})
	return task, nil
}

// Complete marks a task complete.
//
// Only the call that performs the incomplete to complete transition records a completion.
// Completing an already completed task returns Changed=false and touches no stats.
func (t *Tracker) Complete(ctx context.Context, id string) (*CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	changed, err := t.store.SetCompleted(id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	task, err := t.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	result := &CompletionResult{Task: task, Changed: changed}
	if !changed {
		return result, nil
	}

	res, err := t.progress.RecordTaskCompletion(t.Now())
	if err != nil {
		if _, revertErr := t.store.SetCompleted(id, false); revertErr != nil {
			t.logger.Error("failed to revert completion", "id", id, "error", revertErr)
		}
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}
	result.Progress = res

	unlocked := make([]string, 0, len(res.NewlyUnlocked))
	for _, a := range res.NewlyUnlocked {
		unlocked = append(unlocked, a.ID)
	}

	t.logger.Info("task completed", "id", id, "points", res.Stats.TotalPoints, "streak", res.Stats.CurrentStreak)
	t.publish(events.Event{Kind: events.TaskUpdated, TaskID: id})
	t.publish(events.Event{Kind: events.StatsUpdated, TaskID: id, Unlocked: unlocked})
	return result, nil
}

// Reopen marks a task incomplete. Points and streaks are left as they are.
func (t *Tracker) Reopen(ctx context.Context, id string) (*CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	changed, err := t.store.SetCompleted(id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen task: %w", err)
	}

	task, err := t.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	if changed {
		t.publish(events.Event{Kind: events.TaskUpdated, TaskID: id})
	}
	return &CompletionResult{Task: task, Changed: changed}, nil
}

// Toggle flips the completion state of a task.
func (t *Tracker) Toggle(ctx context.Context, id string) (*CompletionResult, error) {
	task, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.Completed {
		return t.Reopen(ctx, id)
	}
	return t.Complete(ctx, id)
}

// Edit replaces the text and due date of a task.
func (t *Tracker) Edit(ctx context.Context, id, text string, due *time.Time) (*models.Task, error) {
	task, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Text = strings.TrimSpace(text)
	task.DueDate = due
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if err := t.store.Update(task); err != nil {
		return nil, fmt.Errorf("failed to edit task: %w", err)
	}

	t.publish(events.Event{Kind: events.TaskUpdated, TaskID: id})
	return task, nil
}

// Delete removes a task.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	t.publish(events.Event{Kind: events.TaskUpdated, TaskID: id})
	return nil
}

// Clear removes every task and returns how many were removed.
func (t *Tracker) Clear(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, err := t.store.DeleteAll()
	if err != nil {
		return 0, fmt.Errorf("failed to clear tasks: %w", err)
	}

	t.logger.Info("tasks cleared", "count", n)
	t.publish(events.Event{Kind: events.TaskUpdated})
	return n, nil
}

// Get returns one task.
func (t *Tracker) Get(ctx context.Context, id string) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.store.Get(id)
}

// List returns tasks matching filter in insertion order.
func (t *Tracker) List(ctx context.Context, filter Filter) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, err := t.store.List(filter.criteria())
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]models.Task, 0, len(stored))
	for _, task := range stored {
		out = append(out, *task)
	}
	return out, nil
}

// Export returns the whole collection.
func (t *Tracker) Export(ctx context.Context) ([]models.Task, error) {
	return t.List(ctx, Filter{Status: StatusAll})
}

// Import replaces the whole collection with tasks.
//
// Tasks without an id get a new one and tasks without a creation time are stamped now.
// Duplicate ids or invalid tasks reject the import and leave the collection untouched.
func (t *Tracker) Import(ctx context.Context, tasks []models.Task) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := t.Now()
	seen := make(map[string]bool, len(tasks))
	normalized := make([]models.Task, len(tasks))
	for i, task := range tasks {
		if task.ID == "" {
			task.ID = shared.GenerateID()
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = now
		}
		task.Text = strings.TrimSpace(task.Text)

		if seen[task.ID] {
			return 0, fmt.Errorf("%w: duplicate task id %s", shared.ErrInvalidInput, task.ID)
		}
		seen[task.ID] = true

		if err := task.Validate(); err != nil {
			return 0, fmt.Errorf("%w: task %d: %v", shared.ErrInvalidInput, i, err)
		}
		normalized[i] = task
	}

	if err := t.store.ReplaceAll(normalized); err != nil {
		return 0, fmt.Errorf("failed to import tasks: %w", err)
	}

	t.logger.Info("tasks imported", "count", len(normalized))
	t.publish(events.Event{Kind: events.TaskUpdated})
	return len(normalized), nil
}

// Analytics computes the analytics snapshot of the current collection.
func (t *Tracker) Analytics(ctx context.Context) (models.TaskAnalytics, error) {
	tasks, err := t.Export(ctx)
	if err != nil {
		return models.TaskAnalytics{}, err
	}
	return analytics.Compute(tasks, t.Now()), nil
}

// Profile returns the progress profile.
func (t *Tracker) Profile(ctx context.Context) (*progress.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := t.progress.Profile()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// publish sends an event on the bus without blocking.
func (t *Tracker) publish(ev events.Event) {
	if t.bus == nil {
		return
	}
	ev.Source = "tracker"
	ev.At = t.clock()
	t.bus.Publish(ev)
}
