package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

const taskColumns = `id, text, completed, due_date, created_at`

// TaskRepository implements [models.Repository] for [models.Task] persistence.
type TaskRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Task] = (*TaskRepository)(nil)

// NewTaskRepository creates a new [TaskRepository] with the given database connection
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task, generating an ID when the task has none.
func (r *TaskRepository) Create(task *models.Task) error {
	if task.ID == "" {
		task.ID = shared.GenerateID()
	}

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "tasks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if err := insertTask(r.db, sequence, task); err != nil {
		return err
	}
	return nil
}

// Get retrieves a task by ID, excluding soft-deleted tasks
func (r *TaskRepository) Get(id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND deleted_at IS NULL`

	task, err := scanTask(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update writes the mutable fields of task (text, completed, due date).
func (r *TaskRepository) Update(task *models.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		UPDATE tasks
		SET text = ?, completed = ?, due_date = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, task.Text, task.Completed, nullTime(task.DueDate), time.Now(), task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return expectRow(result, task.ID)
}

// SetCompleted moves a task to the given completion state.
//
// changed is true only when the stored state actually flipped, so concurrent callers
// completing the same task see exactly one transition.
func (r *TaskRepository) SetCompleted(id string, completed bool) (changed bool, err error) {
	query := `
		UPDATE tasks
		SET completed = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL AND completed != ?
	`

	result, err := r.db.Exec(query, completed, time.Now(), id, completed)
	if err != nil {
		return false, fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	if _, err := r.Get(id); err != nil {
		return false, err
	}
	return false, nil
}

// Delete soft-deletes a task by ID
func (r *TaskRepository) Delete(id string) error {
	query := `
		UPDATE tasks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return expectRow(result, id)
}

// DeleteAll soft-deletes every task and returns how many were removed.
func (r *TaskRepository) DeleteAll() (int, error) {
	result, err := r.db.Exec(`UPDATE tasks SET deleted_at = ? WHERE deleted_at IS NULL`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// List retrieves tasks matching criteria in insertion order, excluding soft-deleted tasks.
//
// Supported criteria: "completed" (bool), "search" (string, case-insensitive substring of text).
func (r *TaskRepository) List(criteria map[string]any) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL`
	args := []any{}

	if completed, ok := criteria["completed"].(bool); ok {
		query += " AND completed = ?"
		args = append(args, completed)
	}

	if search, ok := criteria["search"].(string); ok && strings.TrimSpace(search) != "" {
		query += " AND text LIKE ? COLLATE NOCASE"
		args = append(args, "%"+strings.TrimSpace(search)+"%")
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tasks, nil
}

// ReplaceAll swaps the whole collection for tasks in one transaction.
//
// Previous rows, soft-deleted ones included, are removed so imported IDs can be reused.
func (r *TaskRepository) ReplaceAll(tasks []models.Task) error {
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return fmt.Errorf("%w: task %d: %v", shared.ErrInvalidInput, i, err)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	for i := range tasks {
		sequence, err := nextSequence(tx, "tasks")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		if err := insertTask(tx, sequence, &tasks[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func insertTask(ex execer, sequence int, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, sequence, text, completed, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := ex.Exec(query, task.ID, sequence, task.Text, task.Completed, nullTime(task.DueDate), task.CreatedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// scanTask scans a single row into a [models.Task]
func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task    models.Task
		dueDate sql.NullTime
	)

	err := row.Scan(&task.ID, &task.Text, &task.Completed, &dueDate, &task.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	return &task, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
