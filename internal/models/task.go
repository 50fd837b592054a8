package models

import (
	"strings"
	"time"
)

// MaxTaskText bounds the length of a task label.
const MaxTaskText = 500

// Task is a single to-do item. ID and CreatedAt never change after creation.
type Task struct {
	ID        string     `json:"id" yaml:"id" validate:"required"`
	Text      string     `json:"text" yaml:"text" validate:"required,max=500"`
	Completed bool       `json:"completed" yaml:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt" validate:"required"`
}

var _ Model = (*Task)(nil)

// NewTask builds an incomplete task with the given id, trimmed text and creation time.
func NewTask(id, text string, due *time.Time, createdAt time.Time) *Task {
	return &Task{
		ID:        id,
		Text:      strings.TrimSpace(text),
		DueDate:   due,
		CreatedAt: createdAt,
	}
}

// Key returns the task id.
func (t *Task) Key() string { return t.ID }

// Validate checks the struct tags of the task.
func (t *Task) Validate() error {
	return ValidateStruct(t)
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool { return t.DueDate != nil }

// IsOverdue reports whether the task is incomplete with a due date strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// IsDueSoon reports whether the task is incomplete and due in the future, less than window away.
func (t Task) IsDueSoon(now time.Time, window time.Duration) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.After(now) && t.DueDate.Sub(now) < window
}
