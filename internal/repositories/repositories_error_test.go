package repositories

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/shared"
)

func TestTaskRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			err := repo.Create(newTask("   "))
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput for empty text, got %v", err)
			}
		})

		t.Run("TextTooLong", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			err := repo.Create(newTask(strings.Repeat("x", models.MaxTaskText+1)))
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("DuplicateID", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			if err := repo.Create(models.NewTask("dup", "one", nil, created)); err != nil {
				t.Fatalf("failed to create first task: %v", err)
			}
			if err := repo.Create(models.NewTask("dup", "two", nil, created)); err == nil {
				t.Fatal("expected error when creating task with duplicate id")
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTaskRepository(db)
			db.Close()

			if err := repo.Create(newTask("late")); err == nil {
				t.Fatal("expected error on closed database")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			_, err := repo.Get("nonexistent-id")
			if !errors.Is(err, shared.ErrTaskNotFound) {
				t.Fatalf("expected ErrTaskNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			err := repo.Update(models.NewTask("nonexistent-id", "x", nil, created))
			if !errors.Is(err, shared.ErrTaskNotFound) {
				t.Fatalf("expected ErrTaskNotFound, got %v", err)
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))
			task := newTask("gone")

			if err := repo.Create(task); err != nil {
				t.Fatalf("failed to create task: %v", err)
			}
			if err := repo.Delete(task.ID); err != nil {
				t.Fatalf("failed to delete task: %v", err)
			}

			if err := repo.Update(task); err == nil {
				t.Fatal("expected error when updating deleted task")
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))
			task := newTask("valid")

			if err := repo.Create(task); err != nil {
				t.Fatalf("failed to create task: %v", err)
			}

			task.Text = ""
			if err := repo.Update(task); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("SetCompleted", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			if _, err := repo.SetCompleted("nonexistent-id", true); !errors.Is(err, shared.ErrTaskNotFound) {
				t.Fatalf("expected ErrTaskNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrTaskNotFound) {
				t.Fatalf("expected ErrTaskNotFound, got %v", err)
			}
		})

		t.Run("Twice", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))
			task := newTask("once")

			if err := repo.Create(task); err != nil {
				t.Fatalf("failed to create task: %v", err)
			}
			if err := repo.Delete(task.ID); err != nil {
				t.Fatalf("failed to delete task: %v", err)
			}
			if err := repo.Delete(task.ID); err == nil {
				t.Fatal("expected error when deleting twice")
			}
		})
	})

	t.Run("ReplaceAll", func(t *testing.T) {
		t.Run("InvalidTaskLeavesCollection", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			if err := repo.Create(newTask("keep me")); err != nil {
				t.Fatalf("failed to create task: %v", err)
			}

			err := repo.ReplaceAll([]models.Task{
				{ID: "a", Text: "fine", CreatedAt: created},
				{ID: "b", Text: "", CreatedAt: created},
			})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}

			tasks, _ := repo.List(nil)
			if len(tasks) != 1 || tasks[0].Text != "keep me" {
				t.Errorf("expected original collection, got %+v", tasks)
			}
		})

		t.Run("DuplicateIDsRollBack", func(t *testing.T) {
			repo := NewTaskRepository(setupTestDB(t))

			if err := repo.Create(newTask("keep me")); err != nil {
				t.Fatalf("failed to create task: %v", err)
			}

			err := repo.ReplaceAll([]models.Task{
				{ID: "a", Text: "one", CreatedAt: created},
				{ID: "a", Text: "two", CreatedAt: created.Add(time.Minute)},
			})
			if err == nil {
				t.Fatal("expected error for duplicate ids")
			}

			tasks, _ := repo.List(nil)
			if len(tasks) != 1 || tasks[0].Text != "keep me" {
				t.Errorf("expected rollback to keep original collection, got %+v", tasks)
			}
		})
	})
}

func TestBlobRepositoryErrors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBlobRepository(db)
	db.Close()

	if _, _, err := repo.Get("x"); err == nil {
		t.Error("expected error on closed database")
	}
	err := repo.Update(func(progress.GetFunc) (map[string][]byte, error) {
		return map[string][]byte{"x": []byte("1")}, nil
	})
	if err == nil {
		t.Error("expected error on closed database")
	}
}
