package formatter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/spf13/afero"
)

// DefaultExportName is the file name used when no output path is given, e.g. taskx-tasks-2025-06-18.json
func DefaultExportName(now time.Time, format Format) string {
	return fmt.Sprintf("taskx-tasks-%s%s", shared.DayKey(now), format.Extension())
}

// Writer reads and writes export files through an [afero.Fs].
type Writer struct {
	fs afero.Fs
}

// NewWriter creates a [Writer]. A nil fs uses the OS filesystem.
func NewWriter(fs afero.Fs) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs}
}

// WriteTasks encodes tasks and writes them to path.
//
// An empty path writes [DefaultExportName] into dir. Parent directories are created.
func (w *Writer) WriteTasks(path, dir string, tasks []models.Task, format Format, now time.Time) (string, error) {
	if path == "" {
		path = filepath.Join(dir, DefaultExportName(now, format))
	}

	data, err := ExportTasks(tasks, format)
	if err != nil {
		return "", err
	}

	if err := w.write(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAnalytics renders a report and writes it to path.
func (w *Writer) WriteAnalytics(path string, a models.TaskAnalytics, format Format) error {
	data, err := ExportAnalytics(a, format)
	if err != nil {
		return err
	}
	return w.write(path, data)
}

// ReadTasks decodes a task file. The format is taken from the file extension.
func (w *Writer) ReadTasks(path string) ([]models.Task, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ImportTasks(data, format)
}

func (w *Writer) write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := afero.WriteFile(w.fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
