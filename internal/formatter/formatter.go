// package formatter renders tasks, analytics and progress to export formats (JSON, YAML, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat maps a flag value or file extension to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidFormat, s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ExportTasks encodes tasks in the given format.
func ExportTasks(tasks []models.Task, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportTasksJSON(tasks)
	case FormatYAML:
		return ExportTasksYAML(tasks)
	case FormatCSV:
		return ExportTasksCSV(tasks)
	case FormatMarkdown:
		return ExportTasksMarkdown(tasks), nil
	default:
		return nil, fmt.Errorf("%w: tasks cannot be exported as %q", shared.ErrInvalidFormat, format)
	}
}

// ExportTasksJSON encodes tasks as an indented JSON array. An empty collection encodes as [].
func ExportTasksJSON(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportTasksYAML encodes tasks as a YAML sequence.
func ExportTasksYAML(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportTasksCSV converts tasks to CSV with columns: ID, Text, Completed, Due Date, Created At
func ExportTasksCSV(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Text", "Completed", "Due Date", "Created At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, task := range tasks {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Format(time.RFC3339)
		}
		record := []string{
			task.ID,
			task.Text,
			strconv.FormatBool(task.Completed),
			due,
			task.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportTasksMarkdown renders tasks as a checklist, pending tasks first.
func ExportTasksMarkdown(tasks []models.Task) []byte {
	var buf bytes.Buffer

	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}

	buf.WriteString("# Tasks\n\n")
	fmt.Fprintf(&buf, "**Total**: %d\n", len(tasks))
	fmt.Fprintf(&buf, "**Completed**: %d\n\n", done)

	for _, pass := range []bool{false, true} {
		for _, t := range tasks {
			if t.Completed != pass {
				continue
			}
			buf.WriteString(checklistLine(t))
		}
	}

	return buf.Bytes()
}

func checklistLine(t models.Task) string {
	box := " "
	if t.Completed {
		box = "x"
	}
	line := fmt.Sprintf("- [%s] %s", box, t.Text)
	if t.DueDate != nil {
		line += fmt.Sprintf(" (due %s)", shared.DayKey(*t.DueDate))
	}
	return line + "\n"
}

// ImportTasks decodes a JSON array or YAML sequence of tasks.
func ImportTasks(data []byte, format Format) ([]models.Task, error) {
	switch format {
	case FormatJSON:
		return ImportTasksJSON(data)
	case FormatYAML:
		return ImportTasksYAML(data)
	default:
		return nil, fmt.Errorf("%w: tasks cannot be imported from %q", shared.ErrInvalidFormat, format)
	}
}

// ImportTasksJSON decodes a JSON array of tasks, the format produced by [ExportTasksJSON].
func ImportTasksJSON(data []byte) ([]models.Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of tasks", shared.ErrInvalidFormat)
	}

	var tasks []models.Task
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err)
	}
	return tasks, nil
}

// ImportTasksYAML decodes a YAML sequence of tasks.
func ImportTasksYAML(data []byte) ([]models.Task, error) {
	var tasks []models.Task
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}
