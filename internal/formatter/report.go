package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/shared"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Number renders n with thousands separators.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// ExportAnalytics renders an analytics snapshot in the given format.
func ExportAnalytics(a models.TaskAnalytics, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return AnalyticsText(a), nil
	case FormatMarkdown:
		return AnalyticsMarkdown(a), nil
	case FormatCSV:
		return AnalyticsDailyCSV(a)
	default:
		return nil, fmt.Errorf("%w: analytics cannot be exported as %q", shared.ErrInvalidFormat, format)
	}
}

// AnalyticsText renders the summary, weekly series and category breakdown as plain text.
func AnalyticsText(a models.TaskAnalytics) []byte {
	var buf bytes.Buffer

	buf.WriteString("Task Analytics\n\n")
	fmt.Fprintf(&buf, "Total tasks:          %s\n", Number(a.TotalTasks))
	fmt.Fprintf(&buf, "Completed:            %s\n", Number(a.CompletedTasks))
	fmt.Fprintf(&buf, "Pending:              %s\n", Number(a.PendingTasks))
	fmt.Fprintf(&buf, "Overdue:              %s\n", Number(a.OverdueTasks))
	fmt.Fprintf(&buf, "Completion rate:      %.1f%%\n", a.CompletionRate)
	fmt.Fprintf(&buf, "Avg completion time:  %s\n", days(a.AverageCompletionTime))
	fmt.Fprintf(&buf, "Created this week:    %d\n", a.TasksCreatedThisWeek)
	fmt.Fprintf(&buf, "Completed this week:  %d\n", a.TasksCompletedThisWeek)
	fmt.Fprintf(&buf, "Most productive day:  %s\n", a.MostProductiveDay)

	buf.WriteString("\nWeekly\n")
	for _, w := range a.WeeklyData {
		fmt.Fprintf(&buf, "  %-7s created %3d  completed %3d  %3d%%\n", w.Week, w.Created, w.Completed, w.Productivity)
	}

	buf.WriteString("\nCategories\n")
	for _, c := range a.CategoryBreakdown {
		fmt.Fprintf(&buf, "  %-12s %d\n", c.Category, c.Count)
	}

	return buf.Bytes()
}

// AnalyticsMarkdown renders the same report as [AnalyticsText] with Markdown tables.
func AnalyticsMarkdown(a models.TaskAnalytics) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Task Analytics\n\n")
	buf.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&buf, "| Total tasks | %s |\n", Number(a.TotalTasks))
	fmt.Fprintf(&buf, "| Completed | %s |\n", Number(a.CompletedTasks))
	fmt.Fprintf(&buf, "| Pending | %s |\n", Number(a.PendingTasks))
	fmt.Fprintf(&buf, "| Overdue | %s |\n", Number(a.OverdueTasks))
	fmt.Fprintf(&buf, "| Completion rate | %.1f%% |\n", a.CompletionRate)
	fmt.Fprintf(&buf, "| Avg completion time | %s |\n", days(a.AverageCompletionTime))
	fmt.Fprintf(&buf, "| Created this week | %d |\n", a.TasksCreatedThisWeek)
	fmt.Fprintf(&buf, "| Completed this week | %d |\n", a.TasksCompletedThisWeek)
	fmt.Fprintf(&buf, "| Most productive day | %s |\n", a.MostProductiveDay)

	buf.WriteString("\n## Weekly\n\n")
	buf.WriteString("| Week | Created | Completed | Productivity |\n|---|---|---|---|\n")
	for _, w := range a.WeeklyData {
		fmt.Fprintf(&buf, "| %s | %d | %d | %d%% |\n", w.Week, w.Created, w.Completed, w.Productivity)
	}

	buf.WriteString("\n## Categories\n\n")
	for _, c := range a.CategoryBreakdown {
		fmt.Fprintf(&buf, "- **%s**: %d\n", c.Category, c.Count)
	}

	return buf.Bytes()
}

// AnalyticsDailyCSV writes the daily series with columns: Date, Created, Completed, Overdue
func AnalyticsDailyCSV(a models.TaskAnalytics) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Date", "Created", "Completed", "Overdue"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, d := range a.DailyData {
		record := []string{d.Date, strconv.Itoa(d.Created), strconv.Itoa(d.Completed), strconv.Itoa(d.Overdue)}
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

// StatsText renders the progress card: level, points, streaks and the latest unlocks.
func StatsText(p *progress.Profile) []byte {
	var buf bytes.Buffer
	s := p.Stats
	summary := progress.Summarize(p.Achievements)

	fmt.Fprintf(&buf, "Level %d  %s\n", s.Level, bar(s.LevelProgress(), 20))
	fmt.Fprintf(&buf, "Points:           %s (%d to next level)\n", Number(s.TotalPoints), s.PointsToNextLevel())
	fmt.Fprintf(&buf, "Tasks completed:  %s\n", Number(s.TotalTasksCompleted))
	fmt.Fprintf(&buf, "Current streak:   %s\n", plural(s.CurrentStreak, "day"))
	fmt.Fprintf(&buf, "Longest streak:   %s\n", plural(s.LongestStreak, "day"))
	fmt.Fprintf(&buf, "Achievements:     %d/%d\n", summary.Unlocked, summary.Total)
	fmt.Fprintf(&buf, "Member since:     %s\n", shared.DayKey(s.JoinDate))

	if len(summary.Latest) > 0 {
		buf.WriteString("\nRecent achievements\n")
		for _, a := range summary.Latest {
			fmt.Fprintf(&buf, "  %s %s\n", a.Icon, a.Name)
		}
	}

	return buf.Bytes()
}

// AchievementsText lists every achievement with its progress.
func AchievementsText(achievements []models.Achievement) []byte {
	var buf bytes.Buffer

	for _, a := range achievements {
		state := fmt.Sprintf("%d/%d", min(a.Progress, a.Requirement), a.Requirement)
		if a.Unlocked && a.UnlockedAt != nil {
			state = "unlocked " + shared.DayKey(*a.UnlockedAt)
		}
		fmt.Fprintf(&buf, "%s %-16s %-28s %s\n", a.Icon, a.Name, a.Description, state)
	}

	return buf.Bytes()
}

func bar(percent, width int) string {
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func days(d float64) string {
	if d == 0 {
		return "n/a"
	}
	return plural(int(d), "day")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
