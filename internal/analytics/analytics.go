package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

const (
	// DailyWindow is the number of entries in the daily series.
	DailyWindow = 30
	// WeeklyWindow is the number of entries in the weekly series.
	WeeklyWindow = 8
	// DueSoonWindow bounds the "Due Soon" bucket.
	DueSoonWindow = 48 * time.Hour

	day  = 24 * time.Hour
	week = 7 * day

	defaultProductiveDay = "Monday"
)

// Compute returns the analytics snapshot of tasks as of now.
func Compute(tasks []models.Task, now time.Time) models.TaskAnalytics {
	a := models.TaskAnalytics{TotalTasks: len(tasks)}

	weekAgo := now.Add(-week)
	var elapsedDays int
	for _, t := range tasks {
		if t.Completed {
			a.CompletedTasks++
			elapsedDays += completionDays(t, now)
		} else {
			a.PendingTasks++
		}

		if t.IsOverdue(now) {
			a.OverdueTasks++
		}

		if inWindow(t.CreatedAt, weekAgo, now) {
			a.TasksCreatedThisWeek++
			if t.Completed {
				a.TasksCompletedThisWeek++
			}
		}
	}

	if a.TotalTasks > 0 {
		a.CompletionRate = float64(a.CompletedTasks) / float64(a.TotalTasks) * 100
	}
	if a.CompletedTasks > 0 {
		a.AverageCompletionTime = float64(elapsedDays) / float64(a.CompletedTasks)
	}

	a.DailyData = dailySeries(tasks, now)
	a.WeeklyData = weeklySeries(tasks, now)
	a.MostProductiveDay = mostProductiveDay(a.DailyData, now.Location())
	a.CategoryBreakdown = categoryBreakdown(tasks, now, a.CompletedTasks, a.OverdueTasks)

	return a
}

// completionDays approximates how long a completed task took: whole days from creation to now, at least 1.
func completionDays(t models.Task, now time.Time) int {
	days := int(math.Ceil(now.Sub(t.CreatedAt).Hours() / 24))
	return max(1, days)
}

func dailySeries(tasks []models.Task, now time.Time) []models.DayData {
	loc := now.Location()
	series := make([]models.DayData, DailyWindow)
	index := make(map[string]int, DailyWindow)

	for i := range DailyWindow {
		key := shared.DayKey(shared.AddDays(now, i-(DailyWindow-1)))
		series[i].Date = key
		index[key] = i
	}

	for _, t := range tasks {
		if i, ok := index[shared.DayKey(t.CreatedAt.In(loc))]; ok {
			series[i].Created++
			if t.Completed {
				series[i].Completed++
			}
		}

		if t.IsOverdue(now) {
			if i, ok := index[shared.DayKey(t.DueDate.In(loc))]; ok {
				series[i].Overdue++
			}
		}
	}

	return series
}

// inWindow reports whether t falls in (start, end]. The "this week" totals and every weekly
// window use it, so tasksCreatedThisWeek always equals the created count of the last window.
func inWindow(t, start, end time.Time) bool {
	return t.After(start) && !t.After(end)
}

// weeklySeries buckets tasks by creation time into trailing windows (end-7d, end], the last ending at now.
func weeklySeries(tasks []models.Task, now time.Time) []models.WeekData {
	series := make([]models.WeekData, WeeklyWindow)

	for i := range WeeklyWindow {
		end := now.Add(-time.Duration(WeeklyWindow-1-i) * week)
		start := end.Add(-week)

		w := models.WeekData{Week: fmt.Sprintf("Week %d", i+1)}
		for _, t := range tasks {
			if inWindow(t.CreatedAt, start, end) {
				w.Created++
				if t.Completed {
					w.Completed++
				}
			}
		}
		if w.Created > 0 {
			w.Productivity = int(math.Round(float64(w.Completed) / float64(w.Created) * 100))
		}
		series[i] = w
	}

	return series
}

type weekdayTotals struct {
	completed int
	created   int
}

// mostProductiveDay aggregates the daily series by weekday and picks the best completed/created ratio.
//
// Weekdays are visited in first-seen order; a later weekday must be strictly better to win,
// so ties go to the earlier weekday, Monday included. Monday is returned only when no
// weekday has a completion.
func mostProductiveDay(daily []models.DayData, loc *time.Location) string {
	totals := make(map[string]*weekdayTotals, 7)
	order := make([]string, 0, 7)

	for _, d := range daily {
		date, err := time.ParseInLocation(shared.DateLayout, d.Date, loc)
		if err != nil {
			continue
		}
		name := date.Weekday().String()
		w, ok := totals[name]
		if !ok {
			w = &weekdayTotals{}
			totals[name] = w
			order = append(order, name)
		}
		w.completed += d.Completed
		w.created += d.Created
	}

	best, bestRatio := "", 0.0
	for _, name := range order {
		w := totals[name]
		if w.created == 0 {
			continue
		}
		if ratio := float64(w.completed) / float64(w.created); ratio > bestRatio {
			best, bestRatio = name, ratio
		}
	}

	if best == "" {
		return defaultProductiveDay
	}
	return best
}

// categoryBreakdown reports the four urgency buckets. They do not cover incomplete tasks due more than two days out.
func categoryBreakdown(tasks []models.Task, now time.Time, completed, overdue int) []models.CategoryCount {
	var dueSoon, noDueDate int
	for _, t := range tasks {
		if t.IsDueSoon(now, DueSoonWindow) {
			dueSoon++
		}
		if !t.Completed && !t.HasDueDate() {
			noDueDate++
		}
	}

	return []models.CategoryCount{
		{Category: models.BucketCompleted, Count: completed},
		{Category: models.BucketDueSoon, Count: dueSoon},
		{Category: models.BucketOverdue, Count: overdue},
		{Category: models.BucketNoDueDate, Count: noDueDate},
	}
}
