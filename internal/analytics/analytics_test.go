package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	tu "github.com/desertthunder/taskx/internal/testing"
)

// Wednesday, noon.
var now = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func ago(days int) time.Time { return now.Add(-tu.Days(days)) }

func TestComputeEmpty(t *testing.T) {
	for _, tasks := range [][]models.Task{nil, {}} {
		a := Compute(tasks, now)

		if a.TotalTasks != 0 || a.CompletedTasks != 0 || a.PendingTasks != 0 || a.OverdueTasks != 0 {
			t.Errorf("expected zero totals, got %+v", a)
		}
		if a.CompletionRate != 0 || a.AverageCompletionTime != 0 {
			t.Errorf("expected zero rates, got %v / %v", a.CompletionRate, a.AverageCompletionTime)
		}
		if len(a.DailyData) != DailyWindow {
			t.Errorf("expected %d daily entries, got %d", DailyWindow, len(a.DailyData))
		}
		if len(a.WeeklyData) != WeeklyWindow {
			t.Errorf("expected %d weekly entries, got %d", WeeklyWindow, len(a.WeeklyData))
		}
		for _, w := range a.WeeklyData {
			if w.Productivity != 0 {
				t.Errorf("%s: expected 0 productivity, got %d", w.Week, w.Productivity)
			}
		}
		if a.MostProductiveDay != "Monday" {
			t.Errorf("expected default Monday, got %s", a.MostProductiveDay)
		}
		for _, c := range a.CategoryBreakdown {
			if c.Count != 0 {
				t.Errorf("%s: expected 0, got %d", c.Category, c.Count)
			}
		}
	}
}

func TestComputeScenario(t *testing.T) {
	tasks := []models.Task{
		tu.NewTask("1", "old done", ago(10), tu.Completed()),
		tu.NewTask("2", "recent done", ago(3), tu.Completed()),
		tu.NewTask("3", "late", ago(20), tu.Due(ago(1))),
		tu.NewTask("4", "later", ago(15), tu.Due(now.Add(tu.Days(10)))),
	}

	a := Compute(tasks, now)

	tc := []struct {
		name string
		got  any
		want any
	}{
		{"totalTasks", a.TotalTasks, 4},
		{"completedTasks", a.CompletedTasks, 2},
		{"pendingTasks", a.PendingTasks, 2},
		{"overdueTasks", a.OverdueTasks, 1},
		{"completionRate", a.CompletionRate, 50.0},
		{"averageCompletionTime", a.AverageCompletionTime, 6.5},
		{"tasksCreatedThisWeek", a.TasksCreatedThisWeek, 1},
		{"tasksCompletedThisWeek", a.TasksCompletedThisWeek, 1},
		{"completed bucket", a.Bucket(models.BucketCompleted), 2},
		{"due soon bucket", a.Bucket(models.BucketDueSoon), 0},
		{"overdue bucket", a.Bucket(models.BucketOverdue), 1},
		{"no due date bucket", a.Bucket(models.BucketNoDueDate), 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCompletedPlusPendingIsTotal(t *testing.T) {
	for n := range 20 {
		var tasks []models.Task
		for i := range n {
			var opts []tu.TaskOpt
			if i%3 == 0 {
				opts = append(opts, tu.Completed())
			}
			if i%4 == 0 {
				opts = append(opts, tu.Due(ago(i-5)))
			}
			tasks = append(tasks, tu.NewTask(fmt.Sprint(i), "t", ago(i*2), opts...))
		}

		a := Compute(tasks, now)
		if a.CompletedTasks+a.PendingTasks != a.TotalTasks {
			t.Errorf("n=%d: %d + %d != %d", n, a.CompletedTasks, a.PendingTasks, a.TotalTasks)
		}
		if a.CompletionRate < 0 || a.CompletionRate > 100 {
			t.Errorf("n=%d: completion rate %v out of range", n, a.CompletionRate)
		}
		if len(a.DailyData) != DailyWindow || len(a.WeeklyData) != WeeklyWindow {
			t.Errorf("n=%d: series lengths %d/%d", n, len(a.DailyData), len(a.WeeklyData))
		}
	}
}

func TestAverageCompletionTime(t *testing.T) {
	tc := []struct {
		name    string
		created time.Time
		want    float64
	}{
		{name: "just now", created: now, want: 1},
		{name: "one hour", created: now.Add(-time.Hour), want: 1},
		{name: "26 hours rounds up", created: now.Add(-26 * time.Hour), want: 2},
		{name: "exactly three days", created: ago(3), want: 3},
		{name: "created in the future", created: now.Add(tu.Days(2)), want: 1},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			a := Compute([]models.Task{tu.NewTask("x", "x", tt.created, tu.Completed())}, now)
			if a.AverageCompletionTime != tt.want {
				t.Errorf("got %v, want %v", a.AverageCompletionTime, tt.want)
			}
		})
	}
}

func TestDailySeries(t *testing.T) {
	tasks := []models.Task{
		tu.NewTask("a", "today", now.Add(-time.Hour), tu.Completed()),
		tu.NewTask("b", "today pending", now.Add(-2*time.Hour)),
		tu.NewTask("c", "yesterday", ago(1), tu.Due(ago(1))),
		tu.NewTask("d", "too old", ago(45), tu.Completed()),
		tu.NewTask("e", "overdue 40 days", ago(60), tu.Due(ago(40))),
		tu.NewTask("f", "due later today", ago(2), tu.Due(now.Add(2*time.Hour))),
	}

	daily := dailySeries(tasks, now)

	if len(daily) != DailyWindow {
		t.Fatalf("expected %d entries, got %d", DailyWindow, len(daily))
	}
	if first, last := daily[0].Date, daily[DailyWindow-1].Date; first != "2025-05-20" || last != "2025-06-18" {
		t.Errorf("unexpected range %s..%s", first, last)
	}

	today := daily[DailyWindow-1]
	if today.Created != 2 || today.Completed != 1 || today.Overdue != 0 {
		t.Errorf("unexpected today entry: %+v", today)
	}

	yesterday := daily[DailyWindow-2]
	if yesterday.Created != 1 || yesterday.Overdue != 1 {
		t.Errorf("unexpected yesterday entry: %+v", yesterday)
	}

	var created, completed, overdue int
	for _, d := range daily {
		created += d.Created
		completed += d.Completed
		overdue += d.Overdue
	}
	if created != 4 || completed != 1 || overdue != 1 {
		t.Errorf("unexpected totals created=%d completed=%d overdue=%d", created, completed, overdue)
	}
}

func TestDailySeriesUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	local := now.In(tokyo) // 21:00 JST

	// 16:00 UTC on the same UTC day is 01:00 JST the next day.
	created := time.Date(2025, 6, 17, 16, 0, 0, 0, time.UTC)
	daily := dailySeries([]models.Task{tu.NewTask("a", "a", created)}, local)

	if got := daily[DailyWindow-1]; got.Date != "2025-06-18" || got.Created != 1 {
		t.Errorf("expected task on 2025-06-18 in JST, got %+v", got)
	}
}

func TestWeeklySeries(t *testing.T) {
	tasks := []models.Task{
		tu.NewTask("a", "a", ago(1), tu.Completed()),
		tu.NewTask("b", "b", ago(2)),
		tu.NewTask("c", "c", ago(3), tu.Completed()),
		tu.NewTask("d", "d", ago(8), tu.Completed()),
		tu.NewTask("e", "e", ago(7)),
		tu.NewTask("f", "f", ago(55), tu.Completed()),
		tu.NewTask("g", "g", ago(60)),
	}

	weekly := weeklySeries(tasks, now)
	if len(weekly) != WeeklyWindow {
		t.Fatalf("expected %d entries, got %d", WeeklyWindow, len(weekly))
	}

	for i, w := range weekly {
		if want := fmt.Sprintf("Week %d", i+1); w.Week != want {
			t.Errorf("entry %d labelled %s, want %s", i, w.Week, want)
		}
	}

	current := weekly[7]
	if current.Created != 3 || current.Completed != 2 || current.Productivity != 67 {
		t.Errorf("unexpected current week: %+v", current)
	}

	previous := weekly[6]
	if previous.Created != 2 || previous.Completed != 1 || previous.Productivity != 50 {
		t.Errorf("unexpected previous week: %+v", previous)
	}

	oldest := weekly[0]
	if oldest.Created != 1 || oldest.Completed != 1 || oldest.Productivity != 100 {
		t.Errorf("unexpected oldest week: %+v", oldest)
	}
}

func TestThisWeekMatchesCurrentWindow(t *testing.T) {
	tc := []struct {
		name    string
		created time.Time
		want    int
	}{
		{name: "exactly seven days ago", created: now.Add(-7 * 24 * time.Hour), want: 0},
		{name: "just inside the week", created: now.Add(-7*24*time.Hour + time.Second), want: 1},
		{name: "now", created: now, want: 1},
		{name: "after now", created: now.Add(time.Minute), want: 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			a := Compute([]models.Task{tu.NewTask("a", "a", tt.created, tu.Completed())}, now)

			if a.TasksCreatedThisWeek != tt.want || a.TasksCompletedThisWeek != tt.want {
				t.Errorf("expected %d this week, got created=%d completed=%d",
					tt.want, a.TasksCreatedThisWeek, a.TasksCompletedThisWeek)
			}
			current := a.WeeklyData[WeeklyWindow-1]
			if current.Created != a.TasksCreatedThisWeek || current.Completed != a.TasksCompletedThisWeek {
				t.Errorf("current window %+v disagrees with this-week totals %d/%d",
					current, a.TasksCreatedThisWeek, a.TasksCompletedThisWeek)
			}
		})
	}
}

func TestMostProductiveDay(t *testing.T) {
	// now is a Wednesday; daily series starts on Tuesday 2025-05-20.
	t.Run("best ratio wins", func(t *testing.T) {
		thursday := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)
		friday := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)

		tasks := []models.Task{
			tu.NewTask("a", "a", thursday, tu.Completed()),
			tu.NewTask("b", "b", thursday),
			tu.NewTask("c", "c", friday, tu.Completed()),
		}

		a := Compute(tasks, now)
		if a.MostProductiveDay != "Friday" {
			t.Errorf("expected Friday, got %s", a.MostProductiveDay)
		}
	})

	t.Run("ties keep first seen weekday", func(t *testing.T) {
		thursday := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)
		tuesday := time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC)

		tasks := []models.Task{
			tu.NewTask("a", "a", tuesday, tu.Completed()),
			tu.NewTask("b", "b", thursday, tu.Completed()),
		}

		a := Compute(tasks, now)
		if a.MostProductiveDay != "Tuesday" {
			t.Errorf("expected Tuesday, got %s", a.MostProductiveDay)
		}
	})

	t.Run("tie with Monday keeps first seen weekday", func(t *testing.T) {
		monday := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
		tuesday := time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC)

		tasks := []models.Task{
			tu.NewTask("a", "a", monday, tu.Completed()),
			tu.NewTask("b", "b", tuesday, tu.Completed()),
		}

		if got := Compute(tasks, now).MostProductiveDay; got != "Tuesday" {
			t.Errorf("expected Tuesday, got %s", got)
		}
	})

	t.Run("Monday wins when strictly better", func(t *testing.T) {
		monday := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
		tuesday := time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC)

		tasks := []models.Task{
			tu.NewTask("a", "a", monday, tu.Completed()),
			tu.NewTask("b", "b", tuesday, tu.Completed()),
			tu.NewTask("c", "c", tuesday),
		}

		if got := Compute(tasks, now).MostProductiveDay; got != "Monday" {
			t.Errorf("expected Monday, got %s", got)
		}
	})

	t.Run("no completions defaults to Monday", func(t *testing.T) {
		tasks := []models.Task{tu.NewTask("a", "a", ago(1))}
		if got := Compute(tasks, now).MostProductiveDay; got != "Monday" {
			t.Errorf("expected Monday, got %s", got)
		}
	})
}

func TestCategoryBreakdown(t *testing.T) {
	tasks := []models.Task{
		tu.NewTask("done", "done", ago(1), tu.Completed(), tu.Due(ago(3))),
		tu.NewTask("soon", "soon", ago(1), tu.Due(now.Add(36*time.Hour))),
		tu.NewTask("edge", "edge", ago(1), tu.Due(now.Add(48*time.Hour))),
		tu.NewTask("late", "late", ago(1), tu.Due(ago(2))),
		tu.NewTask("none", "none", ago(1)),
		tu.NewTask("far", "far", ago(1), tu.Due(now.Add(tu.Days(5)))),
	}

	a := Compute(tasks, now)

	want := []models.CategoryCount{
		{Category: models.BucketCompleted, Count: 1},
		{Category: models.BucketDueSoon, Count: 1},
		{Category: models.BucketOverdue, Count: 1},
		{Category: models.BucketNoDueDate, Count: 1},
	}
	if len(a.CategoryBreakdown) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(a.CategoryBreakdown))
	}
	for i := range want {
		if a.CategoryBreakdown[i] != want[i] {
			t.Errorf("bucket %d = %+v, want %+v", i, a.CategoryBreakdown[i], want[i])
		}
	}

	var sum int
	for _, c := range a.CategoryBreakdown {
		sum += c.Count
	}
	if sum == a.TotalTasks {
		t.Error("tasks due more than two days out should fall outside every bucket")
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	tasks := []models.Task{
		tu.NewTask("a", "a", ago(1), tu.Completed()),
		tu.NewTask("b", "b", ago(9), tu.Due(ago(2))),
	}

	first := Compute(tasks, now)
	second := Compute(tasks, now)

	if fmt.Sprintf("%+v", first) != fmt.Sprintf("%+v", second) {
		t.Error("expected identical snapshots for identical input")
	}
}
