package models

// Category breakdown labels.
const (
	BucketCompleted = "Completed"
	BucketDueSoon   = "Due Soon"
	BucketOverdue   = "Overdue"
	BucketNoDueDate = "No Due Date"
)

// DayData is one calendar day of the daily series.
type DayData struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Completed int    `json:"completed"`
	Created   int    `json:"created"`
	Overdue   int    `json:"overdue"`
}

// WeekData is one 7-day window of the weekly series.
type WeekData struct {
	Week         string `json:"week"`
	Completed    int    `json:"completed"`
	Created      int    `json:"created"`
	Productivity int    `json:"productivity"`
}

// CategoryCount is one bucket of the category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TaskAnalytics is a derived snapshot of a task collection. It is never persisted.
type TaskAnalytics struct {
	TotalTasks             int             `json:"totalTasks"`
	CompletedTasks         int             `json:"completedTasks"`
	PendingTasks           int             `json:"pendingTasks"`
	OverdueTasks           int             `json:"overdueTasks"`
	CompletionRate         float64         `json:"completionRate"`
	AverageCompletionTime  float64         `json:"averageCompletionTime"`
	TasksCreatedThisWeek   int             `json:"tasksCreatedThisWeek"`
	TasksCompletedThisWeek int             `json:"tasksCompletedThisWeek"`
	DailyData              []DayData       `json:"dailyData"`
	WeeklyData             []WeekData      `json:"weeklyData"`
	MostProductiveDay      string          `json:"mostProductiveDay"`
	CategoryBreakdown      []CategoryCount `json:"categoryBreakdown"`
}

// Bucket returns the count for label, or 0 when absent.
func (a TaskAnalytics) Bucket(label string) int {
	for _, c := range a.CategoryBreakdown {
		if c.Category == label {
			return c.Count
		}
	}
	return 0
}
