package progress

import (
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

// nextStreak returns the streak after a completion at now.
//
// Days are compared in now's location.
func nextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}

	switch shared.CalendarDaysBetween(*last, now, now.Location()) {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// evaluate applies the category rule to a locked achievement and reports whether it is now satisfied.
func evaluate(a *models.Achievement, def Definition, known bool, stats models.UserStats, now time.Time) bool {
	switch a.Category {
	case models.CategoryTasks:
		a.Progress = stats.TotalTasksCompleted
		return a.Progress >= a.Requirement
	case models.CategoryStreak:
		a.Progress = stats.CurrentStreak
		return a.Progress >= a.Requirement
	case models.CategorySpecial:
		if !known || !def.MatchesHour(now.Hour()) {
			return false
		}
		a.Progress = 1
		return true
	default:
		return false
	}
}
