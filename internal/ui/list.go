package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

var (
	_ list.Item = taskItem{}
	_ list.Item = achievementItem{}
)

// taskItem wraps [models.Task] to implement [list.Item].
type taskItem struct {
	task models.Task
	now  time.Time
}

func (i taskItem) FilterValue() string { return i.task.Text }
func (i taskItem) Title() string {
	box := "[ ]"
	if i.task.Completed {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s", box, i.task.Text)
}
func (i taskItem) Description() string {
	desc := "added " + shared.DayKey(i.task.CreatedAt)
	if i.task.DueDate == nil {
		return desc
	}

	due := "due " + shared.DayKey(*i.task.DueDate)
	if i.task.IsOverdue(i.now) {
		due = styles.err.Render("overdue " + shared.DayKey(*i.task.DueDate))
	}
	return fmt.Sprintf("%s • %s", desc, due)
}

// achievementItem wraps [models.Achievement] to implement [list.Item].
type achievementItem struct {
	achievement models.Achievement
}

func (i achievementItem) FilterValue() string { return i.achievement.Name }
func (i achievementItem) Title() string {
	title := fmt.Sprintf("%s %s", i.achievement.Icon, i.achievement.Name)
	if !i.achievement.Unlocked {
		return styles.help.Render(title)
	}
	return title
}
func (i achievementItem) Description() string {
	a := i.achievement
	if a.Unlocked && a.UnlockedAt != nil {
		return fmt.Sprintf("%s • unlocked %s", a.Description, shared.DayKey(*a.UnlockedAt))
	}
	return fmt.Sprintf("%s • %d/%d", a.Description, min(a.Progress, a.Requirement), a.Requirement)
}
