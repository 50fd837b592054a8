package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskx/internal/events"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoaded MsgKind = iota
	MsgToggled
	MsgMutated
	MsgEvent
	MsgFailed
)

// snapshot is everything the views render, loaded in one command.
type snapshot struct {
	tasks     []models.Task
	profile   *progress.Profile
	analytics models.TaskAnalytics
}

// loadedMsg is the constructor for [MsgLoaded]
func loadedMsg(s snapshot) Msg {
	return Msg{kind: MsgLoaded, data: s}
}

// toggledMsg is the constructor for [MsgToggled]
func toggledMsg(res *tasks.CompletionResult) Msg {
	return Msg{kind: MsgToggled, data: res}
}

// mutatedMsg is the constructor for [MsgMutated], sent after add and delete
func mutatedMsg(status string) Msg {
	return Msg{kind: MsgMutated, data: status}
}

// eventMsg is the constructor for [MsgEvent]
func eventMsg(ev events.Event) Msg {
	return Msg{kind: MsgEvent, data: ev}
}

// failedMsg is the constructor for [MsgFailed]
func failedMsg(err error) Msg {
	return Msg{kind: MsgFailed, data: err}
}
