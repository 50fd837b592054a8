package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	pbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/taskx/internal/events"
	"github.com/desertthunder/taskx/internal/formatter"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TaskView ViewState = iota
	ProgressView
	AchievementsView
	AnalyticsView
	viewCount
)

func (v ViewState) String() string {
	switch v {
	case TaskView:
		return "Tasks"
	case ProgressView:
		return "Progress"
	case AchievementsView:
		return "Achievements"
	case AnalyticsView:
		return "Analytics"
	default:
		return ""
	}
}

// Service is the part of [tasks.Tracker] the TUI drives.
type Service interface {
	List(ctx context.Context, filter tasks.Filter) ([]models.Task, error)
	Add(ctx context.Context, text string, due *time.Time) (*models.Task, error)
	Toggle(ctx context.Context, id string) (*tasks.CompletionResult, error)
	Delete(ctx context.Context, id string) error
	Profile(ctx context.Context) (*progress.Profile, error)
	Analytics(ctx context.Context) (models.TaskAnalytics, error)
	Now() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	service      Service
	events       <-chan events.Event
	width        int
	height       int
	taskList     list.Model
	achievements list.Model
	input        textinput.Model
	adding       bool
	bar          pbar.Model
	snapshot     snapshot
	banner       string
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. sub may be nil; when set, every event on it triggers a reload.
func NewModel(ctx context.Context, service Service, sub <-chan events.Event) *Model {
	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = models.MaxTaskText
	input.Width = 50

	taskList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	taskList.Title = "Tasks"
	taskList.SetShowHelp(false)
	taskList.SetFilteringEnabled(false)

	achievements := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	achievements.Title = "Achievements"
	achievements.SetShowHelp(false)
	achievements.SetFilteringEnabled(false)

	return &Model{
		ctx:          ctx,
		view:         TaskView,
		service:      service,
		events:       sub,
		taskList:     taskList,
		achievements: achievements,
		input:        input,
		bar:          pbar.New(pbar.WithDefaultGradient(), pbar.WithWidth(40)),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init loads the first snapshot and starts listening for refresh events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.taskList.SetSize(msg.Width-4, msg.Height-8)
		m.achievements.SetSize(msg.Width-4, msg.Height-8)
		m.bar.Width = min(max(msg.Width-20, 10), 60)
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.handleInputKeys(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgLoaded:
		m.apply(msg.data.(snapshot))
		return m, nil

	case MsgToggled:
		res := msg.data.(*tasks.CompletionResult)
		m.err = nil
		if res.Progress != nil && len(res.Progress.NewlyUnlocked) > 0 {
			names := make([]string, 0, len(res.Progress.NewlyUnlocked))
			for _, a := range res.Progress.NewlyUnlocked {
				names = append(names, fmt.Sprintf("%s %s", a.Icon, a.Name))
			}
			m.banner = "Achievement unlocked: " + strings.Join(names, ", ")
		}
		if res.Task != nil && res.Progress != nil {
			m.status = fmt.Sprintf("Completed %q (+%d points)", res.Task.Text, models.PointsPerTask)
		}
		return m, m.load()

	case MsgMutated:
		m.err = nil
		m.status = msg.data.(string)
		return m, m.load()

	case MsgEvent:
		return m, tea.Batch(m.load(), m.waitForEvent())

	case MsgFailed:
		m.err = msg.data.(error)
		return m, nil
	}
	return m, nil
}

// apply replaces the rendered snapshot, keeping the list cursor where it was.
func (m *Model) apply(s snapshot) {
	m.snapshot = s
	now := m.service.Now()

	items := make([]list.Item, len(s.tasks))
	for i, t := range s.tasks {
		items[i] = taskItem{task: t, now: now}
	}
	cursor := m.taskList.Index()
	m.taskList.SetItems(items)
	if cursor < len(items) {
		m.taskList.Select(cursor)
	}

	if s.profile != nil {
		achievements := make([]list.Item, len(s.profile.Achievements))
		for i, a := range s.profile.Achievements {
			achievements[i] = achievementItem{achievement: a}
		}
		m.achievements.SetItems(achievements)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case TaskView:
		body = m.renderTasks()
	case ProgressView:
		body = m.renderProgress()
	case AchievementsView:
		body = m.achievements.View()
	case AnalyticsView:
		body = m.renderAnalytics()
	}

	parts := []string{m.renderTabs()}
	if m.banner != "" {
		parts = append(parts, styles.banner.Render(m.banner))
	}
	parts = append(parts, body)
	if m.err != nil {
		parts = append(parts, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		parts = append(parts, styles.ok.Render(m.status))
	}
	parts = append(parts, m.renderHelp())

	return strings.Join(parts, "\n\n")
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.banner = ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.view = (m.view + 1) % viewCount
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.view = (m.view + viewCount - 1) % viewCount
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.load()
	}

	if m.view != TaskView {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.add):
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.taskList.SelectedItem().(taskItem); ok {
			return m, m.toggle(item.task.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.del):
		if item, ok := m.taskList.SelectedItem().(taskItem); ok {
			return m, m.remove(item.task)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.adding = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		text := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		if text == "" {
			return m, nil
		}
		return m, m.add(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TaskView:
		m.taskList, cmd = m.taskList.Update(msg)
	case AchievementsView:
		m.achievements, cmd = m.achievements.Update(msg)
	}
	return m, cmd
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		all, err := m.service.List(m.ctx, tasks.Filter{})
		if err != nil {
			return failedMsg(err)
		}
		profile, err := m.service.Profile(m.ctx)
		if err != nil {
			return failedMsg(err)
		}
		report, err := m.service.Analytics(m.ctx)
		if err != nil {
			return failedMsg(err)
		}
		return loadedMsg(snapshot{tasks: all, profile: profile, analytics: report})
	}
}

func (m *Model) toggle(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.service.Toggle(m.ctx, id)
		if err != nil {
			return failedMsg(err)
		}
		return toggledMsg(res)
	}
}

func (m *Model) add(text string) tea.Cmd {
	return func() tea.Msg {
		task, err := m.service.Add(m.ctx, text, nil)
		if err != nil {
			return failedMsg(err)
		}
		return mutatedMsg(fmt.Sprintf("Added %q", task.Text))
	}
}

func (m *Model) remove(task models.Task) tea.Cmd {
	return func() tea.Msg {
		if err := m.service.Delete(m.ctx, task.ID); err != nil {
			return failedMsg(err)
		}
		return mutatedMsg(fmt.Sprintf("Deleted %q", task.Text))
	}
}

// waitForEvent blocks on the subscription. A closed or missing subscription ends the loop.
func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := TaskView; v < viewCount; v++ {
		if v == m.view {
			tabs = append(tabs, styles.active.Render(v.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(v.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderTasks() string {
	if m.adding {
		return fmt.Sprintf("%s\n\n%s", styles.title.Render("New task"), m.input.View())
	}
	if len(m.snapshot.tasks) == 0 {
		return styles.help.Render("No tasks yet. Press a to add one.")
	}
	return m.taskList.View()
}

func (m *Model) renderProgress() string {
	p := m.snapshot.profile
	if p == nil {
		return styles.help.Render("Loading...")
	}

	s := p.Stats
	summary := progress.Summarize(p.Achievements)

	lines := []string{
		styles.title.Render(fmt.Sprintf("Level %d", s.Level)),
		m.bar.ViewAs(float64(s.LevelProgress()) / float64(models.PointsPerLevel)),
		fmt.Sprintf("%s points • %d to next level", formatter.Number(s.TotalPoints), s.PointsToNextLevel()),
		"",
		fmt.Sprintf("Tasks completed  %s", formatter.Number(s.TotalTasksCompleted)),
		fmt.Sprintf("Current streak   %d", s.CurrentStreak),
		fmt.Sprintf("Longest streak   %d", s.LongestStreak),
		fmt.Sprintf("Achievements     %d/%d", summary.Unlocked, summary.Total),
		fmt.Sprintf("Member since     %s", shared.DayKey(s.JoinDate)),
	}
	if len(summary.Latest) > 0 {
		lines = append(lines, "", styles.ok.Render("Recent"))
		for _, a := range summary.Latest {
			lines = append(lines, fmt.Sprintf("  %s %s", a.Icon, a.Name))
		}
	}

	return styles.card.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderAnalytics() string {
	if m.snapshot.profile == nil {
		return styles.help.Render("Loading...")
	}
	return strings.TrimRight(string(formatter.AnalyticsText(m.snapshot.analytics)), "\n")
}

func (m *Model) renderHelp() string {
	var keys []key.Binding
	switch {
	case m.adding:
		keys = []key.Binding{m.keys.submit, m.keys.back}
	case m.view == TaskView:
		keys = []key.Binding{m.keys.toggle, m.keys.add, m.keys.del, m.keys.next, m.keys.quit}
	default:
		keys = m.keys.ShortHelp()
	}
	return m.help.ShortHelpView(keys)
}
