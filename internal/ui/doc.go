// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The TUI cycles (tab / shift+tab) through four views:
//  1. [TaskView] : Browse tasks, toggle completion (space), add (a) and delete (d)
//  2. [ProgressView] : Level bar, points, streaks and the latest achievements
//  3. [AchievementsView] : Every achievement with its progress
//  4. [AnalyticsView] : Summary counters, weekly series and category breakdown
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Completing a task that unlocks achievements shows a banner until the next key press.
//
// When the model is given an [events.Bus] subscription it reloads on every task or stats event,
// so changes made by another process (picked up by the database watcher) appear without a manual refresh.
package ui
