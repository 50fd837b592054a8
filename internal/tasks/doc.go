// Package tasks implements the task management collaborator that drives both engines.
//
// # Core Operations
//
// [Tracker] owns the task collection (through a [TaskStore]) and is the only caller of
// [progress.Engine.RecordTaskCompletion]:
//
//  1. [Tracker.Add] : Validates and stores a new task, publishes task-created
//  2. [Tracker.Complete] : Marks a task complete; only an incomplete to complete transition
//     records a completion with the progress engine and publishes stats-updated
//  3. [Tracker.Reopen] / [Tracker.Toggle] : Reverse or flip completion; reopening never removes points
//  4. [Tracker.Delete] / [Tracker.Clear] : Soft-delete one or all tasks
//  5. [Tracker.Export] / [Tracker.Import] : Whole collection out, whole collection replaced
//
// # Reads
//
// [Tracker.Analytics] recomputes [models.TaskAnalytics] from the current collection on every call.
// [Tracker.Profile] returns the progress profile. Both use the tracker clock in the configured location,
// so calendar days follow the user's timezone.
//
// # Refresh Signals
//
// Every mutation publishes an [events.Event] on the optional [events.Bus]. Publishing never blocks.
package tasks
