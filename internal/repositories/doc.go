// Package repositories implements SQLite persistence for the task collection and the progress profile.
//
// Key Implementations:
//   - [TaskRepository] : Task CRUD with soft deletes, completion transitions and bulk replace for imports
//   - [BlobRepository] : Named JSON documents; implements [progress.Store] for the progress engine
//
// Sequence numbers provide stable insertion ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
