// Package progress implements the gamification engine: points, levels, daily streaks and achievements.
//
// # Profile
//
// The [Engine] owns two persisted documents, a [models.UserStats] profile and the achievement list,
// stored as whole JSON blobs under [StatsKey] and [AchievementsKey] through the [Store] port.
// Missing or malformed documents are replaced with defaults and written back; they never surface as errors.
//
// # Completion
//
// [Engine.RecordTaskCompletion] is called once per task that moves from incomplete to complete:
//
//  1. +1 completed task, +10 points
//  2. Streak update by calendar day of the previous completion (same day, next day, gap)
//  3. Level recomputed from points
//  4. Every locked achievement is evaluated by category; each unlock adds 50 points
//  5. Level recomputed again
//
// Steps 1 to 5 run inside one [Store.Update]: the profile is read and both documents are written
// back as one atomic unit, so processes sharing a database never lose each other's completions.
//
// # Catalog
//
// Achievement definitions are data ([Catalog]), loaded from the embedded achievements.toml or a
// user supplied file. Definitions missing from a stored profile are appended locked on load.
package progress
