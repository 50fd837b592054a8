// Package analytics derives a [models.TaskAnalytics] snapshot from a task collection.
//
// [Compute] is a pure function of the tasks and the reference time: it reads no clock,
// keeps no state and persists nothing. Callers recompute the full snapshot on every refresh.
//
// Calendar days (daily series, weekday names) are taken in the location of the reference time.
package analytics
