// Package models defines the domain values shared by the task store, the progress engine and the analytics engine.
//
// The package contains three groups of types:
//
// 1. Task collection
//   - [Task] : A single to-do item owned by the task store
//
// 2. Progress profile (owned by the progress engine, persisted as JSON documents)
//   - [UserStats] : Points, level, streaks and join date
//   - [Achievement] : One entry of the unlockable achievement catalog
//
// 3. Analytics snapshot (derived, never persisted)
//   - [TaskAnalytics] : Totals, rates and time series
//   - [DayData] / [WeekData] : Entries of the daily and weekly series
//
// Persistent entities implement [Model]; [Repository] defines the CRUD surface used by the SQLite layer.
// Struct tags drive validation through [ValidateStruct].
package models
