package models

import "time"

const (
	// PointsPerTask is awarded for every completion.
	PointsPerTask = 10
	// PointsPerAchievement is the bonus for each newly unlocked achievement.
	PointsPerAchievement = 50
	// PointsPerLevel is the width of one level.
	PointsPerLevel = 100
)

// AchievementCategory selects the rule used to evaluate an achievement.
type AchievementCategory string

const (
	CategoryTasks   AchievementCategory = "tasks"
	CategoryStreak  AchievementCategory = "streak"
	CategorySpecial AchievementCategory = "special"
)

// Valid reports whether c is one of the known categories.
func (c AchievementCategory) Valid() bool {
	switch c {
	case CategoryTasks, CategoryStreak, CategorySpecial:
		return true
	}
	return false
}

// UserStats is the single persisted progress profile.
type UserStats struct {
	TotalTasksCompleted int        `json:"totalTasksCompleted" validate:"gte=0"`
	TotalPoints         int        `json:"totalPoints" validate:"gte=0"`
	CurrentStreak       int        `json:"currentStreak" validate:"gte=0"`
	LongestStreak       int        `json:"longestStreak" validate:"gte=0,gtefield=CurrentStreak"`
	LastCompletionDate  *time.Time `json:"lastCompletionDate,omitempty"`
	Level               int        `json:"level"`
	JoinDate            time.Time  `json:"joinDate" validate:"required"`
}

// NewUserStats returns a zeroed profile that joined at now.
func NewUserStats(now time.Time) UserStats {
	return UserStats{Level: 1, JoinDate: now}
}

// LevelForPoints returns floor(points/100)+1.
func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// RecomputeLevel derives Level from TotalPoints.
func (s *UserStats) RecomputeLevel() {
	s.Level = LevelForPoints(s.TotalPoints)
}

// PointsToNextLevel is the number of points missing before the next level.
func (s UserStats) PointsToNextLevel() int {
	return PointsPerLevel - s.TotalPoints%PointsPerLevel
}

// LevelProgress is the percentage (0-99) of the current level already earned.
func (s UserStats) LevelProgress() int {
	return s.TotalPoints % PointsPerLevel
}

// Validate checks counters of a loaded profile.
func (s *UserStats) Validate() error {
	return ValidateStruct(s)
}

// Achievement is one entry of the unlockable catalog.
//
// Once Unlocked is true, Progress and UnlockedAt no longer change.
type Achievement struct {
	ID          string              `json:"id" validate:"required"`
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Category    AchievementCategory `json:"category" validate:"required,oneof=tasks streak special"`
	Requirement int                 `json:"requirement" validate:"gte=1"`
	Progress    int                 `json:"progress" validate:"gte=0"`
	Unlocked    bool                `json:"unlocked"`
	UnlockedAt  *time.Time          `json:"unlockedAt,omitempty"`
}

var _ Model = (*Achievement)(nil)

// Key returns the catalog id.
func (a *Achievement) Key() string { return a.ID }

// Validate checks the struct tags and the unlocked/unlockedAt pairing.
func (a *Achievement) Validate() error {
	if err := ValidateStruct(a); err != nil {
		return err
	}
	if a.Unlocked && a.UnlockedAt == nil {
		return errUnlockedWithoutTime(a.ID)
	}
	return nil
}

// Unlock marks the achievement unlocked at now. It is a no-op when already unlocked.
func (a *Achievement) Unlock(now time.Time) bool {
	if a.Unlocked {
		return false
	}
	at := now
	a.Unlocked = true
	a.UnlockedAt = &at
	return true
}

// Percent is Progress relative to Requirement, capped at 100.
func (a Achievement) Percent() int {
	if a.Unlocked {
		return 100
	}
	if a.Requirement <= 0 {
		return 0
	}
	p := a.Progress * 100 / a.Requirement
	return min(p, 100)
}
