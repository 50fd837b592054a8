package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/models"
)

// EngineOpts configures an [Engine]. Only Store is required.
type EngineOpts struct {
	Store   Store
	Catalog *Catalog
	Clock   func() time.Time
	Logger  *log.Logger
}

// Engine owns the persisted [models.UserStats] profile and achievement list.
//
// Every read-modify-persist sequence runs under the engine's mutex and inside one
// [Store.Update], so concurrent callers in this process or in other processes sharing
// the store observe exactly one completion per call.
type Engine struct {
	mu      sync.Mutex
	store   Store
	catalog *Catalog
	clock   func() time.Time
	logger  *log.Logger
}

// Result is returned by [Engine.RecordTaskCompletion].
type Result struct {
	Stats         models.UserStats     `json:"stats"`
	NewlyUnlocked []models.Achievement `json:"newlyUnlocked"`
}

// Profile is a consistent snapshot of stats and achievements.
type Profile struct {
	Stats        models.UserStats     `json:"stats"`
	Achievements []models.Achievement `json:"achievements"`
}

// NewEngine creates an [Engine], filling in the default catalog, wall clock and a discarding logger.
func NewEngine(opts EngineOpts) *Engine {
	e := &Engine{store: opts.Store, catalog: opts.Catalog, clock: opts.Clock, logger: opts.Logger}
	if e.store == nil {
		e.store = NewMemoryStore()
	}
	if e.catalog == nil {
		e.catalog = DefaultCatalog()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// Catalog returns the catalog the engine evaluates against.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// RecordTaskCompletion applies one task completion at now.
//
// It must be called once per incomplete-to-complete transition; the engine does not deduplicate.
// The load and the write happen in one [Store.Update], so completions recorded by other
// processes sharing the store are never overwritten. The only error source is the store.
func (e *Engine) RecordTaskCompletion(now time.Time) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result *Result
	err := e.store.Update(func(get GetFunc) (map[string][]byte, error) {
		profile, _, err := e.load(get, now)
		if err != nil {
			return nil, err
		}
		result = apply(profile, e.catalog, now)
		return encode(profile)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	for _, a := range result.NewlyUnlocked {
		e.logger.Info("achievement unlocked", "id", a.ID, "name", a.Name)
	}
	e.logger.Debug("task completion recorded",
		"points", result.Stats.TotalPoints,
		"level", result.Stats.Level,
		"streak", result.Stats.CurrentStreak,
		"unlocked", len(result.NewlyUnlocked),
	)

	return result, nil
}

// apply records one completion on profile and returns what changed.
func apply(profile *Profile, catalog *Catalog, now time.Time) *Result {
	stats := &profile.Stats
	stats.TotalTasksCompleted++
	stats.TotalPoints += models.PointsPerTask

	stats.CurrentStreak = nextStreak(stats.CurrentStreak, stats.LastCompletionDate, now)
	completedAt := now
	stats.LastCompletionDate = &completedAt
	stats.LongestStreak = max(stats.LongestStreak, stats.CurrentStreak)
	stats.RecomputeLevel()

	unlocked := []models.Achievement{}
	for i := range profile.Achievements {
		a := &profile.Achievements[i]
		if a.Unlocked {
			continue
		}

		def, known := catalog.Lookup(a.ID)
		if !evaluate(a, def, known, *stats, now) {
			continue
		}

		a.Unlock(now)
		stats.TotalPoints += models.PointsPerAchievement
		unlocked = append(unlocked, *a)
	}

	stats.RecomputeLevel()
	return &Result{Stats: *stats, NewlyUnlocked: unlocked}
}

// Stats returns the current profile counters, initializing them on first access.
func (e *Engine) Stats() (models.UserStats, error) {
	p, err := e.Profile()
	if err != nil {
		return models.UserStats{}, err
	}
	return p.Stats, nil
}

// Achievements returns the achievement list in catalog order.
func (e *Engine) Achievements() ([]models.Achievement, error) {
	p, err := e.Profile()
	if err != nil {
		return nil, err
	}
	return p.Achievements, nil
}

// Profile loads stats and achievements together.
//
// Missing or malformed documents are replaced by defaults and written back.
func (e *Engine) Profile() (*Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	profile, dirty, err := e.load(e.store.Get, now)
	if err != nil {
		return nil, err
	}
	if !dirty {
		return profile, nil
	}

	// Reload under the write lock: another process may have initialized the profile meanwhile.
	err = e.store.Update(func(get GetFunc) (map[string][]byte, error) {
		p, dirty, err := e.load(get, now)
		if err != nil {
			return nil, err
		}
		profile = p
		if !dirty {
			return nil, nil
		}
		return encode(p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist progress: %w", err)
	}
	return profile, nil
}

// Summary loads the profile and derives [Summary].
func (e *Engine) Summary() (Summary, error) {
	p, err := e.Profile()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(p.Achievements), nil
}

// Reset replaces the stored profile with a fresh one joined at the current clock time.
func (e *Engine) Reset() (*Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	profile := &Profile{
		Stats:        models.NewUserStats(e.clock()),
		Achievements: e.catalog.Seed(),
	}
	err := e.store.Update(func(GetFunc) (map[string][]byte, error) {
		return encode(profile)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist progress: %w", err)
	}
	e.logger.Info("progress profile reset")
	return profile, nil
}

// load reads both documents through get. dirty reports that defaults were substituted or catalog entries appended.
func (e *Engine) load(get GetFunc, now time.Time) (*Profile, bool, error) {
	stats, statsDirty, err := e.loadStats(get, now)
	if err != nil {
		return nil, false, err
	}

	achievements, achDirty, err := e.loadAchievements(get)
	if err != nil {
		return nil, false, err
	}

	return &Profile{Stats: stats, Achievements: achievements}, statsDirty || achDirty, nil
}

func (e *Engine) loadStats(get GetFunc, now time.Time) (models.UserStats, bool, error) {
	data, ok, err := get(StatsKey)
	if err != nil {
		return models.UserStats{}, false, fmt.Errorf("failed to read %s: %w", StatsKey, err)
	}
	if !ok {
		return models.NewUserStats(now), true, nil
	}

	var stats models.UserStats
	if err := json.Unmarshal(data, &stats); err != nil {
		e.logger.Warn("discarding malformed stats", "error", err)
		return models.NewUserStats(now), true, nil
	}
	if err := stats.Validate(); err != nil {
		e.logger.Warn("discarding invalid stats", "error", err)
		return models.NewUserStats(now), true, nil
	}

	level := stats.Level
	stats.RecomputeLevel()
	return stats, level != stats.Level, nil
}

func (e *Engine) loadAchievements(get GetFunc) ([]models.Achievement, bool, error) {
	data, ok, err := get(AchievementsKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", AchievementsKey, err)
	}
	if !ok {
		return e.catalog.Seed(), true, nil
	}

	var achievements []models.Achievement
	if err := json.Unmarshal(data, &achievements); err != nil {
		e.logger.Warn("discarding malformed achievements", "error", err)
		return e.catalog.Seed(), true, nil
	}
	for i := range achievements {
		if err := achievements[i].Validate(); err != nil {
			e.logger.Warn("discarding invalid achievements", "id", achievements[i].ID, "error", err)
			return e.catalog.Seed(), true, nil
		}
	}

	merged, changed := e.catalog.Merge(achievements)
	if changed {
		e.logger.Debug("appended new catalog entries", "count", len(merged)-len(achievements))
	}
	return merged, changed, nil
}

func encode(p *Profile) (map[string][]byte, error) {
	stats, err := json.Marshal(p.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats: %w", err)
	}

	achievements, err := json.Marshal(p.Achievements)
	if err != nil {
		return nil, fmt.Errorf("failed to encode achievements: %w", err)
	}

	return map[string][]byte{StatsKey: stats, AchievementsKey: achievements}, nil
}

// Summary is the achievement overview shown on progress cards.
type Summary struct {
	Unlocked int                  `json:"unlocked"`
	Total    int                  `json:"total"`
	Latest   []models.Achievement `json:"latest"`
}

// Summarize counts unlocked achievements and returns up to three, most recent first.
func Summarize(achievements []models.Achievement) Summary {
	s := Summary{Total: len(achievements), Latest: []models.Achievement{}}
	for _, a := range achievements {
		if a.Unlocked && a.UnlockedAt != nil {
			s.Unlocked++
			s.Latest = append(s.Latest, a)
		}
	}

	slices.SortStableFunc(s.Latest, func(a, b models.Achievement) int {
		return b.UnlockedAt.Compare(*a.UnlockedAt)
	})
	if len(s.Latest) > 3 {
		s.Latest = s.Latest[:3]
	}
	return s
}
