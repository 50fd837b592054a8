package progress

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

//go:embed achievements.toml
var defaultCatalogData []byte

// Definition is the static description of one achievement.
//
// Special achievements unlock from the hour of the completing event:
// BeforeHour matches hours strictly below it, FromHour matches hours at or above it.
type Definition struct {
	ID          string                     `toml:"id" validate:"required"`
	Name        string                     `toml:"name" validate:"required"`
	Description string                     `toml:"description"`
	Icon        string                     `toml:"icon"`
	Category    models.AchievementCategory `toml:"category" validate:"required,oneof=tasks streak special"`
	Requirement int                        `toml:"requirement" validate:"gte=1"`
	BeforeHour  *int                       `toml:"before_hour" validate:"omitempty,gte=1,lte=24"`
	FromHour    *int                       `toml:"from_hour" validate:"omitempty,gte=0,lte=23"`
}

// MatchesHour reports whether hour falls in the definition's special window.
func (d Definition) MatchesHour(hour int) bool {
	if d.BeforeHour != nil && hour < *d.BeforeHour {
		return true
	}
	if d.FromHour != nil && hour >= *d.FromHour {
		return true
	}
	return false
}

// Locked returns a fresh, locked achievement for the definition.
func (d Definition) Locked() models.Achievement {
	return models.Achievement{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		Category:    d.Category,
		Requirement: d.Requirement,
	}
}

// Catalog is the ordered set of achievement definitions.
type Catalog struct {
	Achievements []Definition `toml:"achievement"`
}

// DefaultCatalog returns the built-in catalog of eight achievements.
func DefaultCatalog() *Catalog {
	catalog, err := ParseCatalog(defaultCatalogData)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded achievement catalog: %v", err))
	}
	return catalog
}

// LoadCatalog reads a catalog file. An empty path returns [DefaultCatalog].
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates TOML catalog data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := toml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCatalog, err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Validate checks every definition and rejects duplicate ids.
func (c *Catalog) Validate() error {
	if len(c.Achievements) == 0 {
		return fmt.Errorf("%w: no achievements defined", shared.ErrInvalidCatalog)
	}

	seen := make(map[string]bool, len(c.Achievements))
	for _, d := range c.Achievements {
		if err := models.ValidateStruct(d); err != nil {
			return fmt.Errorf("%w: %s: %v", shared.ErrInvalidCatalog, d.ID, err)
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate id %s", shared.ErrInvalidCatalog, d.ID)
		}
		seen[d.ID] = true

		if d.Category == models.CategorySpecial && d.BeforeHour == nil && d.FromHour == nil {
			return fmt.Errorf("%w: special achievement %s needs before_hour or from_hour", shared.ErrInvalidCatalog, d.ID)
		}
	}
	return nil
}

// Lookup finds a definition by id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	for _, d := range c.Achievements {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Seed returns every achievement locked with zero progress, in catalog order.
func (c *Catalog) Seed() []models.Achievement {
	out := make([]models.Achievement, 0, len(c.Achievements))
	for _, d := range c.Achievements {
		out = append(out, d.Locked())
	}
	return out
}

// Merge appends locked entries for definitions missing from existing.
//
// Existing entries are kept as they are, including ids no longer in the catalog.
// The second return value reports whether anything was appended.
func (c *Catalog) Merge(existing []models.Achievement) ([]models.Achievement, bool) {
	present := make(map[string]bool, len(existing))
	for _, a := range existing {
		present[a.ID] = true
	}

	merged := existing
	changed := false
	for _, d := range c.Achievements {
		if present[d.ID] {
			continue
		}
		merged = append(merged, d.Locked())
		changed = true
	}
	return merged, changed
}
