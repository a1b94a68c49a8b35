package models

import (
	"time"

	"gorm.io/datatypes"
)

// Game is a read-through cache of provider metadata keyed by IGDB id.
type Game struct {
	ID          string                      `gorm:"size:64;primaryKey" json:"id"`
	IGDBID      int64                       `gorm:"column:igdb_id;uniqueIndex" json:"igdb_id"`
	Name        string                      `gorm:"size:255;not null;index" json:"name"`
	Slug        string                      `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Summary     string                      `gorm:"type:text" json:"summary,omitempty"`
	CoverURL    string                      `gorm:"size:1024" json:"cover_url,omitempty"`
	ReleaseDate *time.Time                  `json:"release_date,omitempty"`
	Genres      datatypes.JSONSlice[string] `json:"genres"`
	Platforms   datatypes.JSONSlice[string] `json:"platforms"`
	Rating      float64                     `json:"rating"`
	CachedAt    time.Time                   `gorm:"index" json:"cached_at"`
	LegacyID    *string                     `gorm:"size:64;index" json:"-"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// Stale reports whether the cached row is older than ttl.
func (g *Game) Stale(now time.Time, ttl time.Duration) bool {
	return g.CachedAt.IsZero() || now.Sub(g.CachedAt) > ttl
}
