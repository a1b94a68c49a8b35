package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a short update. Posts are always visible.
type Post struct {
	ID        string    `gorm:"size:64;primaryKey" json:"id"`
	AuthorID  string    `gorm:"size:64;not null;index" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	GameID    *string   `gorm:"size:64;index" json:"game_id,omitempty"`
	EditCount int       `gorm:"default:0" json:"edit_count"`
	LegacyID  *string   `gorm:"size:64;index" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PostImage struct {
	ID        string    `gorm:"size:64;primaryKey" json:"id"`
	PostID    string    `gorm:"size:64;not null;index" json:"post_id"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Article is long-form content with a rich JSON body.
type Article struct {
	ID            string                      `gorm:"size:64;primaryKey" json:"id"`
	AuthorID      string                      `gorm:"size:64;not null;index" json:"author_id"`
	Title         string                      `gorm:"size:200;not null" json:"title"`
	Excerpt       string                      `gorm:"size:500" json:"excerpt,omitempty"`
	CoverImageURL string                      `gorm:"size:1024" json:"cover_image_url,omitempty"`
	Content       datatypes.JSON              `json:"content"`
	Genres        datatypes.JSONSlice[string] `json:"genres"`
	Published     bool                        `gorm:"default:false;index" json:"published"`
	EditCount     int                         `gorm:"default:0" json:"edit_count"`
	LegacyID      *string                     `gorm:"size:64;index" json:"-"`
	CreatedAt     time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// ArticleGame links an article to one of the games it covers.
type ArticleGame struct {
	ID        string `gorm:"size:64;primaryKey" json:"id"`
	ArticleID string `gorm:"size:64;not null;index" json:"article_id"`
	GameID    string `gorm:"size:64;not null;index" json:"game_id"`
}

// Review is a structured 1-5 star review of a single game.
type Review struct {
	ID               string                      `gorm:"size:64;primaryKey" json:"id"`
	AuthorID         string                      `gorm:"size:64;not null;index" json:"author_id"`
	GameID           string                      `gorm:"size:64;not null;index" json:"game_id"`
	Title            string                      `gorm:"size:200;not null" json:"title"`
	Content          datatypes.JSON              `json:"content"`
	Rating           int                         `gorm:"not null" json:"rating"`
	ContainsSpoilers bool                        `gorm:"default:false" json:"contains_spoilers"`
	Genres           datatypes.JSONSlice[string] `json:"genres"`
	Published        bool                        `gorm:"default:false;index" json:"published"`
	EditCount        int                         `gorm:"default:0" json:"edit_count"`
	LegacyID         *string                     `gorm:"size:64;index" json:"-"`
	CreatedAt        time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// ContentRevision is an immutable snapshot of a post, article or review taken
// before an edit was applied.
type ContentRevision struct {
	ID         string         `gorm:"size:64;primaryKey" json:"id"`
	TargetType string         `gorm:"size:20;not null;index:idx_revisions_target,priority:1" json:"target_type"`
	TargetID   string         `gorm:"size:64;not null;index:idx_revisions_target,priority:2" json:"target_id"`
	Version    int            `gorm:"not null" json:"version"`
	Title      string         `gorm:"size:200" json:"title,omitempty"`
	Content    datatypes.JSON `json:"content"`
	Rating     *int           `json:"rating,omitempty"`
	Snapshot   datatypes.JSON `json:"snapshot"`
	EditedBy   string         `gorm:"size:64;not null" json:"edited_by"`
	CreatedAt  time.Time      `json:"created_at"`
}
