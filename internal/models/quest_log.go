package models

import "time"

const (
	QuestStatusPlaying   = "Playing"
	QuestStatusCompleted = "Completed"
	QuestStatusOnHold    = "OnHold"
	QuestStatusDropped   = "Dropped"
	QuestStatusBacklog   = "Backlog"
)

var QuestStatuses = []string{
	QuestStatusPlaying, QuestStatusCompleted, QuestStatusOnHold, QuestStatusDropped, QuestStatusBacklog,
}

// MaxNowPlaying is the number of display slots on a profile.
const MaxNowPlaying = 5

type QuestLog struct {
	ID               string    `gorm:"size:64;primaryKey" json:"id"`
	UserID           string    `gorm:"size:64;not null;uniqueIndex:idx_quest_logs_user_game,priority:1" json:"user_id"`
	GameID           string    `gorm:"size:64;not null;uniqueIndex:idx_quest_logs_user_game,priority:2;index" json:"game_id"`
	Status           string    `gorm:"size:20;not null" json:"status"`
	QuickRating      *int      `json:"quick_rating,omitempty"`
	Notes            string    `gorm:"size:1000" json:"notes,omitempty"`
	DisplayOnProfile bool      `gorm:"default:false" json:"display_on_profile"`
	DisplayOrder     int       `gorm:"default:0" json:"display_order"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const (
	OwnershipPhysical = "Physical"
	OwnershipDigital  = "Digital"
)

const (
	CollectionUnplayed  = "Unplayed"
	CollectionPlaying   = "Playing"
	CollectionBeaten    = "Beaten"
	CollectionCompleted = "Completed"
	CollectionOnHold    = "OnHold"
	CollectionDropped   = "Dropped"
	CollectionBacklog   = "Backlog"
)

var CollectionStatuses = []string{
	CollectionUnplayed, CollectionPlaying, CollectionBeaten, CollectionCompleted,
	CollectionOnHold, CollectionDropped, CollectionBacklog,
}

// CollectionEntry tracks an owned copy. Beaten means the main content is
// finished; Completed means 100%.
type CollectionEntry struct {
	ID        string    `gorm:"size:64;primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_collection_user_game,priority:1" json:"user_id"`
	GameID    string    `gorm:"size:64;not null;uniqueIndex:idx_collection_user_game,priority:2" json:"game_id"`
	Ownership string    `gorm:"size:20;not null" json:"ownership"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	Notes     string    `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
