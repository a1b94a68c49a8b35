package models

import (
	"time"
)

// User mirrors an identity-provider account. Rows are upserted on sync and
// never hard-deleted.
type User struct {
	ID          string    `gorm:"size:64;primaryKey" json:"id"`
	ExternalID  string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Handle      string    `gorm:"size:50;not null;uniqueIndex" json:"handle"`
	DisplayName string    `gorm:"size:100" json:"display_name"`
	AvatarURL   string    `gorm:"size:1024" json:"avatar_url,omitempty"`
	BannerURL   string    `gorm:"size:1024" json:"banner_url,omitempty"`
	Bio         string    `gorm:"size:500" json:"bio,omitempty"`
	IsAdmin     bool      `gorm:"default:false" json:"is_admin"`
	LegacyID    *string   `gorm:"size:64;index" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
