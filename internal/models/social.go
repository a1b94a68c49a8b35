package models

import "time"

// Comment attaches to a post, article or review. ParentID allows a single
// level of replies.
type Comment struct {
	ID         string    `gorm:"size:64;primaryKey" json:"id"`
	AuthorID   string    `gorm:"size:64;not null;index" json:"author_id"`
	TargetType string    `gorm:"size:20;not null;index:idx_comments_target,priority:1" json:"target_type"`
	TargetID   string    `gorm:"size:64;not null;index:idx_comments_target,priority:2" json:"target_id"`
	ParentID   *string   `gorm:"size:64;index" json:"parent_id,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	LegacyID   *string   `gorm:"size:64;index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Like struct {
	ID         string    `gorm:"size:64;primaryKey" json:"id"`
	UserID     string    `gorm:"size:64;not null;uniqueIndex:idx_likes_user_target,priority:1" json:"user_id"`
	TargetType string    `gorm:"size:20;not null;uniqueIndex:idx_likes_user_target,priority:2;index:idx_likes_target,priority:1" json:"target_type"`
	TargetID   string    `gorm:"size:64;not null;uniqueIndex:idx_likes_user_target,priority:3;index:idx_likes_target,priority:2" json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Follow struct {
	ID         string    `gorm:"size:64;primaryKey" json:"id"`
	FollowerID string    `gorm:"size:64;not null;uniqueIndex:idx_follows_pair,priority:1" json:"follower_id"`
	FolloweeID string    `gorm:"size:64;not null;uniqueIndex:idx_follows_pair,priority:2;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
