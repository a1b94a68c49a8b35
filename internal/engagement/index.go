// Package engagement derives like counts, comment counts, viewer like state
// and the top comment for content items from preloaded Like and Comment rows.
package engagement

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
)

type TopComment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

type Summary struct {
	LikeCount    int         `json:"like_count"`
	HasLiked     bool        `json:"has_liked"`
	CommentCount int         `json:"comment_count"`
	TopComment   *TopComment `json:"top_comment,omitempty"`
}

// Index groups engagement rows by target key "{type}-{id}".
type Index struct {
	likes    map[string][]models.Like
	comments map[string][]models.Comment
}

func NewIndex(likes []models.Like, comments []models.Comment) *Index {
	ix := &Index{
		likes:    make(map[string][]models.Like),
		comments: make(map[string][]models.Comment),
	}
	for _, l := range likes {
		key := target.New(target.Kind(l.TargetType), l.TargetID).Key()
		ix.likes[key] = append(ix.likes[key], l)
	}
	for _, c := range comments {
		key := target.New(target.Kind(c.TargetType), c.TargetID).Key()
		ix.comments[key] = append(ix.comments[key], c)
	}
	return ix
}

func (ix *Index) LikeCount(t target.Target) int {
	return len(ix.likes[t.Key()])
}

// HasLiked is always false for an anonymous viewer.
func (ix *Index) HasLiked(t target.Target, viewerID string) bool {
	if viewerID == "" {
		return false
	}
	for _, l := range ix.likes[t.Key()] {
		if l.UserID == viewerID {
			return true
		}
	}
	return false
}

// Comments returns every comment on t, replies included.
func (ix *Index) Comments(t target.Target) []models.Comment {
	return ix.comments[t.Key()]
}

// TopComment picks the most-liked top-level comment on t, the newest one on a
// tie. Replies are never candidates. Nil when t has no top-level comments.
func (ix *Index) TopComment(t target.Target) *TopComment {
	var best *models.Comment
	bestLikes := -1
	comments := ix.comments[t.Key()]
	for i := range comments {
		c := &comments[i]
		if c.ParentID != nil {
			continue
		}
		n := ix.LikeCount(target.New(target.KindComment, c.ID))
		if n > bestLikes || (n == bestLikes && c.CreatedAt.After(best.CreatedAt)) {
			best, bestLikes = c, n
		}
	}
	if best == nil {
		return nil
	}
	return &TopComment{
		ID:        best.ID,
		AuthorID:  best.AuthorID,
		Content:   best.Content,
		LikeCount: bestLikes,
		CreatedAt: best.CreatedAt,
	}
}

func (ix *Index) Summary(t target.Target, viewerID string) Summary {
	return Summary{
		LikeCount:    ix.LikeCount(t),
		HasLiked:     ix.HasLiked(t, viewerID),
		CommentCount: len(ix.comments[t.Key()]),
		TopComment:   ix.TopComment(t),
	}
}
