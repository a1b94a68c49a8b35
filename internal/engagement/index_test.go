package engagement

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func likesOn(kind target.Kind, id string, users ...string) []models.Like {
	out := make([]models.Like, 0, len(users))
	for _, u := range users {
		out = append(out, models.Like{ID: u + id, UserID: u, TargetType: string(kind), TargetID: id})
	}
	return out
}

func TestTopCommentTieBreaksOnRecency(t *testing.T) {
	parent := "c-early"
	comments := []models.Comment{
		{ID: "c-early", TargetType: "post", TargetID: "p1", CreatedAt: t0},
		{ID: "c-late", TargetType: "post", TargetID: "p1", CreatedAt: t0.Add(time.Hour)},
		{ID: "c-reply", TargetType: "post", TargetID: "p1", ParentID: &parent, CreatedAt: t0.Add(2 * time.Hour)},
	}
	var likes []models.Like
	likes = append(likes, likesOn(target.KindComment, "c-early", "a", "b", "c")...)
	likes = append(likes, likesOn(target.KindComment, "c-late", "a", "b", "c")...)
	likes = append(likes, likesOn(target.KindComment, "c-reply", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j")...)

	ix := NewIndex(likes, comments)
	top := ix.TopComment(target.New(target.KindPost, "p1"))
	require.NotNil(t, top)
	assert.Equal(t, "c-late", top.ID)
	assert.Equal(t, 3, top.LikeCount)
}

func TestTopCommentPrefersMoreLikes(t *testing.T) {
	comments := []models.Comment{
		{ID: "old", TargetType: "review", TargetID: "r1", CreatedAt: t0},
		{ID: "new", TargetType: "review", TargetID: "r1", CreatedAt: t0.Add(time.Hour)},
	}
	ix := NewIndex(likesOn(target.KindComment, "old", "a"), comments)
	top := ix.TopComment(target.New(target.KindReview, "r1"))
	require.NotNil(t, top)
	assert.Equal(t, "old", top.ID)
}

func TestTopCommentAbsentWithOnlyReplies(t *testing.T) {
	parent := "elsewhere"
	comments := []models.Comment{
		{ID: "reply", TargetType: "post", TargetID: "p1", ParentID: &parent, CreatedAt: t0},
	}
	ix := NewIndex(nil, comments)
	assert.Nil(t, ix.TopComment(target.New(target.KindPost, "p1")))
	assert.Nil(t, ix.TopComment(target.New(target.KindPost, "missing")))
}

func TestSummary(t *testing.T) {
	p := target.New(target.KindPost, "p1")
	parent := "c1"
	comments := []models.Comment{
		{ID: "c1", TargetType: "post", TargetID: "p1", CreatedAt: t0},
		{ID: "c2", TargetType: "post", TargetID: "p1", ParentID: &parent, CreatedAt: t0},
		{ID: "c3", TargetType: "article", TargetID: "p1", CreatedAt: t0},
	}
	likes := likesOn(target.KindPost, "p1", "viewer", "other")
	likes = append(likes, likesOn(target.KindArticle, "p1", "third")...)

	ix := NewIndex(likes, comments)

	s := ix.Summary(p, "viewer")
	assert.Equal(t, 2, s.LikeCount)
	assert.True(t, s.HasLiked)
	assert.Equal(t, 2, s.CommentCount)
	require.NotNil(t, s.TopComment)
	assert.Equal(t, "c1", s.TopComment.ID)

	assert.False(t, ix.Summary(p, "").HasLiked)
	assert.False(t, ix.Summary(p, "third").HasLiked)

	a := ix.Summary(target.New(target.KindArticle, "p1"), "third")
	assert.Equal(t, 1, a.LikeCount)
	assert.True(t, a.HasLiked)
	assert.Equal(t, 1, a.CommentCount)
}
