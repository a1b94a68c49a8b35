package testutil

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// BaseTime is a fixed clock origin for deterministic ordering in tests.
var BaseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var igdbSeq atomic.Int64

func At(minutes int) time.Time {
	return BaseTime.Add(time.Duration(minutes) * time.Minute)
}

func CreateUser(t *testing.T, db *gorm.DB, handle string) *models.User {
	t.Helper()
	u := &models.User{
		ID:          uuid.NewString(),
		ExternalID:  "ext_" + handle,
		Handle:      handle,
		DisplayName: handle,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateGame(t *testing.T, db *gorm.DB, name string, genres ...string) *models.Game {
	t.Helper()
	g := &models.Game{
		ID:       uuid.NewString(),
		IGDBID:   igdbSeq.Add(1),
		Name:     name,
		Slug:     uuid.NewString(),
		Genres:   genres,
		CachedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(g).Error)
	return g
}

func CreatePost(t *testing.T, db *gorm.DB, authorID, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateArticle(t *testing.T, db *gorm.DB, authorID, title string, published bool, at time.Time, gameIDs ...string) *models.Article {
	t.Helper()
	a := &models.Article{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     title,
		Content:   []byte(`{"type":"doc"}`),
		Published: published,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, db.Create(a).Error)
	for _, gid := range gameIDs {
		require.NoError(t, db.Create(&models.ArticleGame{ID: uuid.NewString(), ArticleID: a.ID, GameID: gid}).Error)
	}
	return a
}

func CreateReview(t *testing.T, db *gorm.DB, authorID, gameID string, rating int, published bool, at time.Time) *models.Review {
	t.Helper()
	r := &models.Review{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		GameID:    gameID,
		Title:     "review",
		Content:   []byte(`{"type":"doc"}`),
		Rating:    rating,
		Published: published,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func CreateComment(t *testing.T, db *gorm.DB, authorID, targetType, targetID string, parentID *string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		TargetType: targetType,
		TargetID:   targetID,
		ParentID:   parentID,
		Content:    "comment",
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateLike(t *testing.T, db *gorm.DB, userID, targetType, targetID string) *models.Like {
	t.Helper()
	l := &models.Like{
		ID:         uuid.NewString(),
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	}
	require.NoError(t, db.Create(l).Error)
	return l
}
