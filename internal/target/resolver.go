package target

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("target not found")
	ErrUnauthorized = errors.New("not allowed to modify this target")
)

// Resolved holds the row a Target points at. Exactly one of the pointers is
// set, matching Target.Kind.
type Resolved struct {
	Target  Target
	Post    *models.Post
	Article *models.Article
	Review  *models.Review
	Comment *models.Comment
}

func (r *Resolved) AuthorID() string {
	switch r.Target.Kind {
	case KindPost:
		return r.Post.AuthorID
	case KindArticle:
		return r.Article.AuthorID
	case KindReview:
		return r.Review.AuthorID
	case KindComment:
		return r.Comment.AuthorID
	}
	return ""
}

// Published reports visibility. Posts and comments are always visible.
func (r *Resolved) Published() bool {
	switch r.Target.Kind {
	case KindArticle:
		return r.Article.Published
	case KindReview:
		return r.Review.Published
	}
	return true
}

// Resolve loads the row named by t from db. db may be a transaction.
// A missing row of the declared kind is ErrNotFound; other kinds are never
// tried.
func Resolve(ctx context.Context, db *gorm.DB, t Target) (*Resolved, error) {
	res := &Resolved{Target: t}
	var dest interface{}
	switch t.Kind {
	case KindPost:
		res.Post = &models.Post{}
		dest = res.Post
	case KindArticle:
		res.Article = &models.Article{}
		dest = res.Article
	case KindReview:
		res.Review = &models.Review{}
		dest = res.Review
	case KindComment:
		res.Comment = &models.Comment{}
		dest = res.Comment
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}

	if err := db.WithContext(ctx).Where("id = ?", t.ID).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, t.Key())
		}
		return nil, fmt.Errorf("resolve %s: %w", t.Key(), err)
	}
	return res, nil
}

// Authorize allows the owning author. Admins pass only when adminOverride is
// set, which callers use for comment moderation and report resolution.
func Authorize(r *Resolved, callerID string, isAdmin, adminOverride bool) error {
	if callerID != "" && r.AuthorID() == callerID {
		return nil
	}
	if isAdmin && adminOverride {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnauthorized, r.Target.Key())
}

// CheckVisible hides unpublished content from everyone except its author by
// reporting it as not found. A comment takes the visibility of the content it
// is attached to.
func CheckVisible(ctx context.Context, db *gorm.DB, r *Resolved, viewerID string) error {
	content := r
	if r.Target.Kind == KindComment {
		parent, err := Resolve(ctx, db, New(Kind(r.Comment.TargetType), r.Comment.TargetID))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrNotFound, r.Target.Key())
		}
		content = parent
	}
	if !content.Published() && content.AuthorID() != viewerID {
		return fmt.Errorf("%w: %s", ErrNotFound, r.Target.Key())
	}
	return nil
}
