package engagement

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Loader fetches the engagement rows for a batch of targets with one indexed
// range query per kind and table, issued in parallel.
type Loader struct {
	db *gorm.DB
}

func NewLoader(db *gorm.DB) *Loader {
	return &Loader{db: db}
}

// Load returns an Index covering likes and comments on targets plus likes on
// those comments.
func (l *Loader) Load(ctx context.Context, targets []target.Target) (*Index, error) {
	byKind := groupIDs(targets)

	likeSets := make([][]models.Like, len(byKind)+1)
	commentSets := make([][]models.Comment, len(byKind))

	g, gctx := errgroup.WithContext(ctx)
	i := 0
	for kind, ids := range byKind {
		slot, kind, ids := i, kind, ids
		g.Go(func() error {
			return l.db.WithContext(gctx).
				Where("target_type = ? AND target_id IN ?", string(kind), ids).
				Find(&likeSets[slot]).Error
		})
		if kind != target.KindComment {
			g.Go(func() error {
				return l.db.WithContext(gctx).
					Where("target_type = ? AND target_id IN ?", string(kind), ids).
					Order("created_at ASC").
					Find(&commentSets[slot]).Error
			})
		}
		i++
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load engagement: %w", err)
	}

	var comments []models.Comment
	for _, set := range commentSets {
		comments = append(comments, set...)
	}

	// Likes on the loaded comments, skipping comment ids already requested.
	var commentIDs []string
	requested := make(map[string]bool)
	for _, id := range byKind[target.KindComment] {
		requested[id] = true
	}
	for _, c := range comments {
		if !requested[c.ID] {
			commentIDs = append(commentIDs, c.ID)
		}
	}
	if len(commentIDs) > 0 {
		if err := l.db.WithContext(ctx).
			Where("target_type = ? AND target_id IN ?", string(target.KindComment), commentIDs).
			Find(&likeSets[len(byKind)]).Error; err != nil {
			return nil, fmt.Errorf("load comment likes: %w", err)
		}
	}

	var likes []models.Like
	for _, set := range likeSets {
		likes = append(likes, set...)
	}
	return NewIndex(likes, comments), nil
}

func groupIDs(targets []target.Target) map[target.Kind][]string {
	byKind := make(map[target.Kind][]string)
	seen := make(map[string]bool)
	for _, t := range targets {
		if seen[t.Key()] {
			continue
		}
		seen[t.Key()] = true
		byKind[t.Kind] = append(byKind[t.Kind], t.ID)
	}
	return byKind
}
