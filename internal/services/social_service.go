package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/engagement"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/feed"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const MaxCommentLength = 1000

// SocialService covers comments, likes and the follow graph.
type SocialService struct {
	db     *gorm.DB
	loader *engagement.Loader
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db, loader: engagement.NewLoader(db)}
}

// CommentView is a comment with its author and like state. Replies are only
// populated on top-level comments.
type CommentView struct {
	models.Comment
	Author    *feed.Author  `json:"author,omitempty"`
	LikeCount int           `json:"like_count"`
	HasLiked  bool          `json:"has_liked"`
	Replies   []CommentView `json:"replies,omitempty"`
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("comment content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", invalid("comment exceeds %d characters", MaxCommentLength)
	}
	return content, nil
}

func (s *SocialService) CreateComment(ctx context.Context, authorID string, req *dto.CreateCommentRequest) (*models.Comment, error) {
	t, err := target.Parse(req.TargetType, req.TargetID, target.ContentKinds)
	if err != nil {
		return nil, categorize(err)
	}
	content, err := validateComment(req.Content)
	if err != nil {
		return nil, err
	}

	r, err := target.Resolve(ctx, s.db, t)
	if err != nil {
		return nil, categorize(err)
	}
	if err := target.CheckVisible(ctx, s.db, r, authorID); err != nil {
		return nil, categorize(err)
	}

	if req.ParentID != nil && *req.ParentID != "" {
		var parent models.Comment
		if err := s.db.WithContext(ctx).First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			return nil, categorize(err)
		}
		if parent.ParentID != nil {
			return nil, invalid("replies cannot be nested")
		}
		if parent.TargetType != string(t.Kind) || parent.TargetID != t.ID {
			return nil, invalid("parent comment belongs to a different target")
		}
	} else {
		req.ParentID = nil
	}

	comment := &models.Comment{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		TargetType: string(t.Kind),
		TargetID:   t.ID,
		ParentID:   req.ParentID,
		Content:    content,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *SocialService) UpdateComment(ctx context.Context, callerID, id, content string) (*models.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}

	var comment *models.Comment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := target.Resolve(ctx, tx, target.New(target.KindComment, id))
		if err != nil {
			return err
		}
		if err := target.Authorize(r, callerID, false, false); err != nil {
			return err
		}
		r.Comment.Content = content
		comment = r.Comment
		return tx.Save(r.Comment).Error
	})
	if err != nil {
		return nil, categorize(err)
	}
	return comment, nil
}

// DeleteComment removes a comment, its replies and every like on them. The
// author or an admin may delete.
func (s *SocialService) DeleteComment(ctx context.Context, callerID string, isAdmin bool, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := target.Resolve(ctx, tx, target.New(target.KindComment, id))
		if err != nil {
			return err
		}
		if err := target.Authorize(r, callerID, isAdmin, true); err != nil {
			return err
		}

		ids := []string{id}
		var replies []string
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", id).Pluck("id", &replies).Error; err != nil {
			return err
		}
		ids = append(ids, replies...)

		if err := tx.Where("target_type = ? AND target_id IN ?", string(target.KindComment), ids).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	return categorize(err)
}

// Comments returns the top-level comments on t, oldest first, each with its
// replies.
func (s *SocialService) Comments(ctx context.Context, t target.Target, viewerID string) ([]CommentView, error) {
	if !t.Kind.In(target.ContentKinds) {
		return nil, invalid("%s has no comments", t.Kind)
	}
	r, err := target.Resolve(ctx, s.db, t)
	if err != nil {
		return nil, categorize(err)
	}
	if err := target.CheckVisible(ctx, s.db, r, viewerID); err != nil {
		return nil, categorize(err)
	}
	ix, err := s.loader.Load(ctx, []target.Target{t})
	if err != nil {
		return nil, err
	}
	comments := ix.Comments(t)

	authorIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := loadAuthors(ctx, s.db, authorIDs)
	if err != nil {
		return nil, err
	}

	sorted := append([]models.Comment(nil), comments...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].CreatedAt.Before(sorted[b].CreatedAt)
	})

	view := func(c models.Comment) CommentView {
		ct := target.New(target.KindComment, c.ID)
		return CommentView{
			Comment:   c,
			Author:    authors[c.AuthorID],
			LikeCount: ix.LikeCount(ct),
			HasLiked:  ix.HasLiked(ct, viewerID),
		}
	}

	top := make([]CommentView, 0)
	pos := make(map[string]int)
	for _, c := range sorted {
		if c.ParentID == nil {
			pos[c.ID] = len(top)
			top = append(top, view(c))
		}
	}
	for _, c := range sorted {
		if c.ParentID == nil {
			continue
		}
		if i, ok := pos[*c.ParentID]; ok {
			top[i].Replies = append(top[i].Replies, view(c))
		}
	}
	return top, nil
}

// ToggleLike flips the caller's like on a target and returns the new state.
// The unique (user, target) index keeps concurrent toggles at one row.
func (s *SocialService) ToggleLike(ctx context.Context, userID, kind, id string) (*dto.LikeResponse, error) {
	t, err := target.Parse(kind, id, target.LikeKinds)
	if err != nil {
		return nil, categorize(err)
	}

	out := &dto.LikeResponse{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := target.Resolve(ctx, tx, t)
		if err != nil {
			return err
		}
		if err := target.CheckVisible(ctx, tx, r, userID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, string(t.Kind), t.ID).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := &models.Like{ID: uuid.NewString(), UserID: userID, TargetType: string(t.Kind), TargetID: t.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
				return err
			}
			out.Liked = true
		}

		var n int64
		if err := tx.Model(&models.Like{}).
			Where("target_type = ? AND target_id = ?", string(t.Kind), t.ID).
			Count(&n).Error; err != nil {
			return err
		}
		out.LikeCount = int(n)
		return nil
	})
	if err != nil {
		return nil, categorize(err)
	}
	return out, nil
}

// Follow is idempotent. Following yourself is a conflict.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return conflict("cannot follow yourself")
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", followeeID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound("user")
	}

	f := &models.Follow{ID: uuid.NewString(), FollowerID: followerID, FolloweeID: followeeID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followee_id"}},
		DoNothing: true,
	}).Create(f).Error
}

func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
}

func (s *SocialService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	if followerID == "" {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error
	return n > 0, err
}

// Followers lists users following userID, newest follow first.
func (s *SocialService) Followers(ctx context.Context, userID string) ([]models.User, error) {
	return s.followList(ctx, "follows.followee_id = ?", "follows.follower_id", userID)
}

// Following lists users userID follows, newest follow first.
func (s *SocialService) Following(ctx context.Context, userID string) ([]models.User, error) {
	return s.followList(ctx, "follows.follower_id = ?", "follows.followee_id", userID)
}

func (s *SocialService) followList(ctx context.Context, where, joinCol, userID string) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON users.id = "+joinCol).
		Where(where, userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

func (s *SocialService) FollowCounts(ctx context.Context, userID string) (*dto.FollowCountsResponse, error) {
	out := &dto.FollowCountsResponse{}
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&out.Followers).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&out.Following).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func loadAuthors(ctx context.Context, db *gorm.DB, ids []string) (map[string]*feed.Author, error) {
	out := make(map[string]*feed.Author)
	ids = dedupe(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = &feed.Author{ID: u.ID, Handle: u.Handle, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
	}
	return out, nil
}
