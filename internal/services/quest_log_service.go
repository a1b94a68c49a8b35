package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxNotesLength = 1000

var questStatusText = map[string]string{
	models.QuestStatusPlaying:   "started playing",
	models.QuestStatusCompleted: "completed",
	models.QuestStatusOnHold:    "put on hold",
	models.QuestStatusDropped:   "dropped",
	models.QuestStatusBacklog:   "added to my backlog",
}

// ShareText is the body of the post published when a status change is
// shared, e.g. "I just completed Hades! ⭐⭐⭐⭐⭐".
func ShareText(status, gameName string, rating *int) string {
	stars := ""
	if rating != nil && *rating > 0 {
		stars = strings.Repeat("⭐", *rating)
	}
	return strings.TrimSpace(fmt.Sprintf("I just %s %s! %s", questStatusText[status], gameName, stars))
}

// LoggedGame pairs a quest-log or collection row with its game.
type LoggedGame[T any] struct {
	Entry T            `json:"entry"`
	Game  *models.Game `json:"game"`
}

type QuestLogService struct {
	db *gorm.DB
}

func NewQuestLogService(db *gorm.DB) *QuestLogService {
	return &QuestLogService{db: db}
}

func validQuickRating(r *int) error {
	if r != nil && (*r < 1 || *r > 5) {
		return invalid("quick rating must be between 1 and 5")
	}
	return nil
}

// Upsert creates or replaces the caller's entry for a game. At most
// MaxNowPlaying entries may be shown on a profile.
func (s *QuestLogService) Upsert(ctx context.Context, userID string, req *dto.QuestLogRequest) (*models.QuestLog, error) {
	if !contains(models.QuestStatuses, req.Status) {
		return nil, invalid("unknown status %q", req.Status)
	}
	if err := validQuickRating(req.QuickRating); err != nil {
		return nil, err
	}
	if req.DisplayOrder < 0 || req.DisplayOrder >= models.MaxNowPlaying {
		return nil, invalid("display order must be between 0 and %d", models.MaxNowPlaying-1)
	}
	if utf8.RuneCountInString(req.Notes) > maxNotesLength {
		return nil, invalid("notes exceed %d characters", maxNotesLength)
	}
	if err := requireGames(ctx, s.db, req.GameID); err != nil {
		return nil, err
	}

	entry := &models.QuestLog{
		ID:               uuid.NewString(),
		UserID:           userID,
		GameID:           req.GameID,
		Status:           req.Status,
		QuickRating:      req.QuickRating,
		Notes:            req.Notes,
		DisplayOnProfile: req.DisplayOnProfile,
		DisplayOrder:     req.DisplayOrder,
	}

	var saved models.QuestLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.DisplayOnProfile {
			var shown int64
			if err := tx.Model(&models.QuestLog{}).
				Where("user_id = ? AND game_id <> ? AND display_on_profile = ?", userID, req.GameID, true).
				Count(&shown).Error; err != nil {
				return err
			}
			if shown >= models.MaxNowPlaying {
				return invalid("at most %d games can be shown on a profile", models.MaxNowPlaying)
			}
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "quick_rating", "notes", "display_on_profile", "display_order", "updated_at",
			}),
		}).Create(entry).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND game_id = ?", userID, req.GameID).First(&saved).Error
	})
	if err != nil {
		return nil, categorize(err)
	}
	return &saved, nil
}

// UpdateStatus changes the status (and optionally the quick rating) of an
// existing entry. With Share set it also publishes a post tagged with the
// game, in the same transaction.
func (s *QuestLogService) UpdateStatus(ctx context.Context, userID, gameID string, req *dto.QuestStatusRequest) (*models.QuestLog, *models.Post, error) {
	if !contains(models.QuestStatuses, req.Status) {
		return nil, nil, invalid("unknown status %q", req.Status)
	}
	if err := validQuickRating(req.QuickRating); err != nil {
		return nil, nil, err
	}

	var entry models.QuestLog
	var post *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND game_id = ?", userID, gameID).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("quest log entry")
			}
			return err
		}
		entry.Status = req.Status
		if req.QuickRating != nil {
			entry.QuickRating = req.QuickRating
		}
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		if !req.Share {
			return nil
		}

		var game models.Game
		if err := tx.First(&game, "id = ?", gameID).Error; err != nil {
			return err
		}
		gid := game.ID
		post = &models.Post{
			ID:       uuid.NewString(),
			AuthorID: userID,
			Content:  ShareText(entry.Status, game.Name, entry.QuickRating),
			GameID:   &gid,
		}
		return tx.Create(post).Error
	})
	if err != nil {
		return nil, nil, categorize(err)
	}
	return &entry, post, nil
}

// List returns a user's entries, most recently updated first, optionally
// filtered by status.
func (s *QuestLogService) List(ctx context.Context, userID, status string) ([]LoggedGame[models.QuestLog], error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		if !contains(models.QuestStatuses, status) {
			return nil, invalid("unknown status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var entries []models.QuestLog
	if err := q.Order("updated_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return withGames(ctx, s.db, entries, func(e models.QuestLog) string { return e.GameID })
}

// NowPlaying returns the entries a user shows on their profile, in display
// order.
func (s *QuestLogService) NowPlaying(ctx context.Context, userID string) ([]LoggedGame[models.QuestLog], error) {
	var entries []models.QuestLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND display_on_profile = ?", userID, true).
		Order("display_order ASC").
		Order("updated_at DESC").
		Limit(models.MaxNowPlaying).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return withGames(ctx, s.db, entries, func(e models.QuestLog) string { return e.GameID })
}

func (s *QuestLogService) Remove(ctx context.Context, userID, gameID string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND game_id = ?", userID, gameID).Delete(&models.QuestLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("quest log entry")
	}
	return nil
}

func withGames[T any](ctx context.Context, db *gorm.DB, entries []T, gameID func(T) string) ([]LoggedGame[T], error) {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, gameID(e))
	}
	games := make(map[string]*models.Game)
	if ids = dedupe(ids); len(ids) > 0 {
		var rows []models.Game
		if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			games[rows[i].ID] = &rows[i]
		}
	}

	out := make([]LoggedGame[T], 0, len(entries))
	for _, e := range entries {
		out = append(out, LoggedGame[T]{Entry: e, Game: games[gameID(e)]})
	}
	return out, nil
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
