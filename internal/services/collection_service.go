package services

import (
	"context"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ownershipTypes = []string{models.OwnershipPhysical, models.OwnershipDigital}

type CollectionService struct {
	db *gorm.DB
}

func NewCollectionService(db *gorm.DB) *CollectionService {
	return &CollectionService{db: db}
}

// Add puts a game in the caller's collection. Adding the same game twice is a
// conflict.
func (s *CollectionService) Add(ctx context.Context, userID string, req *dto.CollectionRequest) (*models.CollectionEntry, error) {
	if req.Status == "" {
		req.Status = models.CollectionUnplayed
	}
	if !contains(ownershipTypes, req.Ownership) {
		return nil, invalid("ownership must be Physical or Digital")
	}
	if !contains(models.CollectionStatuses, req.Status) {
		return nil, invalid("unknown status %q", req.Status)
	}
	if utf8.RuneCountInString(req.Notes) > maxNotesLength {
		return nil, invalid("notes exceed %d characters", maxNotesLength)
	}
	if err := requireGames(ctx, s.db, req.GameID); err != nil {
		return nil, err
	}

	entry := &models.CollectionEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		GameID:    req.GameID,
		Ownership: req.Ownership,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
		DoNothing: true,
	}).Create(entry)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, conflict("game is already in the collection")
	}
	return entry, nil
}

func (s *CollectionService) Update(ctx context.Context, userID, gameID string, req *dto.UpdateCollectionRequest) (*models.CollectionEntry, error) {
	updates := map[string]interface{}{}
	if req.Ownership != nil {
		if !contains(ownershipTypes, *req.Ownership) {
			return nil, invalid("ownership must be Physical or Digital")
		}
		updates["ownership"] = *req.Ownership
	}
	if req.Status != nil {
		if !contains(models.CollectionStatuses, *req.Status) {
			return nil, invalid("unknown status %q", *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		if utf8.RuneCountInString(*req.Notes) > maxNotesLength {
			return nil, invalid("notes exceed %d characters", maxNotesLength)
		}
		updates["notes"] = *req.Notes
	}

	var entry models.CollectionEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND game_id = ?", userID, gameID).First(&entry).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&entry).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&entry, "id = ?", entry.ID).Error
	})
	if err != nil {
		return nil, categorize(err)
	}
	return &entry, nil
}

func (s *CollectionService) Remove(ctx context.Context, userID, gameID string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND game_id = ?", userID, gameID).Delete(&models.CollectionEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("collection entry")
	}
	return nil
}

// List returns a user's collection, newest first, optionally filtered by
// status.
func (s *CollectionService) List(ctx context.Context, userID, status string) ([]LoggedGame[models.CollectionEntry], error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		if !contains(models.CollectionStatuses, status) {
			return nil, invalid("unknown status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var entries []models.CollectionEntry
	if err := q.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return withGames(ctx, s.db, entries, func(e models.CollectionEntry) string { return e.GameID })
}
