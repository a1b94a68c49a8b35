// Package rating blends full review ratings and quick quest-log ratings into
// one score per game.
package rating

import (
	"context"
	"fmt"
	"math"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"gorm.io/gorm"
)

type Result struct {
	AverageRating *float64 `json:"average_rating"`
	TotalRatings  int      `json:"total_ratings"`
	ReviewCount   int      `json:"review_count"`
	QuickCount    int      `json:"quick_rating_count"`
}

// Combine weights each population's average by its size and rounds once, to
// one decimal, at the end.
func Combine(reviewRatings, quickRatings []int) Result {
	reviewAvg := mean(reviewRatings)
	quickAvg := mean(quickRatings)

	total := len(reviewRatings) + len(quickRatings)
	res := Result{
		TotalRatings: total,
		ReviewCount:  len(reviewRatings),
		QuickCount:   len(quickRatings),
	}
	if total == 0 {
		return res
	}

	blended := (reviewAvg*float64(len(reviewRatings)) + quickAvg*float64(len(quickRatings))) / float64(total)
	rounded := math.Round(blended*10) / 10
	res.AverageRating = &rounded
	return res
}

func mean(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// ForGame combines published reviews of gameID with every quest-log entry
// that carries a quick rating.
func (a *Aggregator) ForGame(ctx context.Context, gameID string) (Result, error) {
	var reviews []int
	if err := a.db.WithContext(ctx).Model(&models.Review{}).
		Where("game_id = ? AND published = ?", gameID, true).
		Pluck("rating", &reviews).Error; err != nil {
		return Result{}, fmt.Errorf("load review ratings: %w", err)
	}

	var quick []int
	if err := a.db.WithContext(ctx).Model(&models.QuestLog{}).
		Where("game_id = ? AND quick_rating IS NOT NULL", gameID).
		Pluck("quick_rating", &quick).Error; err != nil {
		return Result{}, fmt.Errorf("load quick ratings: %w", err)
	}

	return Combine(reviews, quick), nil
}
