package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/igdb"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/rating"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameProvider is the metadata source behind the games cache.
type GameProvider interface {
	GameByID(ctx context.Context, id int64) (*igdb.Game, error)
	GameBySlug(ctx context.Context, slug string) (*igdb.Game, error)
	Search(ctx context.Context, term string, limit int) ([]igdb.Game, error)
	Popular(ctx context.Context, since time.Time, limit int) ([]igdb.Game, error)
}

// popularSince bounds the release window for Popular.
const popularSince = 365 * 24 * time.Hour

// GameService is a read-through cache over the provider. Rows older than ttl
// are refetched on read; when the provider fails the stale row is served.
type GameService struct {
	db       *gorm.DB
	provider GameProvider
	ratings  *rating.Aggregator
	ttl      time.Duration
	now      func() time.Time
}

// NewGameService accepts a nil provider, in which case only cached rows are
// served.
func NewGameService(db *gorm.DB, provider GameProvider, ttl time.Duration) *GameService {
	return &GameService{
		db:       db,
		provider: provider,
		ratings:  rating.NewAggregator(db),
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *GameService) ByID(ctx context.Context, id string) (*models.Game, error) {
	var g models.Game
	if err := s.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, categorize(err)
	}
	return s.fresh(ctx, &g, func() (*igdb.Game, error) { return s.provider.GameByID(ctx, g.IGDBID) })
}

func (s *GameService) BySlug(ctx context.Context, gameSlug string) (*models.Game, error) {
	var cached *models.Game
	var g models.Game
	err := s.db.WithContext(ctx).First(&g, "slug = ?", gameSlug).Error
	switch {
	case err == nil:
		cached = &g
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return s.fresh(ctx, cached, func() (*igdb.Game, error) { return s.provider.GameBySlug(ctx, gameSlug) })
}

func (s *GameService) ByIGDBID(ctx context.Context, igdbID int64) (*models.Game, error) {
	var cached *models.Game
	var g models.Game
	err := s.db.WithContext(ctx).First(&g, "igdb_id = ?", igdbID).Error
	switch {
	case err == nil:
		cached = &g
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return s.fresh(ctx, cached, func() (*igdb.Game, error) { return s.provider.GameByID(ctx, igdbID) })
}

// fresh returns cached when it is within ttl, otherwise fetches and upserts.
// A failed fetch falls back to cached, or NotFound when there is none.
func (s *GameService) fresh(ctx context.Context, cached *models.Game, fetch func() (*igdb.Game, error)) (*models.Game, error) {
	if cached != nil && (s.provider == nil || !cached.Stale(s.now(), s.ttl)) {
		return cached, nil
	}
	if s.provider == nil {
		return nil, notFound("game")
	}

	remote, err := fetch()
	if err != nil {
		if !errors.Is(err, igdb.ErrNotFound) {
			slog.Warn("game provider lookup failed", "error", err.Error())
		}
		if cached != nil {
			return cached, nil
		}
		return nil, notFound("game")
	}

	g, err := s.upsert(ctx, remote)
	if err != nil {
		if cached != nil {
			slog.Error("failed to cache game", "igdb_id", remote.ID, "error", err.Error())
			return cached, nil
		}
		return nil, err
	}
	return g, nil
}

// Search queries the provider and caches every hit. Provider failures yield
// an empty result.
func (s *GameService) Search(ctx context.Context, term string, limit int) ([]models.Game, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, invalid("search term is required")
	}
	if s.provider == nil {
		return []models.Game{}, nil
	}

	hits, err := s.provider.Search(ctx, term, limit)
	if err != nil {
		slog.Warn("game provider search failed", "term", term, "error", err.Error())
		return []models.Game{}, nil
	}
	return s.cacheAll(ctx, hits), nil
}

// Popular lists well-rated recent releases from the provider. Without a
// provider, or when it fails, the best-rated cached games are served instead.
func (s *GameService) Popular(ctx context.Context, limit int) ([]models.Game, error) {
	if s.provider != nil {
		hits, err := s.provider.Popular(ctx, s.now().Add(-popularSince), limit)
		if err == nil {
			return s.cacheAll(ctx, hits), nil
		}
		slog.Warn("game provider popular lookup failed", "error", err.Error())
	}

	var cached []models.Game
	err := s.db.WithContext(ctx).
		Where("rating > 0").
		Order("rating DESC").
		Limit(limit).
		Find(&cached).Error
	return cached, err
}

func (s *GameService) cacheAll(ctx context.Context, hits []igdb.Game) []models.Game {
	out := make([]models.Game, 0, len(hits))
	for i := range hits {
		g, err := s.upsert(ctx, &hits[i])
		if err != nil {
			slog.Error("failed to cache game", "igdb_id", hits[i].ID, "error", err.Error())
			continue
		}
		out = append(out, *g)
	}
	return out
}

// RefreshStale refetches up to batch of the oldest stale rows and returns how
// many were refreshed.
func (s *GameService) RefreshStale(ctx context.Context, batch int) (int, error) {
	if s.provider == nil {
		return 0, nil
	}
	var stale []models.Game
	if err := s.db.WithContext(ctx).
		Where("cached_at < ?", s.now().Add(-s.ttl)).
		Order("cached_at ASC").
		Limit(batch).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	refreshed := 0
	for _, g := range stale {
		remote, err := s.provider.GameByID(ctx, g.IGDBID)
		if err != nil {
			slog.Warn("stale game refresh failed", "igdb_id", g.IGDBID, "error", err.Error())
			continue
		}
		if _, err := s.upsert(ctx, remote); err != nil {
			slog.Error("failed to cache game", "igdb_id", g.IGDBID, "error", err.Error())
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *GameService) Rating(ctx context.Context, gameID string) (rating.Result, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", gameID).Count(&n).Error; err != nil {
		return rating.Result{}, err
	}
	if n == 0 {
		return rating.Result{}, notFound("game")
	}
	return s.ratings.ForGame(ctx, gameID)
}

// upsert stores a provider game keyed by its IGDB id, keeping the native id
// of an existing row.
func (s *GameService) upsert(ctx context.Context, remote *igdb.Game) (*models.Game, error) {
	gameSlug, err := s.slugFor(ctx, remote)
	if err != nil {
		return nil, err
	}

	row := &models.Game{
		ID:          uuid.NewString(),
		IGDBID:      remote.ID,
		Name:        remote.Name,
		Slug:        gameSlug,
		Summary:     remote.Summary,
		CoverURL:    remote.CoverURL(),
		ReleaseDate: remote.ReleaseDate(),
		Genres:      remote.GenreNames(),
		Platforms:   remote.PlatformNames(),
		Rating:      remote.TotalRating,
		CachedAt:    s.now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "igdb_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "slug", "summary", "cover_url", "release_date", "genres", "platforms", "rating", "cached_at", "updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	var saved models.Game
	if err := s.db.WithContext(ctx).First(&saved, "igdb_id = ?", remote.ID).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// slugFor prefers the provider slug. Missing slugs are derived from the name,
// and a slug held by a different game gets the IGDB id appended.
func (s *GameService) slugFor(ctx context.Context, remote *igdb.Game) (string, error) {
	candidate := remote.Slug
	if candidate == "" {
		candidate = slug.Make(remote.Name)
	}
	if candidate == "" {
		candidate = "game"
	}

	var holder models.Game
	err := s.db.WithContext(ctx).Select("id", "igdb_id").First(&holder, "slug = ?", candidate).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return candidate, nil
	case err != nil:
		return "", err
	case holder.IGDBID == remote.ID:
		return candidate, nil
	}
	return slug.Make(candidate + "-" + strconv.FormatInt(remote.ID, 10)), nil
}
