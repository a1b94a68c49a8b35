package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/engagement"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type View string

const (
	ViewFollowing      View = "following"
	ViewPopular        View = "popular"
	ViewDiscover       View = "discover"
	ViewReviews        View = "reviews"
	ViewReviewsPopular View = "reviews-popular"
	ViewProfile        View = "profile"
	ViewGame           View = "game"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50

	// Each kind is fetched and filtered on its own before the merge, so every
	// kind over-fetches to keep a full page available after interleaving.
	overfetchFactor = 2

	popularWindow        = 24 * time.Hour
	reviewsPopularWindow = 7 * 24 * time.Hour
)

var (
	ErrUnknownView    = errors.New("unknown feed view")
	ErrViewerRequired = errors.New("feed requires a signed-in viewer")
	ErrMissingFilter  = errors.New("feed filter is required")
)

func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case ViewFollowing, ViewPopular, ViewDiscover, ViewReviews, ViewReviewsPopular, ViewProfile, ViewGame:
		return v, nil
	case "":
		return ViewDiscover, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

type Query struct {
	View     View
	ViewerID string
	Cursor   string
	Limit    int
	// AuthorID scopes ViewProfile, GameID scopes ViewGame.
	AuthorID string
	GameID   string
}

// Composer builds feed pages. Every call recomputes the candidate list; no
// state is kept between pages.
type Composer struct {
	db     *gorm.DB
	loader *engagement.Loader
	now    func() time.Time
}

func NewComposer(db *gorm.DB) *Composer {
	return &Composer{
		db:     db,
		loader: engagement.NewLoader(db),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source used for popularity windows.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// plan is the per-view filter set applied identically to each kind.
type plan struct {
	kinds     []target.Kind
	authorIDs []string
	restrict  bool // authorIDs applies even when empty
	gameID    string
	since     *time.Time
	after     *anchor
	fetch     int // 0 loads everything matching
	popular   bool
}

func (c *Composer) Compose(ctx context.Context, q Query) (*Page, error) {
	q.Limit = normalizeLimit(q.Limit)

	p, err := c.plan(ctx, q)
	if err != nil {
		return nil, err
	}
	if p.restrict && len(p.authorIDs) == 0 {
		return &Page{Items: []Item{}}, nil
	}

	cands, err := c.fetchCandidates(ctx, p)
	if err != nil {
		return nil, err
	}

	items, err := c.hydrate(ctx, cands, q.ViewerID)
	if err != nil {
		return nil, err
	}

	if p.popular {
		SortPopular(items)
	} else {
		SortChronological(items)
	}

	// An anchored fetch already starts strictly after the cursor item.
	cursor := q.Cursor
	if p.after != nil {
		cursor = ""
	}
	page := Paginate(items, cursor, q.Limit)
	return &page, nil
}

// Item renders a single content item the way feeds do. Unpublished items are
// only visible to their author.
func (c *Composer) Item(ctx context.Context, t target.Target, viewerID string) (*Item, error) {
	if !t.Kind.In(target.ContentKinds) {
		return nil, fmt.Errorf("%w: %q", target.ErrUnknownKind, t.Kind)
	}
	res, err := target.Resolve(ctx, c.db, t)
	if err != nil {
		return nil, err
	}
	if err := target.CheckVisible(ctx, c.db, res, viewerID); err != nil {
		return nil, err
	}

	cands := &candidates{}
	switch t.Kind {
	case target.KindPost:
		cands.posts = []models.Post{*res.Post}
	case target.KindArticle:
		cands.articles = []models.Article{*res.Article}
	case target.KindReview:
		cands.reviews = []models.Review{*res.Review}
	}
	items, err := c.hydrate(ctx, cands, viewerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", target.ErrNotFound, t.Key())
	}
	return &items[0], nil
}

func normalizeLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (c *Composer) plan(ctx context.Context, q Query) (*plan, error) {
	all := []target.Kind{target.KindPost, target.KindArticle, target.KindReview}
	p := &plan{kinds: all, fetch: (q.Limit + 1) * overfetchFactor}

	switch q.View {
	case ViewFollowing:
		if q.ViewerID == "" {
			return nil, ErrViewerRequired
		}
		var followees []string
		if err := c.db.WithContext(ctx).Model(&models.Follow{}).
			Where("follower_id = ?", q.ViewerID).
			Pluck("followee_id", &followees).Error; err != nil {
			return nil, fmt.Errorf("load followees: %w", err)
		}
		p.authorIDs, p.restrict = followees, true
	case ViewDiscover:
	case ViewPopular:
		since := c.now().Add(-popularWindow)
		p.since, p.fetch, p.popular = &since, 0, true
	case ViewReviews:
		p.kinds = []target.Kind{target.KindReview}
	case ViewReviewsPopular:
		since := c.now().Add(-reviewsPopularWindow)
		p.kinds = []target.Kind{target.KindReview}
		p.since, p.fetch, p.popular = &since, 0, true
	case ViewProfile:
		if q.AuthorID == "" {
			return nil, fmt.Errorf("%w: author", ErrMissingFilter)
		}
		p.authorIDs, p.restrict = []string{q.AuthorID}, true
	case ViewGame:
		if q.GameID == "" {
			return nil, fmt.Errorf("%w: game", ErrMissingFilter)
		}
		p.gameID = q.GameID
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, q.View)
	}

	// Chronological cursors turn into a keyset bound so deep pages stay
	// inside the over-fetch. An unresolvable cursor leaves the window open
	// and Paginate restarts from the top.
	if !p.popular && q.Cursor != "" {
		if a, ok := c.resolveAnchor(ctx, q.Cursor); ok && a.target.Kind.In(p.kinds) {
			p.after = a
		}
	}
	return p, nil
}

// anchor is the position of a cursor item in chronological order.
type anchor struct {
	at     time.Time
	target target.Target
}

func (c *Composer) resolveAnchor(ctx context.Context, cursor string) (*anchor, bool) {
	t, err := target.ParseKey(cursor)
	if err != nil {
		return nil, false
	}
	var table string
	switch t.Kind {
	case target.KindPost:
		table = "posts"
	case target.KindArticle:
		table = "articles"
	case target.KindReview:
		table = "reviews"
	default:
		return nil, false
	}
	var row struct{ CreatedAt time.Time }
	err = c.db.WithContext(ctx).Table(table).Select("created_at").Where("id = ?", t.ID).Take(&row).Error
	if err != nil {
		return nil, false
	}
	return &anchor{at: row.CreatedAt, target: t}, true
}

type candidates struct {
	posts    []models.Post
	articles []models.Article
	reviews  []models.Review
}

// scoped applies the plan to one kind's table. Rows come back in the same
// order SortChronological puts them in: newest first, then key descending.
func (c *Composer) scoped(ctx context.Context, model interface{}, kind target.Kind, p *plan) *gorm.DB {
	q := c.db.WithContext(ctx).Model(model).
		Where("author_id IN (?)", c.db.Model(&models.User{}).Select("id"))
	if p.restrict || len(p.authorIDs) > 0 {
		q = q.Where("author_id IN ?", p.authorIDs)
	}
	if p.since != nil {
		q = q.Where("created_at >= ?", *p.since)
	}
	if a := p.after; a != nil {
		// Keys compare by kind name first, so rows tied with the anchor
		// follow it only when their kind sorts lower.
		switch {
		case kind == a.target.Kind:
			q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", a.at, a.at, a.target.ID)
		case kind < a.target.Kind:
			q = q.Where("created_at <= ?", a.at)
		default:
			q = q.Where("created_at < ?", a.at)
		}
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if p.fetch > 0 {
		q = q.Limit(p.fetch)
	}
	return q
}

func (c *Composer) fetchCandidates(ctx context.Context, p *plan) (*candidates, error) {
	out := &candidates{}
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range p.kinds {
		switch kind {
		case target.KindPost:
			g.Go(func() error {
				q := c.scoped(gctx, &models.Post{}, target.KindPost, p)
				if p.gameID != "" {
					q = q.Where("game_id = ?", p.gameID)
				}
				return q.Find(&out.posts).Error
			})
		case target.KindArticle:
			g.Go(func() error {
				q := c.scoped(gctx, &models.Article{}, target.KindArticle, p).Where("published = ?", true)
				if p.gameID != "" {
					q = q.Where("id IN (?)", c.db.Model(&models.ArticleGame{}).Select("article_id").Where("game_id = ?", p.gameID))
				}
				return q.Find(&out.articles).Error
			})
		case target.KindReview:
			g.Go(func() error {
				q := c.scoped(gctx, &models.Review{}, target.KindReview, p).Where("published = ?", true)
				if p.gameID != "" {
					q = q.Where("game_id = ?", p.gameID)
				}
				return q.Find(&out.reviews).Error
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch feed candidates: %w", err)
	}
	return out, nil
}

// hydrate attaches authors, games, images and engagement, producing uniform
// items. Items whose author row is gone are dropped; feed fetches already
// exclude them in SQL.
func (c *Composer) hydrate(ctx context.Context, cands *candidates, viewerID string) ([]Item, error) {
	authorIDs := make([]string, 0)
	targets := make([]target.Target, 0, len(cands.posts)+len(cands.articles)+len(cands.reviews))
	postIDs := make([]string, 0, len(cands.posts))
	articleIDs := make([]string, 0, len(cands.articles))
	gameIDs := make([]string, 0)

	for _, p := range cands.posts {
		authorIDs = append(authorIDs, p.AuthorID)
		targets = append(targets, target.New(target.KindPost, p.ID))
		postIDs = append(postIDs, p.ID)
		if p.GameID != nil {
			gameIDs = append(gameIDs, *p.GameID)
		}
	}
	for _, a := range cands.articles {
		authorIDs = append(authorIDs, a.AuthorID)
		targets = append(targets, target.New(target.KindArticle, a.ID))
		articleIDs = append(articleIDs, a.ID)
	}
	for _, r := range cands.reviews {
		authorIDs = append(authorIDs, r.AuthorID)
		targets = append(targets, target.New(target.KindReview, r.ID))
		gameIDs = append(gameIDs, r.GameID)
	}
	if len(targets) == 0 {
		return []Item{}, nil
	}

	var (
		users    []models.User
		links    []models.ArticleGame
		images   []models.PostImage
		engIndex *engagement.Index
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.db.WithContext(gctx).Where("id IN ?", dedupe(authorIDs)).Find(&users).Error
	})
	g.Go(func() error {
		if len(articleIDs) == 0 {
			return nil
		}
		return c.db.WithContext(gctx).Where("article_id IN ?", articleIDs).Find(&links).Error
	})
	g.Go(func() error {
		if len(postIDs) == 0 {
			return nil
		}
		return c.db.WithContext(gctx).Where("post_id IN ?", postIDs).Order("position ASC").Find(&images).Error
	})
	g.Go(func() error {
		ix, err := c.loader.Load(gctx, targets)
		engIndex = ix
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("hydrate feed: %w", err)
	}

	for _, l := range links {
		gameIDs = append(gameIDs, l.GameID)
	}
	var games []models.Game
	if len(gameIDs) > 0 {
		if err := c.db.WithContext(ctx).Where("id IN ?", dedupe(gameIDs)).Find(&games).Error; err != nil {
			return nil, fmt.Errorf("hydrate feed games: %w", err)
		}
	}

	authors := make(map[string]*models.User, len(users))
	for i := range users {
		authors[users[i].ID] = &users[i]
	}
	gamesByID := make(map[string]*models.Game, len(games))
	for i := range games {
		gamesByID[games[i].ID] = &games[i]
	}
	articleGames := make(map[string][]string)
	for _, l := range links {
		articleGames[l.ArticleID] = append(articleGames[l.ArticleID], l.GameID)
	}
	postImages := make(map[string][]string)
	for _, img := range images {
		postImages[img.PostID] = append(postImages[img.PostID], img.URL)
	}

	items := make([]Item, 0, len(targets))
	emit := func(item Item, authorID string) {
		u, ok := authors[authorID]
		if !ok {
			return
		}
		item.Author = authorOf(u)
		item.Summary = engIndex.Summary(item.Target(), viewerID)
		if item.Games == nil {
			item.Games = []GameRef{}
		}
		if item.Genres == nil {
			item.Genres = []string{}
		}
		items = append(items, item)
	}

	for _, p := range cands.posts {
		item := Item{
			Type:      target.KindPost,
			ID:        p.ID,
			Content:   p.Content,
			Images:    postImages[p.ID],
			EditCount: p.EditCount,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		if p.GameID != nil {
			item.Games = gameRefs(gamesByID, *p.GameID)
		}
		emit(item, p.AuthorID)
	}
	for _, a := range cands.articles {
		ids := articleGames[a.ID]
		emit(Item{
			Type:          target.KindArticle,
			ID:            a.ID,
			Title:         a.Title,
			Excerpt:       a.Excerpt,
			Content:       a.Content,
			CoverImageURL: a.CoverImageURL,
			Games:         gameRefs(gamesByID, ids...),
			Genres:        genresOf(a.Genres, gamesByID, ids),
			EditCount:     a.EditCount,
			CreatedAt:     a.CreatedAt,
			UpdatedAt:     a.UpdatedAt,
		}, a.AuthorID)
	}
	for _, r := range cands.reviews {
		rating := r.Rating
		emit(Item{
			Type:             target.KindReview,
			ID:               r.ID,
			Title:            r.Title,
			Content:          r.Content,
			Rating:           &rating,
			ContainsSpoilers: r.ContainsSpoilers,
			Games:            gameRefs(gamesByID, r.GameID),
			Genres:           genresOf(r.Genres, gamesByID, []string{r.GameID}),
			EditCount:        r.EditCount,
			CreatedAt:        r.CreatedAt,
			UpdatedAt:        r.UpdatedAt,
		}, r.AuthorID)
	}
	return items, nil
}

func authorOf(u *models.User) Author {
	return Author{ID: u.ID, Handle: u.Handle, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
}

func gameRefs(games map[string]*models.Game, ids ...string) []GameRef {
	refs := make([]GameRef, 0, len(ids))
	for _, id := range ids {
		if g, ok := games[id]; ok {
			refs = append(refs, GameRef{ID: g.ID, Name: g.Name, Slug: g.Slug, CoverURL: g.CoverURL})
		}
	}
	return refs
}

// genresOf keeps explicit tags; without any, it is the union of the linked
// games' genres in first-seen order.
func genresOf(explicit []string, games map[string]*models.Game, gameIDs []string) []string {
	if len(explicit) > 0 {
		return append([]string{}, explicit...)
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, id := range gameIDs {
		g, ok := games[id]
		if !ok {
			continue
		}
		for _, genre := range g.Genres {
			if !seen[genre] {
				seen[genre] = true
				out = append(out, genre)
			}
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
