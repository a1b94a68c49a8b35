package services

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MaxPostLength  = 5000
	MaxTitleLength = 200
	MaxExcerpt     = 500
	MaxPostImages  = 4
)

// ContentService owns posts, articles and reviews. Every edit snapshots the
// pre-edit row into content_revisions in the same transaction.
type ContentService struct {
	db    *gorm.DB
	files storage.Remover
}

func NewContentService(db *gorm.DB, files storage.Remover) *ContentService {
	if files == nil {
		files = storage.Noop{}
	}
	return &ContentService{db: db, files: files}
}

func (s *ContentService) CreatePost(ctx context.Context, authorID string, req *dto.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" && len(req.Images) == 0 {
		return nil, invalid("post content is required")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return nil, invalid("post content exceeds %d characters", MaxPostLength)
	}
	if len(req.Images) > MaxPostImages {
		return nil, invalid("a post may have at most %d images", MaxPostImages)
	}
	if req.GameID != nil {
		if err := requireGames(ctx, s.db, *req.GameID); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Content:  content,
		GameID:   req.GameID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for i, url := range req.Images {
			img := &models.PostImage{ID: uuid.NewString(), PostID: post.ID, URL: url, Position: i}
			if err := tx.Create(img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ContentService) UpdatePost(ctx context.Context, callerID, id string, req *dto.UpdatePostRequest) (*models.Post, error) {
	if req.Content != nil {
		c := strings.TrimSpace(*req.Content)
		if c == "" {
			return nil, invalid("post content is required")
		}
		if utf8.RuneCountInString(c) > MaxPostLength {
			return nil, invalid("post content exceeds %d characters", MaxPostLength)
		}
		req.Content = &c
	}
	if req.GameID != nil && *req.GameID != "" {
		if err := requireGames(ctx, s.db, *req.GameID); err != nil {
			return nil, err
		}
	}

	res, err := s.edit(ctx, callerID, target.New(target.KindPost, id), func(tx *gorm.DB, r *target.Resolved) error {
		p := r.Post
		if req.Content != nil {
			p.Content = *req.Content
		}
		if req.GameID != nil {
			if *req.GameID == "" {
				p.GameID = nil
			} else {
				p.GameID = req.GameID
			}
		}
		p.EditCount++
		return tx.Save(p).Error
	})
	if err != nil {
		return nil, err
	}
	return res.Post, nil
}

func (s *ContentService) CreateArticle(ctx context.Context, authorID string, req *dto.CreateArticleRequest) (*models.Article, error) {
	title := strings.TrimSpace(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(req.Excerpt) > MaxExcerpt {
		return nil, invalid("excerpt exceeds %d characters", MaxExcerpt)
	}
	content, err := documentOf(req.Content)
	if err != nil {
		return nil, err
	}
	gameIDs := dedupe(req.GameIDs)
	if err := requireGames(ctx, s.db, gameIDs...); err != nil {
		return nil, err
	}

	article := &models.Article{
		ID:            uuid.NewString(),
		AuthorID:      authorID,
		Title:         title,
		Excerpt:       req.Excerpt,
		CoverImageURL: req.CoverImageURL,
		Content:       content,
		Genres:        normalizeGenres(req.Genres),
		Published:     req.Published,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(article).Error; err != nil {
			return err
		}
		return linkGames(tx, article.ID, gameIDs)
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ContentService) UpdateArticle(ctx context.Context, callerID, id string, req *dto.UpdateArticleRequest) (*models.Article, error) {
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if err := validateTitle(t); err != nil {
			return nil, err
		}
		req.Title = &t
	}
	if req.Excerpt != nil && utf8.RuneCountInString(*req.Excerpt) > MaxExcerpt {
		return nil, invalid("excerpt exceeds %d characters", MaxExcerpt)
	}
	var content datatypes.JSON
	if len(req.Content) > 0 {
		c, err := documentOf(req.Content)
		if err != nil {
			return nil, err
		}
		content = c
	}
	var gameIDs []string
	if req.GameIDs != nil {
		gameIDs = dedupe(*req.GameIDs)
		if err := requireGames(ctx, s.db, gameIDs...); err != nil {
			return nil, err
		}
	}

	oldCover := ""
	res, err := s.edit(ctx, callerID, target.New(target.KindArticle, id), func(tx *gorm.DB, r *target.Resolved) error {
		a := r.Article
		if req.Title != nil {
			a.Title = *req.Title
		}
		if req.Excerpt != nil {
			a.Excerpt = *req.Excerpt
		}
		if req.CoverImageURL != nil && *req.CoverImageURL != a.CoverImageURL {
			oldCover = a.CoverImageURL
			a.CoverImageURL = *req.CoverImageURL
		}
		if content != nil {
			a.Content = content
		}
		if req.Genres != nil {
			a.Genres = normalizeGenres(*req.Genres)
		}
		a.EditCount++
		if err := tx.Save(a).Error; err != nil {
			return err
		}
		if req.GameIDs == nil {
			return nil
		}
		if err := tx.Where("article_id = ?", a.ID).Delete(&models.ArticleGame{}).Error; err != nil {
			return err
		}
		return linkGames(tx, a.ID, gameIDs)
	})
	if err != nil {
		return nil, err
	}
	if oldCover != "" {
		s.files.DeleteURLs(ctx, oldCover)
	}
	return res.Article, nil
}

func (s *ContentService) CreateReview(ctx context.Context, authorID string, req *dto.CreateReviewRequest) (*models.Review, error) {
	title := strings.TrimSpace(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}
	content, err := documentOf(req.Content)
	if err != nil {
		return nil, err
	}
	if req.GameID == "" {
		return nil, invalid("game_id is required")
	}
	if err := requireGames(ctx, s.db, req.GameID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ID:               uuid.NewString(),
		AuthorID:         authorID,
		GameID:           req.GameID,
		Title:            title,
		Content:          content,
		Rating:           req.Rating,
		ContainsSpoilers: req.ContainsSpoilers,
		Genres:           normalizeGenres(req.Genres),
		Published:        req.Published,
	}
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ContentService) UpdateReview(ctx context.Context, callerID, id string, req *dto.UpdateReviewRequest) (*models.Review, error) {
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if err := validateTitle(t); err != nil {
			return nil, err
		}
		req.Title = &t
	}
	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return nil, err
		}
	}
	var content datatypes.JSON
	if len(req.Content) > 0 {
		c, err := documentOf(req.Content)
		if err != nil {
			return nil, err
		}
		content = c
	}

	res, err := s.edit(ctx, callerID, target.New(target.KindReview, id), func(tx *gorm.DB, r *target.Resolved) error {
		rv := r.Review
		if req.Title != nil {
			rv.Title = *req.Title
		}
		if content != nil {
			rv.Content = content
		}
		if req.Rating != nil {
			rv.Rating = *req.Rating
		}
		if req.ContainsSpoilers != nil {
			rv.ContainsSpoilers = *req.ContainsSpoilers
		}
		if req.Genres != nil {
			rv.Genres = normalizeGenres(*req.Genres)
		}
		rv.EditCount++
		return tx.Save(rv).Error
	})
	if err != nil {
		return nil, err
	}
	return res.Review, nil
}

// SetPublished toggles visibility of an article or review. It is not an edit
// and takes no snapshot.
func (s *ContentService) SetPublished(ctx context.Context, callerID string, t target.Target, published bool) error {
	var model interface{}
	switch t.Kind {
	case target.KindArticle:
		model = &models.Article{}
	case target.KindReview:
		model = &models.Review{}
	default:
		return invalid("only articles and reviews can be published")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := target.Resolve(ctx, tx, t)
		if err != nil {
			return err
		}
		if err := target.Authorize(r, callerID, false, false); err != nil {
			return err
		}
		return tx.Model(model).Where("id = ?", t.ID).Update("published", published).Error
	})
	return categorize(err)
}

// Delete removes a post, article or review together with its likes, its
// comments and their replies, likes on those comments, images, revisions,
// game links and pending reports, all in one transaction. Stored files are
// removed after commit.
func (s *ContentService) Delete(ctx context.Context, callerID string, t target.Target) error {
	if !t.Kind.In(target.ContentKinds) {
		return invalid("cannot delete %s", t.Kind)
	}

	var files []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := target.Resolve(ctx, tx, t)
		if err != nil {
			return err
		}
		if err := target.Authorize(r, callerID, false, false); err != nil {
			return err
		}
		files, err = deleteContent(tx, r)
		return err
	})
	if err != nil {
		return categorize(err)
	}

	if len(files) > 0 {
		s.files.DeleteURLs(ctx, files...)
	}
	return nil
}

// Revisions lists snapshots of t, oldest first. Drafts' history is only
// visible to their author.
func (s *ContentService) Revisions(ctx context.Context, viewerID string, t target.Target) ([]models.ContentRevision, error) {
	if !t.Kind.In(target.ContentKinds) {
		return nil, invalid("%s has no revisions", t.Kind)
	}
	r, err := target.Resolve(ctx, s.db, t)
	if err != nil {
		return nil, categorize(err)
	}
	if !r.Published() && r.AuthorID() != viewerID {
		return nil, notFound("%s", t.Key())
	}

	var revs []models.ContentRevision
	err = s.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", string(t.Kind), t.ID).
		Order("version ASC").
		Find(&revs).Error
	return revs, err
}

// edit resolves t, checks ownership, snapshots the current row and then runs
// apply, all inside one transaction.
func (s *ContentService) edit(ctx context.Context, callerID string, t target.Target, apply func(tx *gorm.DB, r *target.Resolved) error) (*target.Resolved, error) {
	var res *target.Resolved
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := target.Resolve(ctx, tx, t)
		if err != nil {
			return err
		}
		if err := target.Authorize(r, callerID, false, false); err != nil {
			return err
		}
		rev, err := snapshot(r, callerID)
		if err != nil {
			return err
		}
		if err := tx.Create(rev).Error; err != nil {
			return err
		}
		if err := apply(tx, r); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, categorize(err)
	}
	return res, nil
}

func snapshot(r *target.Resolved, editorID string) (*models.ContentRevision, error) {
	rev := &models.ContentRevision{
		ID:         uuid.NewString(),
		TargetType: string(r.Target.Kind),
		TargetID:   r.Target.ID,
		EditedBy:   editorID,
	}

	var row interface{}
	switch r.Target.Kind {
	case target.KindPost:
		text, err := json.Marshal(r.Post.Content)
		if err != nil {
			return nil, err
		}
		rev.Version = r.Post.EditCount + 1
		rev.Content = text
		row = r.Post
	case target.KindArticle:
		rev.Version = r.Article.EditCount + 1
		rev.Title = r.Article.Title
		rev.Content = r.Article.Content
		row = r.Article
	case target.KindReview:
		rating := r.Review.Rating
		rev.Version = r.Review.EditCount + 1
		rev.Title = r.Review.Title
		rev.Content = r.Review.Content
		rev.Rating = &rating
		row = r.Review
	default:
		return nil, invalid("%s cannot be versioned", r.Target.Kind)
	}

	raw, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	rev.Snapshot = raw
	return rev, nil
}

// deleteContent runs the cascade for a resolved post, article or review and
// returns the URLs of files that should be removed from storage.
func deleteContent(tx *gorm.DB, r *target.Resolved) ([]string, error) {
	kind, id := string(r.Target.Kind), r.Target.ID

	var commentIDs []string
	if err := tx.Model(&models.Comment{}).
		Where("target_type = ? AND target_id = ?", kind, id).
		Pluck("id", &commentIDs).Error; err != nil {
		return nil, err
	}
	if len(commentIDs) > 0 {
		if err := tx.Where("target_type = ? AND target_id IN ?", string(target.KindComment), commentIDs).
			Delete(&models.Like{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
			return nil, err
		}
	}

	for _, model := range []interface{}{&models.Like{}, &models.Report{}, &models.ContentRevision{}} {
		if err := tx.Where("target_type = ? AND target_id = ?", kind, id).Delete(model).Error; err != nil {
			return nil, err
		}
	}

	var files []string
	switch r.Target.Kind {
	case target.KindPost:
		if err := tx.Model(&models.PostImage{}).Where("post_id = ?", id).Pluck("url", &files).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Delete(&models.Post{}, "id = ?", id).Error; err != nil {
			return nil, err
		}
	case target.KindArticle:
		if r.Article.CoverImageURL != "" {
			files = append(files, r.Article.CoverImageURL)
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.ArticleGame{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Delete(&models.Article{}, "id = ?", id).Error; err != nil {
			return nil, err
		}
	case target.KindReview:
		if err := tx.Delete(&models.Review{}, "id = ?", id).Error; err != nil {
			return nil, err
		}
	}
	return files, nil
}

func linkGames(tx *gorm.DB, articleID string, gameIDs []string) error {
	for _, gid := range gameIDs {
		link := &models.ArticleGame{ID: uuid.NewString(), ArticleID: articleID, GameID: gid}
		if err := tx.Create(link).Error; err != nil {
			return err
		}
	}
	return nil
}

// requireGames fails with NotFound unless every id names a cached game.
func requireGames(ctx context.Context, db *gorm.DB, ids ...string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	var n int64
	if err := db.WithContext(ctx).Model(&models.Game{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return err
	}
	if int(n) != len(ids) {
		return notFound("game")
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return invalid("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return invalid("title exceeds %d characters", MaxTitleLength)
	}
	return nil
}

func validateRating(r int) error {
	if r < 1 || r > 5 {
		return invalid("rating must be between 1 and 5")
	}
	return nil
}

// documentOf checks that raw is a JSON document (the rich-text editor's
// output) and returns it as a column value.
func documentOf(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 {
		return nil, invalid("content is required")
	}
	if !json.Valid(raw) {
		return nil, invalid("content must be a JSON document")
	}
	return datatypes.JSON(raw), nil
}

func normalizeGenres(in []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, g := range in {
		g = strings.TrimSpace(g)
		if g == "" || seen[strings.ToLower(g)] {
			continue
		}
		seen[strings.ToLower(g)] = true
		out = append(out, g)
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
