// Package legacy rewrites references imported from the old relational schema
// into native identifiers. It is meant to run once, after a bulk import, and
// is safe to re-run or resume in the same order.
package legacy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"gorm.io/gorm"
)

// entity names the lookup map a column resolves against.
type entity string

const (
	entityUser    entity = "user"
	entityGame    entity = "game"
	entityPost    entity = "post"
	entityArticle entity = "article"
	entityReview  entity = "review"
	entityComment entity = "comment"
)

// field is one reference column. A field either always resolves against
// lookup, or picks its map per row from the discriminator column.
type field struct {
	column        string
	lookup        entity
	discriminator string
}

type pass struct {
	table  string
	fields []field
}

// passes run in dependency order: single-FK tables first, polymorphic tables
// last. Users and games carry no references of their own.
var passes = []pass{
	{table: "posts", fields: []field{{column: "author_id", lookup: entityUser}, {column: "game_id", lookup: entityGame}}},
	{table: "post_images", fields: []field{{column: "post_id", lookup: entityPost}}},
	{table: "articles", fields: []field{{column: "author_id", lookup: entityUser}}},
	{table: "article_games", fields: []field{{column: "article_id", lookup: entityArticle}, {column: "game_id", lookup: entityGame}}},
	{table: "reviews", fields: []field{{column: "author_id", lookup: entityUser}, {column: "game_id", lookup: entityGame}}},
	{table: "follows", fields: []field{{column: "follower_id", lookup: entityUser}, {column: "followee_id", lookup: entityUser}}},
	{table: "quest_logs", fields: []field{{column: "user_id", lookup: entityUser}, {column: "game_id", lookup: entityGame}}},
	{table: "collection_entries", fields: []field{{column: "user_id", lookup: entityUser}, {column: "game_id", lookup: entityGame}}},
	{table: "comments", fields: []field{
		{column: "author_id", lookup: entityUser},
		{column: "target_id", discriminator: "target_type"},
		{column: "parent_id", lookup: entityComment},
	}},
	{table: "likes", fields: []field{{column: "user_id", lookup: entityUser}, {column: "target_id", discriminator: "target_type"}}},
	{table: "reports", fields: []field{{column: "reporter_id", lookup: entityUser}, {column: "target_id", discriminator: "target_type"}}},
}

// sources are the row kinds that carry a legacy_id.
var sources = []struct {
	kind  entity
	model interface{}
}{
	{entityUser, &models.User{}},
	{entityGame, &models.Game{}},
	{entityPost, &models.Post{}},
	{entityArticle, &models.Article{}},
	{entityReview, &models.Review{}},
	{entityComment, &models.Comment{}},
}

type TableReport struct {
	Table   string `json:"table"`
	Scanned int    `json:"scanned"`
	Patched int    `json:"patched"`
	Failed  int    `json:"failed"`
}

type Report struct {
	Tables []TableReport `json:"tables"`
	DryRun bool          `json:"dry_run"`
}

func (r *Report) Patched() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Patched
	}
	return n
}

type Resolver struct {
	db        *gorm.DB
	batchSize int
	dryRun    bool
	log       *slog.Logger
	maps      map[entity]map[string]string
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db, batchSize: 500, log: slog.Default()}
}

// DryRun makes Run count patches without writing them.
func (r *Resolver) DryRun(v bool) *Resolver {
	r.dryRun = v
	return r
}

func (r *Resolver) BatchSize(n int) *Resolver {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

func (r *Resolver) Run(ctx context.Context) (*Report, error) {
	if err := r.buildMaps(ctx); err != nil {
		return nil, err
	}

	report := &Report{DryRun: r.dryRun}
	for _, p := range passes {
		tr, err := r.runPass(ctx, p)
		if err != nil {
			return report, fmt.Errorf("resolve %s: %w", p.table, err)
		}
		r.log.Info("legacy pass complete",
			"table", tr.Table,
			"scanned", tr.Scanned,
			"patched", tr.Patched,
			"failed", tr.Failed,
			"dry_run", r.dryRun,
		)
		report.Tables = append(report.Tables, tr)
	}
	return report, nil
}

func (r *Resolver) buildMaps(ctx context.Context) error {
	r.maps = make(map[entity]map[string]string, len(sources))
	for _, src := range sources {
		var rows []struct {
			ID       string
			LegacyID string
		}
		if err := r.db.WithContext(ctx).Model(src.model).
			Select("id", "legacy_id").
			Where("legacy_id IS NOT NULL AND legacy_id <> ''").
			Scan(&rows).Error; err != nil {
			return fmt.Errorf("scan %s legacy ids: %w", src.kind, err)
		}
		m := make(map[string]string, len(rows))
		for _, row := range rows {
			m[row.LegacyID] = row.ID
		}
		r.maps[src.kind] = m
	}
	return nil
}

func (r *Resolver) runPass(ctx context.Context, p pass) (TableReport, error) {
	tr := TableReport{Table: p.table}

	cols := []string{"id"}
	for _, f := range p.fields {
		cols = append(cols, f.column)
		if f.discriminator != "" {
			cols = append(cols, f.discriminator)
		}
	}

	last := ""
	for {
		var rows []map[string]interface{}
		if err := r.db.WithContext(ctx).Table(p.table).
			Select(cols).
			Where("id > ?", last).
			Order("id").
			Limit(r.batchSize).
			Find(&rows).Error; err != nil {
			return tr, err
		}
		if len(rows) == 0 {
			return tr, nil
		}

		for _, row := range rows {
			tr.Scanned++
			id, _ := asString(row["id"])
			last = id

			patch := r.patchFor(p, row)
			if len(patch) == 0 {
				continue
			}
			if r.dryRun {
				tr.Patched++
				continue
			}
			if err := r.db.WithContext(ctx).Table(p.table).Where("id = ?", id).Updates(patch).Error; err != nil {
				tr.Failed++
				r.log.Error("legacy row patch failed", "table", p.table, "id", id, "error", err.Error())
				continue
			}
			tr.Patched++
		}

		if len(rows) < r.batchSize {
			return tr, nil
		}
	}
}

// patchFor returns the columns of row whose value matched a legacy id.
// Unmatched values are left alone.
func (r *Resolver) patchFor(p pass, row map[string]interface{}) map[string]interface{} {
	patch := map[string]interface{}{}
	for _, f := range p.fields {
		old, ok := asString(row[f.column])
		if !ok || old == "" {
			continue
		}
		kind := f.lookup
		if f.discriminator != "" {
			d, _ := asString(row[f.discriminator])
			kind = entity(d)
		}
		if next, ok := r.maps[kind][old]; ok && next != old {
			patch[f.column] = next
		}
	}
	return patch
}

func asString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	}
	return "", false
}
