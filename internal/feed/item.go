// Package feed merges posts, articles and reviews into one ordered,
// cursor-paginated stream.
package feed

import (
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/engagement"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
)

type Author struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type GameRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	CoverURL string `json:"cover_url,omitempty"`
}

// Item is the uniform shape of every feed entry regardless of its kind.
type Item struct {
	Type             target.Kind `json:"type"`
	ID               string      `json:"id"`
	Author           Author      `json:"author"`
	Title            string      `json:"title,omitempty"`
	Excerpt          string      `json:"excerpt,omitempty"`
	Content          interface{} `json:"content"`
	CoverImageURL    string      `json:"cover_image_url,omitempty"`
	Images           []string    `json:"images,omitempty"`
	Rating           *int        `json:"rating,omitempty"`
	ContainsSpoilers bool        `json:"contains_spoilers,omitempty"`
	Games            []GameRef   `json:"games"`
	Genres           []string    `json:"genres"`
	EditCount        int         `json:"edit_count"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	engagement.Summary
}

func (i *Item) Target() target.Target {
	return target.New(i.Type, i.ID)
}

// Key is the cursor form "{type}-{id}".
func (i *Item) Key() string {
	return i.Target().Key()
}

type Page struct {
	Items      []Item  `json:"items"`
	NextCursor *string `json:"next_cursor"`
}

// SortChronological orders newest first; equal timestamps fall back to key
// order so recomputed lists are identical.
func SortChronological(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if !items[a].CreatedAt.Equal(items[b].CreatedAt) {
			return items[a].CreatedAt.After(items[b].CreatedAt)
		}
		return items[a].Key() > items[b].Key()
	})
}

// SortPopular orders by like count, then recency.
func SortPopular(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].LikeCount != items[b].LikeCount {
			return items[a].LikeCount > items[b].LikeCount
		}
		if !items[a].CreatedAt.Equal(items[b].CreatedAt) {
			return items[a].CreatedAt.After(items[b].CreatedAt)
		}
		return items[a].Key() > items[b].Key()
	})
}

// Paginate returns up to limit items strictly after cursor in items. An
// empty or unknown cursor starts from the beginning. NextCursor is the key of
// the last returned item when more items follow, nil at the end.
//
// Cursors are positional: a re-rank between calls can skip or repeat items.
func Paginate(items []Item, cursor string, limit int) Page {
	if limit < 1 {
		limit = 1
	}
	start := 0
	if cursor != "" {
		for i := range items {
			if items[i].Key() == cursor {
				start = i + 1
				break
			}
		}
	}

	window := items[start:]
	if len(window) > limit+1 {
		window = window[:limit+1]
	}

	page := Page{Items: make([]Item, 0, limit)}
	if len(window) > limit {
		page.Items = append(page.Items, window[:limit]...)
		next := page.Items[limit-1].Key()
		page.NextCursor = &next
		return page
	}
	page.Items = append(page.Items, window...)
	return page
}
