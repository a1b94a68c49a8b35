package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/engagement"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func items(n int) []Item {
	out := make([]Item, n)
	for i := 0; i < n; i++ {
		out[i] = Item{Type: target.KindPost, ID: fmt.Sprintf("p%d", i+1), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
	}
	SortChronological(out)
	return out
}

func keys(page Page) []string {
	var out []string
	for i := range page.Items {
		out = append(out, page.Items[i].Key())
	}
	return out
}

func TestPaginateRoundTrip(t *testing.T) {
	all := items(5)

	p1 := Paginate(all, "", 2)
	assert.Equal(t, []string{"post-p5", "post-p4"}, keys(p1))
	require.NotNil(t, p1.NextCursor)
	assert.Equal(t, "post-p4", *p1.NextCursor)

	p2 := Paginate(all, *p1.NextCursor, 2)
	assert.Equal(t, []string{"post-p3", "post-p2"}, keys(p2))
	require.NotNil(t, p2.NextCursor)

	p3 := Paginate(all, *p2.NextCursor, 2)
	assert.Equal(t, []string{"post-p1"}, keys(p3))
	assert.Nil(t, p3.NextCursor)

	seen := map[string]bool{}
	for _, k := range append(append(keys(p1), keys(p2)...), keys(p3)...) {
		assert.False(t, seen[k], "duplicate %s", k)
		seen[k] = true
	}
	assert.Len(t, seen, 5)
}

func TestPaginateExactFit(t *testing.T) {
	p := Paginate(items(2), "", 2)
	assert.Len(t, p.Items, 2)
	assert.Nil(t, p.NextCursor)
}

func TestPaginateUnknownCursorRestarts(t *testing.T) {
	all := items(3)
	p := Paginate(all, "article-missing", 2)
	assert.Equal(t, []string{"post-p3", "post-p2"}, keys(p))
}

func TestPaginateCursorAtEnd(t *testing.T) {
	all := items(3)
	p := Paginate(all, "post-p1", 2)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Nil(t, p.NextCursor)
}

func TestSortPopular(t *testing.T) {
	list := []Item{
		{Type: target.KindPost, ID: "a", CreatedAt: base, Summary: engagement.Summary{LikeCount: 1}},
		{Type: target.KindReview, ID: "b", CreatedAt: base.Add(time.Hour), Summary: engagement.Summary{LikeCount: 1}},
		{Type: target.KindArticle, ID: "c", CreatedAt: base, Summary: engagement.Summary{LikeCount: 4}},
	}
	SortPopular(list)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, "a", list[2].ID)
}

// A like that re-ranks an item between page loads is not reflected in the
// positional cursor: the re-ranked item is skipped.
func TestPopularCursorIsNotStableUnderReRank(t *testing.T) {
	mk := func(id string, likes int) Item {
		return Item{Type: target.KindPost, ID: id, CreatedAt: base, Summary: engagement.Summary{LikeCount: likes}}
	}
	first := []Item{mk("a", 3), mk("b", 2), mk("c", 1), mk("d", 0)}
	SortPopular(first)
	p1 := Paginate(first, "", 2)
	require.Equal(t, []string{"post-a", "post-b"}, keys(p1))

	second := []Item{mk("a", 3), mk("b", 2), mk("c", 1), mk("d", 5)}
	SortPopular(second)
	p2 := Paginate(second, *p1.NextCursor, 2)
	assert.Equal(t, []string{"post-c"}, keys(p2))
	assert.Nil(t, p2.NextCursor)
}
