package rating_test

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/rating"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name    string
		reviews []int
		quick   []int
		want    *float64
		total   int
	}{
		{name: "no ratings", total: 0},
		{name: "weighted blend", reviews: []int{4, 5}, quick: []int{3, 3, 3}, want: ptr(3.6), total: 5},
		{name: "reviews only", reviews: []int{5, 4, 4}, want: ptr(4.3), total: 3},
		{name: "quick only", quick: []int{1, 2}, want: ptr(1.5), total: 2},
		{name: "rounds once", reviews: []int{5}, quick: []int{4, 4}, want: ptr(4.3), total: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rating.Combine(tt.reviews, tt.quick)
			assert.Equal(t, tt.total, got.TotalRatings)
			if tt.want == nil {
				assert.Nil(t, got.AverageRating)
				return
			}
			require.NotNil(t, got.AverageRating)
			assert.InDelta(t, *tt.want, *got.AverageRating, 1e-9)
		})
	}
}

func TestAggregatorForGame(t *testing.T) {
	db := testutil.NewDB(t)
	game := testutil.CreateGame(t, db, "Hades")
	other := testutil.CreateGame(t, db, "Celeste")

	for i, r := range []int{4, 5} {
		u := testutil.CreateUser(t, db, "reviewer"+string(rune('a'+i)))
		testutil.CreateReview(t, db, u.ID, game.ID, r, true, testutil.At(i))
	}
	draftAuthor := testutil.CreateUser(t, db, "drafter")
	testutil.CreateReview(t, db, draftAuthor.ID, game.ID, 1, false, testutil.At(5))
	testutil.CreateReview(t, db, draftAuthor.ID, other.ID, 1, true, testutil.At(6))

	three := 3
	for i := 0; i < 3; i++ {
		u := testutil.CreateUser(t, db, "player"+string(rune('a'+i)))
		require.NoError(t, db.Create(&models.QuestLog{
			ID: uuid.NewString(), UserID: u.ID, GameID: game.ID,
			Status: models.QuestStatusPlaying, QuickRating: &three,
		}).Error)
	}
	unrated := testutil.CreateUser(t, db, "unrated")
	require.NoError(t, db.Create(&models.QuestLog{
		ID: uuid.NewString(), UserID: unrated.ID, GameID: game.ID, Status: models.QuestStatusBacklog,
	}).Error)

	got, err := rating.NewAggregator(db).ForGame(context.Background(), game.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.InDelta(t, 3.6, *got.AverageRating, 1e-9)
	assert.Equal(t, 5, got.TotalRatings)
	assert.Equal(t, 2, got.ReviewCount)
	assert.Equal(t, 3, got.QuickCount)
}

func ptr(f float64) *float64 { return &f }
