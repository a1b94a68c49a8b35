package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tg, err := Parse("Post", "abc", ContentKinds)
	require.NoError(t, err)
	assert.Equal(t, KindPost, tg.Kind)
	assert.Equal(t, "post-abc", tg.Key())

	_, err = Parse("comment", "abc", ContentKinds)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Parse("comment", "abc", LikeKinds)
	assert.NoError(t, err)

	_, err = Parse("post", "  ", ContentKinds)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse("user", "abc", LikeKinds)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseKeyKeepsDashesInID(t *testing.T) {
	id := "0b6c5a8e-2f1d-4c7a-9d55-3a6a1f0e9b21"
	tg, err := ParseKey("review-" + id)
	require.NoError(t, err)
	assert.Equal(t, KindReview, tg.Kind)
	assert.Equal(t, id, tg.ID)

	for _, bad := range []string{"", "post", "post-", "nope-123"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}
