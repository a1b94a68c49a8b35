package services_test

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewSocialService(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "hello", testutil.At(0))
	testutil.CreateLike(t, db, alice.ID, string(target.KindPost), post.ID)

	res, err := svc.ToggleLike(ctx, bob.ID, "post", post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 2, res.LikeCount)

	res, err = svc.ToggleLike(ctx, bob.ID, "post", post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 1, res.LikeCount)

	_, err = svc.ToggleLike(ctx, bob.ID, "post", "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.ToggleLike(ctx, bob.ID, "user", alice.ID)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestToggleLikeOnComment(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewSocialService(db)

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice.ID, "hello", testutil.At(0))
	c := testutil.CreateComment(t, db, alice.ID, "post", post.ID, nil, testutil.At(1))

	res, err := svc.ToggleLike(ctx, alice.ID, "comment", c.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikeCount)
}

func TestFollow(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewSocialService(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, alice.ID), services.ErrConflict)
	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, "ghost"), services.ErrNotFound)

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	assert.Equal(t, int64(1), count(t, db, &models.Follow{}))

	following, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	counts, err := svc.FollowCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Followers)
	assert.Equal(t, int64(0), counts.Following)

	followers, err := svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)

	follows, err := svc.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, follows, 1)
	assert.Equal(t, bob.ID, follows[0].ID)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	following, err = svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestCommentThreads(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewSocialService(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "hello", testutil.At(0))
	other := testutil.CreatePost(t, db, alice.ID, "other", testutil.At(1))

	top, err := svc.CreateComment(ctx, bob.ID, &dto.CreateCommentRequest{
		TargetType: "post", TargetID: post.ID, Content: "  nice  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "nice", top.Content)

	reply, err := svc.CreateComment(ctx, alice.ID, &dto.CreateCommentRequest{
		TargetType: "post", TargetID: post.ID, ParentID: &top.ID, Content: "thanks",
	})
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, bob.ID, &dto.CreateCommentRequest{
		TargetType: "post", TargetID: post.ID, ParentID: &reply.ID, Content: "nested",
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.CreateComment(ctx, bob.ID, &dto.CreateCommentRequest{
		TargetType: "post", TargetID: other.ID, ParentID: &top.ID, Content: "wrong thread",
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.CreateComment(ctx, bob.ID, &dto.CreateCommentRequest{
		TargetType: "post", TargetID: post.ID, Content: " ",
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	testutil.CreateLike(t, db, alice.ID, "comment", top.ID)

	threads, err := svc.Comments(ctx, target.New(target.KindPost, post.ID), alice.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, top.ID, threads[0].ID)
	assert.Equal(t, 1, threads[0].LikeCount)
	assert.True(t, threads[0].HasLiked)
	require.NotNil(t, threads[0].Author)
	assert.Equal(t, "bob", threads[0].Author.Handle)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, reply.ID, threads[0].Replies[0].ID)
}

func TestDeleteComment(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewSocialService(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "hello", testutil.At(0))
	top := testutil.CreateComment(t, db, bob.ID, "post", post.ID, nil, testutil.At(1))
	reply := testutil.CreateComment(t, db, alice.ID, "post", post.ID, &top.ID, testutil.At(2))
	testutil.CreateLike(t, db, alice.ID, "comment", reply.ID)

	err := svc.DeleteComment(ctx, alice.ID, false, top.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = svc.UpdateComment(ctx, alice.ID, top.ID, "hijack")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	updated, err := svc.UpdateComment(ctx, bob.ID, top.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, svc.DeleteComment(ctx, alice.ID, true, top.ID))
	assert.Equal(t, int64(0), count(t, db, &models.Comment{}))
	assert.Equal(t, int64(0), count(t, db, &models.Like{}))
}

func TestDraftsHiddenFromOtherUsers(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	social := services.NewSocialService(db)
	moderation := services.NewModerationService(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	game := testutil.CreateGame(t, db, "Hades")
	draft := testutil.CreateReview(t, db, alice.ID, game.ID, 5, false, testutil.At(0))
	note := testutil.CreateComment(t, db, alice.ID, "review", draft.ID, nil, testutil.At(1))
	draftTarget := target.New(target.KindReview, draft.ID)

	_, err := social.CreateComment(ctx, bob.ID, &dto.CreateCommentRequest{
		TargetType: "review", TargetID: draft.ID, Content: "first",
	})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = social.ToggleLike(ctx, bob.ID, "review", draft.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = social.ToggleLike(ctx, bob.ID, "comment", note.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = social.Comments(ctx, draftTarget, bob.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = social.Comments(ctx, draftTarget, "")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = moderation.CreateReport(ctx, bob.ID, &dto.CreateReportRequest{
		TargetType: "review", TargetID: draft.ID, Message: "spoilers",
	})
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.Equal(t, int64(0), count(t, db, &models.Like{}))
	assert.Equal(t, int64(0), count(t, db, &models.Report{}))

	// The author still works with their own draft.
	res, err := social.ToggleLike(ctx, alice.ID, "comment", note.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	threads, err := social.Comments(ctx, draftTarget, alice.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, note.ID, threads[0].ID)
}
