package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCreatesOnce(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewUserService(db, services.NewSocialService(db), nil)

	u, err := svc.Sync(ctx, services.Identity{ExternalID: "user_1", Handle: "Speed Runner", DisplayName: "Speedy"})
	require.NoError(t, err)
	assert.Equal(t, "speed-runner", u.Handle)
	assert.Equal(t, "Speedy", u.DisplayName)

	again, err := svc.Sync(ctx, services.Identity{ExternalID: "user_1", Handle: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "speed-runner", again.Handle)

	other, err := svc.Sync(ctx, services.Identity{ExternalID: "user_2", Handle: "speed-runner"})
	require.NoError(t, err)
	assert.NotEqual(t, u.Handle, other.Handle)
	assert.True(t, strings.HasPrefix(other.Handle, "speed-runner-"))
	assert.Equal(t, other.Handle, other.DisplayName)

	_, err = svc.Sync(ctx, services.Identity{})
	assert.ErrorIs(t, err, services.ErrValidation)

	found, err := svc.ByExternalID(ctx, "user_2")
	require.NoError(t, err)
	assert.Equal(t, other.ID, found.ID)

	_, err = svc.ByExternalID(ctx, "nobody")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProfileByHandle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	social := services.NewSocialService(db)
	svc := services.NewUserService(db, social, nil)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	require.NoError(t, social.Follow(ctx, bob.ID, alice.ID))

	p, err := svc.ByHandle(ctx, "Alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, p.ID)
	assert.Equal(t, int64(1), p.Followers)
	assert.True(t, p.IsFollowing)

	p, err = svc.ByHandle(ctx, "alice", "")
	require.NoError(t, err)
	assert.False(t, p.IsFollowing)

	_, err = svc.ByHandle(ctx, "nobody", "")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateProfileRemovesReplacedFiles(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	files := &recordingRemover{}
	svc := services.NewUserService(db, services.NewSocialService(db), files)
	alice := testutil.CreateUser(t, db, "alice")

	_, err := svc.UpdateProfile(ctx, alice.ID, &dto.UpdateProfileRequest{AvatarURL: strPtr("https://utfs.io/f/a1")})
	require.NoError(t, err)
	assert.Empty(t, files.urls)

	u, err := svc.UpdateProfile(ctx, alice.ID, &dto.UpdateProfileRequest{
		AvatarURL:   strPtr("https://utfs.io/f/a2"),
		DisplayName: strPtr("  Alice  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Equal(t, "https://utfs.io/f/a2", u.AvatarURL)
	assert.Equal(t, []string{"https://utfs.io/f/a1"}, files.urls)

	_, err = svc.UpdateProfile(ctx, alice.ID, &dto.UpdateProfileRequest{DisplayName: strPtr(" ")})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.UpdateProfile(ctx, "missing", &dto.UpdateProfileRequest{})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
