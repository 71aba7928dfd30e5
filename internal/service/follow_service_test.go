package service

import (
	"context"
	"testing"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowFixture() (*FollowService, *followRepoStub) {
	users := newUserRepoStub(
		models.User{ID: 1, Username: "leo"},
		models.User{ID: 2, Username: "ann"},
	)
	follows := newFollowRepoStub()
	return NewFollowService(follows, users), follows
}

func TestFollowIsIdempotent(t *testing.T) {
	svc, follows := newFollowFixture()
	ctx := context.Background()

	created, err := svc.Follow(ctx, 2, "leo")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Follow(ctx, 2, "leo")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, follows.pairs, 1)
}

func TestFollowSelfIsIgnored(t *testing.T) {
	svc, follows := newFollowFixture()

	created, err := svc.Follow(context.Background(), 1, "leo")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, follows.pairs)
}

func TestUnfollow(t *testing.T) {
	svc, follows := newFollowFixture()
	ctx := context.Background()

	removed, err := svc.Unfollow(ctx, 2, "leo")
	require.NoError(t, err)
	assert.False(t, removed, "unfollowing a non-followed author is a no-op")

	_, err = svc.Follow(ctx, 2, "leo")
	require.NoError(t, err)
	removed, err = svc.Unfollow(ctx, 2, "leo")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, follows.pairs)
}

func TestFollowErrors(t *testing.T) {
	svc, _ := newFollowFixture()
	ctx := context.Background()

	_, err := svc.Follow(ctx, 2, "ghost")
	assert.True(t, models.IsNotFound(err))

	_, err = svc.Unfollow(ctx, 0, "leo")
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
}
