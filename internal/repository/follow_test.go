package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	reader := createUser(t, db, "reader")
	author := createUser(t, db, "author")

	created, err := repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, created, "second follow must not insert")

	following, err := repo.IsFollowing(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	reverse, err := repo.IsFollowing(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, reverse, "follows are directed")

	followers, err := repo.CountFollowers(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	followingCount, err := repo.CountFollowing(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followingCount)
}

func TestFollowRepository_Unfollow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	reader := createUser(t, db, "reader")
	author := createUser(t, db, "author")

	removed, err := repo.Unfollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, removed, "unfollowing a stranger is a no-op")

	_, err = repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)

	removed, err = repo.Unfollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	following, err := repo.IsFollowing(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowRepository_SelfFollowRejectedByStorage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	u := createUser(t, db, "narcissus")

	_, err := repo.Follow(context.Background(), u.ID, u.ID)
	assert.Error(t, err)
}
