package service

import (
	"context"
	"strings"
	"testing"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	comments := &commentRepoStub{}
	writes := 0
	svc := NewCommentService(comments, noopPostRepo(), func(context.Context) { writes++ })

	c, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 2, PostID: 7, Text: " nice "})
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Text)
	assert.Equal(t, uint(2), c.AuthorID)
	assert.Equal(t, uint(7), c.PostID)
	assert.Equal(t, 1, writes)

	list, err := svc.ListComments(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateCommentRejects(t *testing.T) {
	comments := &commentRepoStub{}
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		if id == 404 {
			return nil, models.NewNotFoundError("post", id)
		}
		return &models.Post{ID: id}, nil
	}
	writes := 0
	svc := NewCommentService(comments, posts, func(context.Context) { writes++ })
	ctx := context.Background()

	_, err := svc.CreateComment(ctx, CreateCommentInput{PostID: 1, Text: "guest"})
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	_, err = svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 404, Text: "hi"})
	assert.True(t, models.IsNotFound(err))

	_, err = svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Text: "  "})
	assert.True(t, assertValidationField(err, "text"))

	_, err = svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Text: strings.Repeat("x", 10001)})
	assert.True(t, assertValidationField(err, "text"))

	assert.Empty(t, comments.created)
	assert.Zero(t, writes)
}
