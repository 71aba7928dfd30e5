package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	onWrite     func(ctx context.Context)
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	onWrite func(ctx context.Context),
) *CommentService {
	if onWrite == nil {
		onWrite = func(context.Context) {}
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		onWrite:     onWrite,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}

	text, err := validation.ValidateText(in.Text, validation.MaxCommentTextLength)
	if err != nil {
		return nil, models.NewFieldError("text", err.Error())
	}

	comment := &models.Comment{
		Text:     text,
		AuthorID: in.UserID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.Inc()
	s.onWrite(ctx)
	return comment, nil
}

// ListComments returns the comments on postID, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}
