package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	onWrite  func(ctx context.Context)
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository, onWrite func(ctx context.Context)) *LikeService {
	if onWrite == nil {
		onWrite = func(context.Context) {}
	}
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo, onWrite: onWrite}
}

// Toggle flips userID's like on postID and returns the new state. The first
// toggle on a post always likes it.
func (s *LikeService) Toggle(ctx context.Context, userID, postID uint) (bool, error) {
	if userID == 0 {
		return false, models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return false, err
	}
	liked, err := s.likeRepo.Toggle(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	observability.LikeToggles.WithLabelValues(observability.LikeState(liked)).Inc()
	s.onWrite(ctx)
	return liked, nil
}
