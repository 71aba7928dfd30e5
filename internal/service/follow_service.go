package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

// FollowService manages subscriptions between users. Both operations are
// idempotent and report whether the stored relation changed.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow subscribes userID to the author named username. Following yourself
// is silently ignored.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) (bool, error) {
	author, err := s.resolve(ctx, userID, username)
	if err != nil {
		return false, err
	}
	if author.ID == userID {
		return false, nil
	}
	created, err := s.followRepo.Follow(ctx, userID, author.ID)
	if err != nil {
		return false, err
	}
	if created {
		observability.FollowChanges.WithLabelValues("follow").Inc()
	}
	return created, nil
}

// Unfollow removes the subscription if there is one.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) (bool, error) {
	author, err := s.resolve(ctx, userID, username)
	if err != nil {
		return false, err
	}
	removed, err := s.followRepo.Unfollow(ctx, userID, author.ID)
	if err != nil {
		return false, err
	}
	if removed {
		observability.FollowChanges.WithLabelValues("unfollow").Inc()
	}
	return removed, nil
}

func (s *FollowService) resolve(ctx context.Context, userID uint, username string) (*models.User, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.userRepo.GetByUsername(ctx, username)
}
