package repository

import (
	"context"
	"time"

	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for like state.
type LikeRepository interface {
	// Toggle flips the like state of userID on postID, creating it as liked
	// on first use, and returns the resulting state.
	Toggle(ctx context.Context, userID, postID uint) (bool, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID, postID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The upsert takes the row lock, so concurrent toggles apply one after another.
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"is_liked":   gorm.Expr("NOT likes.is_liked"),
				"updated_at": time.Now(),
			}),
		}).Omit("User", "Post").Create(&models.Like{UserID: userID, PostID: postID, IsLiked: true}).Error
		if err != nil {
			return err
		}
		var states []bool
		if err := tx.Model(&models.Like{}).
			Where("user_id = ? AND post_id = ?", userID, postID).
			Pluck("is_liked", &states).Error; err != nil {
			return err
		}
		if len(states) == 0 {
			return gorm.ErrRecordNotFound
		}
		liked = states[0]
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return liked, nil
}

func (r *likeRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ? AND is_liked", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND is_liked", postID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
