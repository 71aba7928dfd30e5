package repository

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts. Every listing is
// ordered newest first and comes in a Count/List pair so callers can clamp
// the requested page before fetching it.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error)

	CountAll(ctx context.Context) (int64, error)
	ListAll(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error)

	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListByAuthor(ctx context.Context, authorID, viewerID uint, limit, offset int) ([]models.Post, error)

	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	ListByGroup(ctx context.Context, groupID, viewerID uint, limit, offset int) ([]models.Post, error)

	CountForFollowedAuthors(ctx context.Context, userID uint) (int64, error)
	ListForFollowedAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

type postScope func(*gorm.DB) *gorm.DB

func allPosts(db *gorm.DB) *gorm.DB { return db }

func byAuthor(authorID uint) postScope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}
}

func byGroup(groupID uint) postScope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", groupID)
	}
}

func forFollowedAuthors(userID uint) postScope {
	return func(db *gorm.DB) *gorm.DB {
		followed := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", userID)
		return db.Where("posts.author_id IN (?)", followed)
	}
}

// withDetails selects the computed like/comment counters and the viewer's like state.
func withDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	const counters = "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id AND likes.is_liked) AS likes_count"

	if viewerID != 0 {
		return db.Select(counters+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ? AND likes.is_liked) AS liked", viewerID)
	}
	return db.Select(counters + ", false AS liked")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC").Order("posts.id DESC")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Update persists text, group and image. The author column is never written.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("text", "group_id", "image", "updated_at").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := withDetails(readDB(r.db).WithContext(ctx).Model(&models.Post{}), viewerID).
		Preload("Author").
		Preload("Group").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, wrapLookupError(err, "post", id)
	}
	return &post, nil
}

func (r *postRepository) count(ctx context.Context, op string, scope postScope) (int64, error) {
	defer observability.TrackQuery(op, "posts")()

	var total int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Scopes(scope).Count(&total).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *postRepository) list(ctx context.Context, op string, scope postScope, viewerID uint, limit, offset int) ([]models.Post, error) {
	ctx, span := observability.StartRepositorySpan(ctx, op, "posts")
	defer observability.TrackQuery(op, "posts")()

	var posts []models.Post
	err := withDetails(readDB(r.db).WithContext(ctx).Model(&models.Post{}), viewerID).
		Scopes(scope, newestFirst).
		Preload("Author").
		Preload("Group").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	observability.EndSpan(span, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, "count_all", allPosts)
}

func (r *postRepository) ListAll(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, "list_all", allPosts, viewerID, limit, offset)
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return r.count(ctx, "count_by_author", byAuthor(authorID))
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID, viewerID uint, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, "list_by_author", byAuthor(authorID), viewerID, limit, offset)
}

func (r *postRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	return r.count(ctx, "count_by_group", byGroup(groupID))
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID, viewerID uint, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, "list_by_group", byGroup(groupID), viewerID, limit, offset)
}

func (r *postRepository) CountForFollowedAuthors(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "count_followed", forFollowedAuthors(userID))
}

// ListForFollowedAuthors lists posts by authors userID follows; userID is also the viewer.
func (r *postRepository) ListForFollowedAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, "list_followed", forFollowedAuthors(userID), userID, limit, offset)
}
