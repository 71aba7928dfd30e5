// Package service holds the business rules between the HTTP handlers and the
// repositories.
package service

import (
	"context"
	"time"

	"yatube/internal/cache"
	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/pagination"
	"yatube/internal/repository"
)

// PostPage is one page of a post listing.
type PostPage = pagination.Page[models.Post]

// GroupFeed is a group together with one page of its posts.
type GroupFeed struct {
	Group *models.Group
	Page  PostPage
}

// ProfileFeed is an author together with one page of their posts and the
// viewer's relation to them.
type ProfileFeed struct {
	Author    *models.User
	Page      PostPage
	Following bool
	IsSelf    bool
	Followers int64
	Follows   int64
}

// FeedService selects and paginates the four post listings.
type FeedService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	store      *cache.Store
	flags      *featureflags.Manager
	paginator  pagination.Paginator
	indexTTL   time.Duration
}

func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	store *cache.Store,
	flags *featureflags.Manager,
	indexTTL time.Duration,
) *FeedService {
	if indexTTL <= 0 {
		indexTTL = cache.IndexPageTTL
	}
	return &FeedService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		store:      store,
		flags:      flags,
		paginator:  pagination.New(pagination.PostsPerPage),
		indexTTL:   indexTTL,
	}
}

// Index returns a page of every post. Anonymous pages are served through
// the index page cache when it is enabled; pages rendered for a signed-in
// viewer carry their like state and are never cached.
func (s *FeedService) Index(ctx context.Context, viewerID uint, rawPage string) (PostPage, error) {
	total, err := s.postRepo.CountAll(ctx)
	if err != nil {
		return PostPage{}, err
	}
	meta := s.paginator.Page(total, rawPage)

	fetch := func() ([]models.Post, error) {
		return s.postRepo.ListAll(ctx, viewerID, meta.Limit(), meta.Offset())
	}
	if viewerID != 0 || !s.indexCacheEnabled() {
		posts, err := fetch()
		if err != nil {
			return PostPage{}, err
		}
		return pagination.NewPage(posts, meta), nil
	}

	version, err := s.store.IndexVersion(ctx)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "index cache version lookup failed", "error", err)
		posts, err := fetch()
		if err != nil {
			return PostPage{}, err
		}
		return pagination.NewPage(posts, meta), nil
	}

	var posts []models.Post
	hit, err := s.store.Aside(ctx, cache.IndexPageKey(version, meta.Number), &posts, s.indexTTL, func() error {
		var fetchErr error
		posts, fetchErr = fetch()
		return fetchErr
	})
	if err != nil {
		return PostPage{}, err
	}
	if hit {
		observability.FeedCacheLookups.WithLabelValues("hit").Inc()
	} else {
		observability.FeedCacheLookups.WithLabelValues("miss").Inc()
	}
	return pagination.NewPage(posts, meta), nil
}

// InvalidateIndex drops every cached index page.
func (s *FeedService) InvalidateIndex(ctx context.Context) {
	if err := s.store.InvalidateIndex(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "index cache invalidation failed", "error", err)
	}
}

func (s *FeedService) indexCacheEnabled() bool {
	return s.store.Enabled() && s.flags.Enabled(featureflags.IndexCache, 0)
}

// Group returns a page of the posts filed under the group with slug.
func (s *FeedService) Group(ctx context.Context, slug string, viewerID uint, rawPage string) (*GroupFeed, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	meta := s.paginator.Page(total, rawPage)
	posts, err := s.postRepo.ListByGroup(ctx, group.ID, viewerID, meta.Limit(), meta.Offset())
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Page: pagination.NewPage(posts, meta)}, nil
}

// Profile returns a page of the posts written by username. Following is
// false for anonymous viewers and for authors viewing themselves.
func (s *FeedService) Profile(ctx context.Context, username string, viewerID uint, rawPage string) (*ProfileFeed, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	meta := s.paginator.Page(total, rawPage)
	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, viewerID, meta.Limit(), meta.Offset())
	if err != nil {
		return nil, err
	}

	feed := &ProfileFeed{
		Author: author,
		Page:   pagination.NewPage(posts, meta),
		IsSelf: viewerID != 0 && viewerID == author.ID,
	}
	if viewerID != 0 && !feed.IsSelf {
		if feed.Following, err = s.followRepo.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	if feed.Followers, err = s.followRepo.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if feed.Follows, err = s.followRepo.CountFollowing(ctx, author.ID); err != nil {
		return nil, err
	}
	return feed, nil
}

// Follow returns a page of posts by the authors userID follows.
func (s *FeedService) Follow(ctx context.Context, userID uint, rawPage string) (PostPage, error) {
	if userID == 0 {
		return PostPage{}, models.NewUnauthorizedError("Authentication required")
	}
	total, err := s.postRepo.CountForFollowedAuthors(ctx, userID)
	if err != nil {
		return PostPage{}, err
	}
	meta := s.paginator.Page(total, rawPage)
	posts, err := s.postRepo.ListForFollowedAuthors(ctx, userID, meta.Limit(), meta.Offset())
	if err != nil {
		return PostPage{}, err
	}
	return pagination.NewPage(posts, meta), nil
}
