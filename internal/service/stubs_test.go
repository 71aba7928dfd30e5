package service

import (
	"context"

	"yatube/internal/models"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	updateFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint, uint) (*models.Post, error)
	countAllFn    func(context.Context) (int64, error)
	listAllFn     func(context.Context, uint, int, int) ([]models.Post, error)
	countAuthorFn func(context.Context, uint) (int64, error)
	listAuthorFn  func(context.Context, uint, uint, int, int) ([]models.Post, error)
	countGroupFn  func(context.Context, uint) (int64, error)
	listGroupFn   func(context.Context, uint, uint, int, int) ([]models.Post, error)
	countFollowFn func(context.Context, uint) (int64, error)
	listFollowFn  func(context.Context, uint, int, int) ([]models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) CountAll(ctx context.Context) (int64, error) {
	return s.countAllFn(ctx)
}
func (s *postRepoStub) ListAll(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error) {
	return s.listAllFn(ctx, viewerID, limit, offset)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countAuthorFn(ctx, authorID)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID, viewerID uint, limit, offset int) ([]models.Post, error) {
	return s.listAuthorFn(ctx, authorID, viewerID, limit, offset)
}
func (s *postRepoStub) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	return s.countGroupFn(ctx, groupID)
}
func (s *postRepoStub) ListByGroup(ctx context.Context, groupID, viewerID uint, limit, offset int) ([]models.Post, error) {
	return s.listGroupFn(ctx, groupID, viewerID, limit, offset)
}
func (s *postRepoStub) CountForFollowedAuthors(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowFn(ctx, userID)
}
func (s *postRepoStub) ListForFollowedAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.listFollowFn(ctx, userID, limit, offset)
}

func noopPostRepo() *postRepoStub {
	empty := func(context.Context, uint) (int64, error) { return 0, nil }
	return &postRepoStub{
		createFn:      func(_ context.Context, _ *models.Post) error { return nil },
		updateFn:      func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:     func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		countAllFn:    func(context.Context) (int64, error) { return 0, nil },
		listAllFn:     func(_ context.Context, _ uint, _, _ int) ([]models.Post, error) { return nil, nil },
		countAuthorFn: empty,
		listAuthorFn:  func(_ context.Context, _, _ uint, _, _ int) ([]models.Post, error) { return nil, nil },
		countGroupFn:  empty,
		listGroupFn:   func(_ context.Context, _, _ uint, _, _ int) ([]models.Post, error) { return nil, nil },
		countFollowFn: empty,
		listFollowFn:  func(_ context.Context, _ uint, _, _ int) ([]models.Post, error) { return nil, nil },
	}
}

// groupRepoStub is a map-backed repository.GroupRepository.
type groupRepoStub struct {
	groups map[uint]*models.Group
}

func newGroupRepoStub(groups ...models.Group) *groupRepoStub {
	s := &groupRepoStub{groups: make(map[uint]*models.Group)}
	for i := range groups {
		s.groups[groups[i].ID] = &groups[i]
	}
	return s
}

func (s *groupRepoStub) GetByID(_ context.Context, id uint) (*models.Group, error) {
	if g, ok := s.groups[id]; ok {
		return g, nil
	}
	return nil, models.NewNotFoundError("group", id)
}
func (s *groupRepoStub) GetBySlug(_ context.Context, slug string) (*models.Group, error) {
	for _, g := range s.groups {
		if g.Slug == slug {
			return g, nil
		}
	}
	return nil, models.NewNotFoundError("group", slug)
}
func (s *groupRepoStub) List(_ context.Context) ([]models.Group, error) {
	out := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, *g)
	}
	return out, nil
}
func (s *groupRepoStub) Upsert(_ context.Context, groups []models.Group) error {
	for i := range groups {
		s.groups[groups[i].ID] = &groups[i]
	}
	return nil
}

// userRepoStub is a map-backed repository.UserRepository.
type userRepoStub struct {
	users  map[uint]*models.User
	nextID uint
}

func newUserRepoStub(users ...models.User) *userRepoStub {
	s := &userRepoStub{users: make(map[uint]*models.User), nextID: 100}
	for i := range users {
		s.users[users[i].ID] = &users[i]
	}
	return s
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("user", id)
}
func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("user", username)
}
func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return models.NewFieldError("username", "A user with that username already exists.")
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user
	return nil
}

// followRepoStub is a set-backed repository.FollowRepository.
type followRepoStub struct {
	pairs map[[2]uint]bool
}

func newFollowRepoStub() *followRepoStub {
	return &followRepoStub{pairs: make(map[[2]uint]bool)}
}

func (s *followRepoStub) Follow(_ context.Context, userID, authorID uint) (bool, error) {
	key := [2]uint{userID, authorID}
	if s.pairs[key] {
		return false, nil
	}
	s.pairs[key] = true
	return true, nil
}
func (s *followRepoStub) Unfollow(_ context.Context, userID, authorID uint) (bool, error) {
	key := [2]uint{userID, authorID}
	if !s.pairs[key] {
		return false, nil
	}
	delete(s.pairs, key)
	return true, nil
}
func (s *followRepoStub) IsFollowing(_ context.Context, userID, authorID uint) (bool, error) {
	return s.pairs[[2]uint{userID, authorID}], nil
}
func (s *followRepoStub) CountFollowers(_ context.Context, authorID uint) (int64, error) {
	var n int64
	for k := range s.pairs {
		if k[1] == authorID {
			n++
		}
	}
	return n, nil
}
func (s *followRepoStub) CountFollowing(_ context.Context, userID uint) (int64, error) {
	var n int64
	for k := range s.pairs {
		if k[0] == userID {
			n++
		}
	}
	return n, nil
}

// likeRepoStub keeps the like state per (user, post) pair.
type likeRepoStub struct {
	state map[[2]uint]bool
}

func newLikeRepoStub() *likeRepoStub {
	return &likeRepoStub{state: make(map[[2]uint]bool)}
}

func (s *likeRepoStub) Toggle(_ context.Context, userID, postID uint) (bool, error) {
	key := [2]uint{userID, postID}
	liked, seen := s.state[key]
	s.state[key] = !seen || !liked
	return s.state[key], nil
}
func (s *likeRepoStub) IsLiked(_ context.Context, userID, postID uint) (bool, error) {
	return s.state[[2]uint{userID, postID}], nil
}
func (s *likeRepoStub) CountLikes(_ context.Context, postID uint) (int64, error) {
	var n int64
	for k, v := range s.state {
		if k[1] == postID && v {
			n++
		}
	}
	return n, nil
}

// commentRepoStub records created comments.
type commentRepoStub struct {
	created []models.Comment
}

func (s *commentRepoStub) Create(_ context.Context, c *models.Comment) error {
	c.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *c)
	return nil
}
func (s *commentRepoStub) ListByPost(_ context.Context, postID uint) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range s.created {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func assertValidationField(err error, field string) bool {
	appErr, ok := err.(*models.AppError)
	if !ok || appErr.Code != models.CodeValidation {
		return false
	}
	_, has := appErr.Fields[field]
	return has
}
