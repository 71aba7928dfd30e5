// Package seed fills the database with groups and demo content for
// development. It is not used by the running server.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"yatube/internal/models"
	"yatube/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated user.
const DemoPassword = "password123"

// Options controls how much demo content is generated.
type Options struct {
	NumUsers int
	NumPosts int
	// FollowsPerUser is how many random authors each user follows.
	FollowsPerUser int
	// CommentsPerPost and LikesPerPost are upper bounds per post.
	CommentsPerPost int
	LikesPerPost    int
	// MaxDays spreads post dates over this many days back from now.
	MaxDays int
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Seed makes the generated content reproducible when non-zero.
	Seed int64
	// GroupsYAML replaces the built-in group fixture when set.
	GroupsYAML []byte
}

// Result summarizes what a Seeder run created.
type Result struct {
	Groups   int
	Users    int
	Posts    int
	Follows  int
	Comments int
	Likes    int
}

func (r Result) String() string {
	return fmt.Sprintf("groups=%d users=%d posts=%d follows=%d comments=%d likes=%d",
		r.Groups, r.Users, r.Posts, r.Follows, r.Comments, r.Likes)
}

// Seeder writes demo data through the repositories.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	fake *gofakeit.Faker

	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		db:       db,
		opts:     opts,
		rng:      rand.New(rand.NewSource(seed)),
		fake:     gofakeit.New(seed),
		users:    repository.NewUserRepository(db),
		groups:   repository.NewGroupRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		likes:    repository.NewLikeRepository(db),
	}
}

// ClearAll deletes all content, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.Follow{},
		&models.Post{}, &models.Group{}, &models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	log.Println("database cleared")
	return nil
}

// Run seeds the built-in groups, then users, posts, follows, comments and likes.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	groups, err := Groups(ctx, s.groups, s.opts.GroupsYAML)
	if err != nil {
		return res, err
	}
	res.Groups = len(groups)

	users, err := s.seedUsers(ctx)
	if err != nil {
		return res, err
	}
	res.Users = len(users)
	if len(users) == 0 {
		return res, nil
	}

	posts, err := s.seedPosts(ctx, users, groups)
	if err != nil {
		return res, err
	}
	res.Posts = len(posts)

	if res.Follows, err = s.seedFollows(ctx, users); err != nil {
		return res, err
	}
	if res.Comments, err = s.seedComments(ctx, users, posts); err != nil {
		return res, err
	}
	if res.Likes, err = s.seedLikes(ctx, users, posts); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	users := make([]models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u := models.User{
			// The suffix keeps usernames unique across runs and within one.
			Username:  s.fake.Username() + strconv.Itoa(s.rng.Intn(900)+100) + strconv.Itoa(i),
			Email:     s.fake.Email(),
			FirstName: s.fake.FirstName(),
			LastName:  s.fake.LastName(),
			Password:  string(hash),
		}
		if len(u.Username) > 150 {
			u.Username = u.Username[len(u.Username)-150:]
		}
		if err := s.users.Create(ctx, &u); err != nil {
			if models.ErrorCode(err) == models.CodeValidation {
				continue
			}
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []models.User, groups []models.Group) ([]models.Post, error) {
	posts := make([]models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		p := models.Post{
			Text:      s.fake.Paragraph(1, s.rng.Intn(3)+1, 12, "\n"),
			AuthorID:  author.ID,
			CreatedAt: s.randomTime(),
		}
		// Roughly a third of posts stay outside any group.
		if len(groups) > 0 && s.rng.Intn(3) != 0 {
			g := groups[s.rng.Intn(len(groups))]
			p.GroupID = &g.ID
		}
		if err := s.posts.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	created := 0
	for _, u := range users {
		for j := 0; j < s.opts.FollowsPerUser; j++ {
			author := users[s.rng.Intn(len(users))]
			if author.ID == u.ID {
				continue
			}
			ok, err := s.follows.Follow(ctx, u.ID, author.ID)
			if err != nil {
				return created, fmt.Errorf("create follow: %w", err)
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []models.User, posts []models.Post) (int, error) {
	if s.opts.CommentsPerPost <= 0 {
		return 0, nil
	}
	created := 0
	for _, p := range posts {
		n := s.rng.Intn(s.opts.CommentsPerPost + 1)
		for j := 0; j < n; j++ {
			c := models.Comment{
				Text:     s.fake.Sentence(s.rng.Intn(12) + 3),
				AuthorID: users[s.rng.Intn(len(users))].ID,
				PostID:   p.ID,
			}
			if err := s.comments.Create(ctx, &c); err != nil {
				return created, fmt.Errorf("create comment: %w", err)
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) seedLikes(ctx context.Context, users []models.User, posts []models.Post) (int, error) {
	if s.opts.LikesPerPost <= 0 {
		return 0, nil
	}
	liked := 0
	for _, p := range posts {
		n := s.rng.Intn(s.opts.LikesPerPost + 1)
		if n > len(users) {
			n = len(users)
		}
		for _, idx := range s.rng.Perm(len(users))[:n] {
			on, err := s.likes.Toggle(ctx, users[idx].ID, p.ID)
			if err != nil {
				return liked, fmt.Errorf("toggle like: %w", err)
			}
			if on {
				liked++
			}
		}
	}
	return liked, nil
}

func (s *Seeder) randomTime() time.Time {
	back := time.Duration(s.rng.Int63n(int64(s.opts.MaxDays) * int64(24*time.Hour)))
	return time.Now().Add(-back)
}
