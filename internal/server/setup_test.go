package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Correct-Horse-42"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:    "test_secret",
		Env:          "test",
		MediaRoot:    t.TempDir(),
		FeatureFlags: "index_cache=on,post_images=on",
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	app, err := srv.NewApp()
	require.NoError(t, err)

	return &testEnv{srv: srv, app: app, db: db, mr: mr}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// setupMockDB creates a GORM *gorm.DB backed by sqlmock with ping monitoring.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

func (e *testEnv) createUser(t *testing.T, username string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Username: username, Password: string(hash)}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) createGroup(t *testing.T, slug string) models.Group {
	t.Helper()
	g := models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, e.db.Create(&g).Error)
	return g
}

// createPosts inserts n posts by author one second apart, oldest first.
func (e *testEnv) createPosts(t *testing.T, author models.User, group *models.Group, n int) []models.Post {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		p := models.Post{
			Text:      fmt.Sprintf("post %d by %s", i, author.Username),
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if group != nil {
			p.GroupID = &group.ID
		}
		require.NoError(t, e.db.Omit("Author", "Group").Create(&p).Error)
		posts = append(posts, p)
	}
	return posts
}

func (e *testEnv) sessionCookie(t *testing.T, user models.User) *http.Cookie {
	t.Helper()
	token, _, err := e.srv.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

type requestOpt func(*http.Request)

func withCookie(c *http.Cookie) requestOpt {
	return func(r *http.Request) {
		if c != nil {
			r.AddCookie(c)
		}
	}
}

func acceptJSON(r *http.Request) {
	r.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
}

func (e *testEnv) get(t *testing.T, target string, opts ...requestOpt) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.do(t, req, opts...)
}

func (e *testEnv) postForm(t *testing.T, target string, form url.Values, opts ...requestOpt) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return e.do(t, req, opts...)
}

func (e *testEnv) do(t *testing.T, req *http.Request, opts ...requestOpt) *http.Response {
	t.Helper()
	for _, opt := range opts {
		opt(req)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func countPostCards(body string) int {
	return strings.Count(body, `<article class="post">`)
}
