// Package server contains the HTTP handlers and page rendering for the site.
package server

import (
	"context"
	"fmt"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/repository"
	"yatube/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          *cache.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository

	feedService    *service.FeedService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	likeService    *service.LikeService
	userService    *service.UserService
	imageService   *service.ImageService
}

// NewServer connects to the database and Redis and wires every service.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, rate limiting and session revocation are
// then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          cache.NewStore(redisClient),
		promMiddleware: middleware.InitMetrics("yatube"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
		groupRepo:      groupRepo,
	}

	indexTTL := time.Duration(cfg.IndexCacheSeconds) * time.Second
	s.feedService = service.NewFeedService(postRepo, groupRepo, userRepo, followRepo, s.store, s.featureFlags, indexTTL)
	s.imageService = service.NewImageService(cfg)
	s.postService = service.NewPostService(postRepo, groupRepo, s.imageService, s.featureFlags, s.feedService.InvalidateIndex)
	s.commentService = service.NewCommentService(commentRepo, postRepo, s.feedService.InvalidateIndex)
	s.followService = service.NewFollowService(followRepo, userRepo)
	s.likeService = service.NewLikeService(likeRepo, postRepo, s.feedService.InvalidateIndex)
	s.userService = service.NewUserService(userRepo)

	return s, nil
}

// NewApp builds the fiber application with views, middleware and routes.
func (s *Server) NewApp() (*fiber.App, error) {
	engine, err := newViewEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "Yatube",
		Views:        engine,
		ErrorHandler: s.errorHandler,
		BodyLimit:    (s.imageUploadLimitMB() + 1) * 1024 * 1024,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app, nil
}

func (s *Server) imageUploadLimitMB() int {
	if s.config.ImageMaxUploadSizeMB > 0 {
		return s.config.ImageMaxUploadSizeMB
	}
	return service.DefaultImageMaxUploadSizeMB
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))

	app.Use(middleware.StructuredLogger())

	app.Use(middleware.ErrorResponder())

	if s.config.AllowedOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.AllowedOrigins,
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: true,
			MaxAge:           86400,
		}))
	}

	if s.config.IsProduction() {
		app.Use(limiter.New(limiter.Config{
			Max:        300,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
			},
		}))
	}

	// Identity is optional on every page; LoginRequired enforces it per route.
	app.Use(s.Authenticate())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/media", s.imageService.MediaRoot(), fiber.Static{
		MaxAge: 3600,
	})

	auth := app.Group("/auth")
	auth.Get("/signup/", s.SignupForm)
	auth.Post("/signup/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Get("/login/", s.LoginForm)
	auth.Post("/login/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/logout/", s.Logout)
	auth.Post("/logout/", s.Logout)

	app.Get("/", s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Get("/follow/", s.LoginRequired(), s.FollowIndex)

	// Specific /profile/:username/:action routes before the profile page.
	app.Get("/profile/:username/follow/", s.LoginRequired(), s.ProfileFollow)
	app.Get("/profile/:username/unfollow/", s.LoginRequired(), s.ProfileUnfollow)
	app.Get("/profile/:username/", s.Profile)

	app.Get("/create/", s.LoginRequired(), s.PostCreateForm)
	app.Post("/create/", s.LoginRequired(),
		middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.PostCreate)

	posts := app.Group("/posts/:id")
	posts.Get("/edit/", s.LoginRequired(), s.PostEditForm)
	posts.Post("/edit/", s.LoginRequired(), s.PostEdit)
	posts.Get("/comment/", s.LoginRequired(), s.redirectToPost)
	posts.Post("/comment/", s.LoginRequired(),
		middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.AddComment)
	posts.Post("/like/", s.LoginRequired(), s.LikePost)
	posts.Get("/", s.PostDetail)
	posts.Post("/", s.LoginRequired(),
		middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.PostDetailComment)

	app.Use(s.NotFound)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports 503 when the database is unreachable. Redis is
// optional: a configured but unreachable Redis also fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app, err := s.NewApp()
	if err != nil {
		return err
	}
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
