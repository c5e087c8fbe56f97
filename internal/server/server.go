// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sankalpa/internal/cache"
	"sankalpa/internal/config"
	"sankalpa/internal/database"
	"sankalpa/internal/events"
	"sankalpa/internal/middleware"
	"sankalpa/internal/repository"
	"sankalpa/internal/service"
	"sankalpa/internal/streak"

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

type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	events         events.Publisher
	promMiddleware *fiberprometheus.FiberPrometheus

	streakService    *service.StreakService
	communityService *service.CommunityService
	feedService      *service.FeedService
	wellbeingService *service.WellbeingService
}

// NewServer connects to the configured database, Redis and broker and wires
// the services. A missing broker URL disables event publishing.
func NewServer(cfg *config.Config) (*Server, error) {
	table, err := streak.LoadTable(cfg.BadgeTablePath)
	if err != nil {
		return nil, fmt.Errorf("badge table: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("event broker: %w", err)
		}
		pub = amqpPub
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), pub, table)
}

// NewServerWithDeps wires the services over already opened dependencies.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, pub events.Publisher, table streak.Table) (*Server, error) {
	engine, err := streak.NewEngine(table)
	if err != nil {
		return nil, fmt.Errorf("badge table: %w", err)
	}
	if pub == nil {
		pub = events.Nop{}
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	journalRepo := repository.NewJournalRepository(db)

	return &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		events:           pub,
		promMiddleware:   middleware.InitMetrics("sankalpa-api"),
		streakService:    service.NewStreakService(userRepo, engine, pub),
		communityService: service.NewCommunityService(userRepo, postRepo, commentRepo, followRepo, pub),
		feedService: service.NewFeedService(postRepo, followRepo, service.FeedOptions{
			WindowDays: cfg.FeedWindowDays,
			Limit:      cfg.FeedLimit,
			CacheTTL:   time.Duration(cfg.FeedCacheTTLSeconds) * time.Second,
		}),
		wellbeingService: service.NewWellbeingService(userRepo, journalRepo, pub),
	}, nil
}

// App builds a Fiber app with the middleware chain and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Sankalpa API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Get("/badges", s.GetBadges)

	protected := api.Group("", middleware.AuthRequired(s.config.JWTSecret))

	streakRoutes := protected.Group("/streak")
	streakRoutes.Get("/", s.GetStreak)
	streakRoutes.Post("/relapse", s.ReportRelapse)
	streakRoutes.Post("/restart", s.RestartStreak)
	streakRoutes.Get("/relapses", s.GetRelapses)

	protected.Get("/feed", s.GetFeed)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id", s.GetPost)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/hero-award", s.GiveHeroAward)
	posts.Post("/:id/pin", s.PinPost)

	protected.Post("/users/:userId/follow", s.ToggleFollow)

	wellbeing := protected.Group("/wellbeing")
	wellbeing.Post("/check-in", s.CheckIn)
	wellbeing.Get("/gratitude", s.GetGratitude)
	wellbeing.Post("/gratitude", s.CreateGratitude)
	exerciseLimit := middleware.RateLimit(s.redis, 3, time.Hour, "coping_exercise")
	wellbeing.Post("/mental-workout", exerciseLimit, s.CompleteMentalWorkout)
	wellbeing.Post("/exercises/:kind", exerciseLimit, s.CompleteExercise)
}

func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	// Redis is a cache here; only the database decides readiness.
	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// Shutdown closes the event publisher, Redis and the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database: %w", err))
			}
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
