// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"porchlight/internal/cache"
	"porchlight/internal/config"
	"porchlight/internal/content"
	"porchlight/internal/database"
	"porchlight/internal/middleware"
	"porchlight/internal/models"
	"porchlight/internal/repository"
	"porchlight/internal/service"

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

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	commentService  *service.CommentService
	reactionService *service.ReactionService
	presenceService *service.PresenceService
	library         *content.Library
}

// NewServer creates a server instance, connecting to the database and
// Redis and loading the content library from disk.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	library, err := content.Load(cfg.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("content library load failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), library), nil
}

// NewServerWithDeps creates a Server using already-initialized
// dependencies. Use this in tests or when a bootstrap layer establishes
// DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, library *content.Library) *Server {
	middleware.InitMiddleware(cfg)

	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)

	return &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("porchlight-api"),
		commentService:  service.NewCommentService(commentRepo),
		reactionService: service.NewReactionService(reactionRepo),
		presenceService: service.NewPresenceService(presenceRepo),
		library:         library,
	}
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	if s.config.TracingEnabled {
		app.Use(middleware.Tracing())
	}

	app.Use(helmet.New())

	// CORS before middlewares that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global per-IP limit. Endpoint-specific limits hang off individual
	// routes in SetupRoutes.
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
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	comments := api.Group("/comments")
	comments.Get("/recent", s.GetRecentComments)
	comments.Get("/global", s.GetGlobalComments)
	comments.Get("/counts", s.GetCommentCounts)
	comments.Get("/", s.GetComments)
	comments.Post("/", middleware.AuthRequired, middleware.RateLimit(
		s.redis, "create_comment", 10, time.Minute), s.CreateComment)
	// Specific /:id/:resource routes before the generic /:id route.
	comments.Get("/:id/replies", s.GetReplies)
	comments.Get("/:id/reactions", s.GetCommentReactions)
	comments.Post("/:id/reactions", middleware.AuthRequired, middleware.RateLimit(
		s.redis, "toggle_reaction", 60, time.Minute), s.ToggleReaction)
	comments.Delete("/:id", middleware.AuthRequired, s.DeleteComment)

	api.Get("/reactions", s.GetReactionsBatch)

	presence := api.Group("/presence")
	presence.Post("/heartbeat", s.Heartbeat)
	presence.Get("/stats", s.GetPresenceStats)

	api.Get("/posts", s.GetPosts)
	api.Get("/posts/:slug", s.GetPost)
	api.Get("/projects", s.GetProjects)
}

// HealthCheck reports the health of the server and its dependencies.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is an optional accelerator, so its absence degrades the
	// report without failing the probe.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the Fiber app and begins serving.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Porchlight API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	slog.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the server and closes its connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", "error", cerr)
		}
	}

	cache.Close()

	slog.Info("server shutdown complete")
	return nil
}
