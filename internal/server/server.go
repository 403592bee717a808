// Package server contains the Fiber application, middleware wiring, routes
// and HTTP handlers for the Gig Buddy API.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gigbuddy/internal/auth"
	"gigbuddy/internal/cache"
	"gigbuddy/internal/config"
	"gigbuddy/internal/database"
	"gigbuddy/internal/middleware"
	"gigbuddy/internal/models"
	"gigbuddy/internal/observability"
	"gigbuddy/internal/repository"
	"gigbuddy/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	tokens            *auth.TokenService
	userRepo          repository.UserRepository
	gigRepo           repository.GigRepository
	collectionRepo    repository.CollectionRepository
	userService       *service.UserService
	gigService        *service.GigService
	collectionService *service.CollectionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	gigRepo := repository.NewGigRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)

	// The default Prometheus registry rejects duplicate collectors, so the
	// metrics middleware is only wired once per process.
	var promMiddleware *fiberprometheus.FiberPrometheus
	if cfg.Env != "test" {
		promMiddleware = middleware.InitMetrics("gigbuddy-api")
	}

	server := &Server{
		config:            cfg,
		db:                db,
		redis:             redisClient,
		promMiddleware:    promMiddleware,
		tokens:            tokens,
		userRepo:          userRepo,
		gigRepo:           gigRepo,
		collectionRepo:    collectionRepo,
		userService:       service.NewUserService(userRepo),
		gigService:        service.NewGigService(gigRepo),
		collectionService: service.NewCollectionService(collectionRepo),
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Coarse global rate limit (per IP)
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
			return models.RespondWithError(c,
				models.NewRateLimitError("Too many requests, please try again later"))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Gig Buddy Metrics Dashboard",
	}))

	// Auth routes; login is throttled harder than registration.
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "login"), s.Login)

	// Auth is attached per route, not as a prefix-group middleware: a
	// use-middleware on /api would sit ahead of the public routes in the
	// stack and reject anonymous requests to them.
	gigs := api.Group("/gigs")
	gigs.Get("/", s.OptionalAuth(), s.GetGigs)
	gigs.Post("/", s.AuthRequired(), s.CreateGig)
	gigs.Get("/:id", s.GetGig)
	gigs.Put("/:id", s.AuthRequired(), s.UpdateGig)
	gigs.Delete("/:id", s.AuthRequired(), s.DeleteGig)

	// Collection routes; /me before the generic /:id
	collections := api.Group("/collections")
	collections.Get("/", s.GetPublicCollections)
	collections.Get("/me", s.AuthRequired(), s.GetMyCollections)
	collections.Post("/", s.AuthRequired(), s.CreateCollection)
	collections.Post("/:id/gigs/:gigId", s.AuthRequired(), s.AddGigToCollection)
	collections.Delete("/:id/gigs/:gigId", s.AuthRequired(), s.RemoveGigFromCollection)
	// Detail view is public for public collections, owner-only for private.
	collections.Get("/:id", s.OptionalAuth(), s.GetCollection)
	collections.Put("/:id", s.AuthRequired(), s.UpdateCollection)
	collections.Delete("/:id", s.AuthRequired(), s.DeleteCollection)

	// User routes; specific routes before the generic /:id
	users := api.Group("/users")
	users.Get("/me", s.AuthRequired(), s.GetMyProfile)
	users.Put("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Get("/", s.AuthRequired(), s.AdminRequired(), s.GetAllUsers)
	users.Post("/:id/promote-admin", s.AuthRequired(), s.AdminRequired(), s.PromoteToAdmin)
	users.Post("/:id/demote-admin", s.AuthRequired(), s.AdminRequired(), s.DemoteFromAdmin)
	users.Get("/:id/gigs", s.GetUserGigs)
	users.Get("/:id", s.GetUserProfile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional: rate limiting fails open and caching is skipped.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(models.Envelope{
		Success: status == fiber.StatusOK,
		Data: fiber.Map{
			"status": overallStatus,
			"checks": fiber.Map{
				"database": dbStatus,
				"redis":    redisStatus,
			},
			"time": time.Now(),
		},
	})
}

// AuthRequired returns the authentication middleware. Requests without a
// bearer token are rejected with 401; expired tokens map to 403 and
// malformed or tampered tokens to 401, each with a machine-readable code.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			observability.AuthFailures.WithLabelValues("missing").Inc()
			return models.RespondWithError(c, models.NewAuthenticationError(
				models.CodeAuthRequired, fiber.StatusUnauthorized, "Authentication required"))
		}

		identity, err := s.tokens.Verify(tokenString)
		if err != nil {
			if err == auth.ErrTokenExpired {
				observability.AuthFailures.WithLabelValues("expired").Inc()
				return models.RespondWithError(c, models.NewAuthenticationError(
					models.CodeTokenExpired, fiber.StatusForbidden, "Token expired"))
			}
			observability.AuthFailures.WithLabelValues("invalid").Inc()
			return models.RespondWithError(c, models.NewAuthenticationError(
				models.CodeTokenInvalid, fiber.StatusUnauthorized, "Token invalid"))
		}

		s.attachIdentity(c, identity)
		return c.Next()
	}
}

// OptionalAuth verifies a bearer token when one is present but never
// rejects: absent or invalid credentials simply leave the request
// anonymous.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString != "" {
			if identity, err := s.tokens.Verify(tokenString); err == nil {
				s.attachIdentity(c, identity)
			}
		}
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so the identity is available.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := s.identity(c)
		if err := auth.RequireAdmin(identity); err != nil {
			return models.RespondWithError(c, err)
		}
		return c.Next()
	}
}

// attachIdentity stores the verified identity in Fiber locals and syncs the
// user ID into the request context for logging and downstream services.
func (s *Server) attachIdentity(c *fiber.Ctx, identity auth.Identity) {
	c.Locals("identity", identity)
	c.Locals("userID", identity.ID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, identity.ID)
	c.SetUserContext(ctx)
}

// bearerToken extracts the token from the standard authorization header.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Gig Buddy API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and closes its connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
