// Package server contains HTTP and WebSocket handlers for the board's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "echohole/docs" // swagger docs
	"echohole/internal/analytics"
	"echohole/internal/cache"
	"echohole/internal/config"
	"echohole/internal/contentfilter"
	"echohole/internal/database"
	"echohole/internal/identity"
	"echohole/internal/janitor"
	"echohole/internal/middleware"
	"echohole/internal/models"
	"echohole/internal/moderation"
	"echohole/internal/notifications"
	"echohole/internal/ratelimit"
	"echohole/internal/repository"
	"echohole/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// hubBuffer is the bus backlog the websocket hub may fall behind by.
	hubBuffer = 256
	// bucketGrace keeps an expired rate-limit bucket for one more window before sweeping.
	bucketGraceWindows = 1
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	hasher        *identity.Hasher
	rateStore     ratelimit.Store
	memoryStore   *ratelimit.MemoryStore
	submitLimiter *ratelimit.Limiter
	actionLimiter *ratelimit.Limiter

	bus       *notifications.Bus
	notifier  *notifications.RedisNotifier
	publisher notifications.Publisher
	hub       *notifications.Hub
	recorder  *analytics.Recorder
	janitor   *janitor.Janitor

	boardService      *service.BoardService
	moderationService *service.ModerationService
	analyticsService  *service.AnalyticsService
	authService       *service.AdminAuthService
}

// NewServer connects to the database and, when configured, Redis, then
// builds the server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.NewClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			if cfg.RateLimitStore == "redis" {
				return nil, fmt.Errorf("redis connection failed: %w", err)
			}
			slog.Warn("redis unavailable, continuing with in-process notifier",
				slog.String("error", err.Error()))
			redisClient = nil
		}
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	phrases, err := cfg.Phrases()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("echohole-api"),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
		hasher:         identity.NewHasher(cfg.IPSalt),
		bus:            notifications.NewBus(),
		hub:            notifications.NewHub(),
	}

	if cfg.RateLimitStore == "redis" && redisClient != nil {
		s.rateStore = ratelimit.NewRedisStore(redisClient)
	} else {
		s.memoryStore = ratelimit.NewMemoryStore()
		s.rateStore = s.memoryStore
	}
	s.submitLimiter = ratelimit.NewLimiter(s.rateStore, cfg.SubmitLimit,
		time.Duration(cfg.SubmitWindowSeconds)*time.Second)
	s.actionLimiter = ratelimit.NewLimiter(s.rateStore, cfg.ActionLimit,
		time.Duration(cfg.ActionWindowSeconds)*time.Second)

	// With Redis every process publishes there and hears its own events back
	// through the bridge; without it the bus is the only channel.
	s.publisher = s.bus
	if redisClient != nil {
		s.notifier = notifications.NewRedisNotifier(redisClient)
		s.publisher = s.notifier
	}
	s.hub.StartWiring(ctx, s.bus.Subscribe("websocket hub", hubBuffer))

	postRepo := repository.NewPostRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	machine := moderation.NewMachine(moderation.Policy{RequirePreApproval: cfg.RequirePreApproval})
	locks := service.NewPostLocks()

	s.boardService = service.NewBoardService(postRepo, s.submitLimiter, contentfilter.New(phrases),
		machine, s.publisher, locks)
	s.moderationService = service.NewModerationService(postRepo, machine, s.publisher, locks)
	s.analyticsService = service.NewAnalyticsService(visitRepo)
	s.authService = service.NewAdminAuthService(sessionRepo, service.AdminCredentials{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		SessionTTL:   time.Duration(cfg.AdminSessionHours) * time.Hour,
	})
	s.recorder = analytics.NewRecorder(visitRepo, s.publisher)
	s.janitor = janitor.New(s.janitorTasks()...)

	return s, nil
}

func (s *Server) janitorTasks() []janitor.Task {
	tasks := []janitor.Task{{
		Name:     "admin sessions",
		Interval: time.Duration(s.config.SessionCleanupMinutes) * time.Minute,
		Run:      s.authService.PurgeExpired,
	}}
	if s.memoryStore != nil {
		grace := bucketGraceWindows * max(s.submitLimiter.Window(), s.actionLimiter.Window())
		tasks = append(tasks, janitor.Task{
			Name:     "rate limit buckets",
			Interval: time.Duration(s.config.RateLimitSweepMinutes) * time.Minute,
			Run: func(context.Context) (int64, error) {
				return int64(s.memoryStore.Sweep(time.Now(), grace)), nil
			},
		})
	}
	return tasks
}

// NewApp returns a Fiber app whose error handler renders models.ErrorResponse.
// When trustedProxies is non-empty, c.IP() resolves the client from
// X-Forwarded-For on requests arriving from one of those addresses.
func NewApp(trustedProxies ...string) *fiber.App {
	cfg := fiber.Config{
		AppName:   "Echo Hole API",
		BodyLimit: 64 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			slog.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	}
	if len(trustedProxies) > 0 {
		cfg.ProxyHeader = fiber.HeaderXForwardedFor
		cfg.EnableTrustedProxyCheck = true
		cfg.TrustedProxies = trustedProxies
		cfg.EnableIPValidation = true
	}
	return fiber.New(cfg)
}

// App builds the Fiber app with middleware and routes, once.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		s.app = NewApp(s.config.TrustedProxyList()...)
		s.SetupMiddleware(s.app)
		s.SetupRoutes(s.app)
	}
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Coarse per-address flood guard in front of the per-identity limiters.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			// Behind a trusted proxy the IP is a view of the header buffer.
			return utils.CopyString(c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  models.CodeRateLimited,
			})
		},
	}))

	app.Use(middleware.Identity(s.hasher))
	app.Use(s.RecordVisits())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Post("/submit", s.Submit)
	api.Get("/list", s.ListPosts)
	api.Post("/like", middleware.RateLimit(s.actionLimiter, "like"), s.Like)
	api.Post("/report", middleware.RateLimit(s.actionLimiter, "report"), s.Report)
	api.Get("/ws", wsUpgradeRequired, s.WebsocketHandler(notifications.AudiencePublic))

	admin := api.Group("/admin")
	admin.Post("/login", middleware.RateLimit(s.actionLimiter, "admin_login"), s.AdminLogin)
	admin.Post("/logout", s.AdminLogout)
	admin.Get("/status", s.AdminStatus)

	protected := admin.Group("", s.AdminRequired())
	protected.Get("/posts", s.AdminListPosts)
	protected.Post("/moderate", s.Moderate)
	protected.Post("/approve", s.moderateAlias(moderation.ActionApprove))
	protected.Post("/reject", s.moderateAlias(moderation.ActionReject))
	protected.Post("/delete", s.moderateAlias(moderation.ActionDelete))
	protected.Get("/analytics", s.GetAnalytics)
	protected.Get("/realtime", s.GetRealtime)
	protected.Get("/stats", s.GetStats)
	protected.Get("/ws", wsUpgradeRequired, s.WebsocketHandler(notifications.AudienceAdmin))

	s.setupStatic(app)
}

// setupStatic serves the browser bundle from StaticDir with an index.html
// fallback for client-side routes.
func (s *Server) setupStatic(app *fiber.App) {
	dir := s.config.StaticDir
	if dir == "" {
		return
	}
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return
	}
	app.Static("/", dir)
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Next()
		}
		return c.SendFile(index)
	})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
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

// StartWorkers launches the Redis bridge and the janitor. It is separate
// from Start so tests can run the background side without a listener.
func (s *Server) StartWorkers() error {
	if s.notifier != nil {
		if err := s.notifier.Bridge(s.shutdownCtx, s.bus); err != nil {
			return fmt.Errorf("start redis bridge: %w", err)
		}
	}
	s.janitor.Start(s.shutdownCtx)
	return nil
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	if err := s.StartWorkers(); err != nil {
		return err
	}
	slog.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		slog.Error("error shutting down websocket hub", slog.String("error", err.Error()))
	}
	s.janitor.Wait()
	s.recorder.Wait()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
