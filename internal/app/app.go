package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"talentbridge/internal/config"
	"talentbridge/internal/database"
	"talentbridge/internal/event"
	"talentbridge/internal/handler"
	"talentbridge/internal/middleware"
	"talentbridge/internal/ratelimit"
	"talentbridge/internal/repository"
	"talentbridge/internal/router"
	"talentbridge/internal/service"
)

type App struct {
	cfg         *config.Config
	db          *database.DB
	redisClient *redis.Client
	bus         *event.InMemoryBus
	server      *http.Server
	audit       *service.AuditLogger
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	tokenRepo := repository.NewResetTokenRepository(db.Pool)
	universityRepo := repository.NewUniversityRepository(db.Pool)
	jobRepo := repository.NewJobRepository(db.Pool)
	projectRepo := repository.NewProjectRepository(db.Pool)
	taskRepo := repository.NewTaskRepository(db.Pool)
	statsRepo := repository.NewStatsRepository(db.Pool)

	bus := event.NewBus()

	// A Redis URL switches the auth-endpoint counters to the shared store so
	// limits hold across instances. Without one, counters are per-process.
	var redisClient *redis.Client
	var limitStore ratelimit.Store
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("parse redis URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		limitStore = ratelimit.NewRedisStore(redisClient)
		slog.Info("rate limiting backed by redis")
	} else {
		limitStore = ratelimit.NewMemoryStore()
	}

	authService, err := service.NewAuthService(
		cfg.JWTSecret, cfg.JWTTTL, cfg.BCryptCost, cfg.AppBaseURL,
		userRepo, tokenRepo, universityRepo, service.LogMailer{}, bus)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	userService := service.NewUserService(userRepo, universityRepo, bus)
	universityService := service.NewUniversityService(universityRepo)
	jobService := service.NewJobService(jobRepo, bus)
	projectService := service.NewProjectService(projectRepo, bus)
	taskService := service.NewTaskService(taskRepo, projectRepo, bus)
	statsService := service.NewStatsService(statsRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authLimit := middleware.NewAuthRateLimit(limitStore)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, cfg.IsProduction()),
		Users:        handler.NewUserHandler(userService),
		Universities: handler.NewUniversityHandler(universityService),
		Jobs:         handler.NewJobHandler(jobService),
		Projects:     handler.NewProjectHandler(projectService),
		Tasks:        handler.NewTaskHandler(taskService),
		Stats:        handler.NewStatsHandler(statsService),
	}

	mux := router.New(handlers, authMiddleware, authLimit, router.Options{
		CORSOrigins:      cfg.CORSOrigins,
		RequestTimeout:   cfg.RequestTimeout,
		LoginRateLimit:   cfg.LoginRateLimit,
		LoginRateWindow:  cfg.LoginRateWindow,
		SignupRateLimit:  cfg.SignupRateLimit,
		SignupRateWindow: cfg.SignupRateWindow,
		GeneralRPM:       cfg.RateLimitRPM,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
		bus:         bus,
		server:      server,
		audit:       service.NewAuditLogger(bus),
	}, nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	auditCtx, stopAudit := context.WithCancel(context.Background())
	go a.audit.Run(auditCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.server.Addr, "env", a.cfg.Environment)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stopAudit()
		a.closeResources()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)

	stopAudit()
	a.closeResources()

	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) closeResources() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err)
		}
	}
	a.db.Close()
}
