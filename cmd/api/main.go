package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/books-api/internal/api/http"
	"github.com/spec-kit/books-api/internal/api/http/handlers"
	"github.com/spec-kit/books-api/internal/auth"
	"github.com/spec-kit/books-api/internal/config"
	"github.com/spec-kit/books-api/internal/events"
	"github.com/spec-kit/books-api/internal/observability"
	"github.com/spec-kit/books-api/internal/persistence"
	"github.com/spec-kit/books-api/internal/repository"
	"github.com/spec-kit/books-api/internal/service"
	"github.com/spec-kit/books-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	bookRepo := repository.NewBookRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)

	authService := service.NewAuthService(userRepo, hasher, tokenMgr, dispatcher)
	userService := service.NewUserService(userRepo, hasher, dispatcher)
	bookService := service.NewBookService(bookRepo, dispatcher)

	if cfg.Seed.Enabled && pool != nil {
		persistence.Seed(ctx, userService, bookService, userRepo, logger)
	}

	authenticator := auth.NewAuthenticator(tokenMgr, userRepo, logger)
	policy := auth.DefaultPolicy()
	if err := policy.Covers(httptransport.RoutedOperations()...); err != nil {
		logger.Fatal("access policy does not cover every routed operation", zap.Error(err))
	}
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Root:          handlers.NewRootHandler(),
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Books:         handlers.NewBooksHandler(bookService),
		Users:         handlers.NewUsersHandler(userService, authService),
		Authenticator: authenticator,
		Policy:        policy,
		LoginLimiter:  httptransport.LoginRateLimiter(redis, cfg.Auth, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
