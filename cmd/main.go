package main

import (
	"context"

	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/yakoovad/groups-service/internal/api"
	"github.com/yakoovad/groups-service/internal/auth"
	"github.com/yakoovad/groups-service/internal/config"
	"github.com/yakoovad/groups-service/internal/db"
	"github.com/yakoovad/groups-service/internal/repository"
	"github.com/yakoovad/groups-service/internal/service"
	"github.com/yakoovad/groups-service/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	auth.TokenSecretKey = cfg.TokenSecret

	pool, err := pgxpool.New(context.Background(), cfg.PGDSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	logger.Info("database connection established")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	transactor := db.NewPgxTransactor(pool)

	groupRepo := repository.NewPgxGroupRepository(pool)
	groupUserRepo := repository.NewPgxGroupUserRepository(pool)
	userRepo := repository.NewPgxUserRepository(pool)

	groups := service.NewGroupService(transactor).
		WithGroupRepo(groupRepo).
		WithGroupUserRepo(groupUserRepo).
		WithUserRepo(userRepo)

	healthChecker := api.MustNewHealthChecker(
		health.Config{
			Name: "postgres",
			Check: func(ctx context.Context) error {
				return pool.Ping(ctx)
			},
		},
		health.Config{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	)

	e := echo.New()

	handler := api.NewHandler(logger).
		WithGroupService(groups).
		WithHealthChecker(healthChecker).
		WithRateLimiter(api.RateLimitMiddleware(redisClient, cfg.RateLimit, cfg.RateLimitWindow))

	handler.RegisterRoutes(e)

	logger.Info("server starting", zap.String("addr", cfg.AppAddr))
	if err = e.Start(cfg.AppAddr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
