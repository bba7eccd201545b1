package http

import (
	"context"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"biteclub/internal/config"
	"biteclub/internal/database"
	"biteclub/internal/handler"
	"biteclub/internal/redis"
	"biteclub/internal/repository"
	"biteclub/internal/service"
	"biteclub/internal/token"
	"biteclub/internal/yelp"
)

// Run wires the whole application together and serves until interrupted.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	denylist := token.NewRedisDenylist(redisClient)

	userService := service.NewUserService(userRepo, followRepo, mediaService)
	authService := service.NewAuthService(refreshTokenRepo, denylist, cfg)
	followService := service.NewFollowService(followRepo, userRepo)
	reviewService := service.NewReviewService(reviewRepo, userRepo, mediaService)
	yelpClient := yelp.NewClient(cfg.YelpBaseURL, cfg.YelpAPIKey)

	// Sweep long-expired refresh tokens in the background for the lifetime of
	// the process.
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			if n, err := authService.PurgeExpiredTokens(ctx, 24*time.Hour); err != nil {
				slog.Error("refresh token sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("purged expired refresh tokens", "count", n)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	router := NewRouter(RouterConfig{
		AuthHandler:       handler.NewAuthHandler(userService, authService, cfg),
		UserHandler:       handler.NewUserHandler(userService),
		FollowHandler:     handler.NewFollowHandler(followService),
		ReviewHandler:     handler.NewReviewHandler(reviewService),
		RestaurantHandler: handler.NewRestaurantHandler(yelpClient),
		JWTSecret:         cfg.JWTSecret,
		Denylist:          denylist,
	})

	server := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
