package app

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"workgallery/internal/bundle"
	"workgallery/internal/config"
	"workgallery/internal/delivery/http/handler"
	"workgallery/internal/delivery/http/middleware"
	"workgallery/internal/infrastructure/cache"
	"workgallery/internal/usecase"
)

type App struct {
	Fiber  *fiber.App
	Bundle *bundle.Bundle
}

// Bootstrap loads the model bundle and wires the HTTP app around it. A
// missing or corrupt bundle fails startup; the service never comes up
// partially loaded.
func Bootstrap(cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	b, err := bundle.Load(cfg.App.ModelDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load model bundle from %s: %w", cfg.App.ModelDir, err)
	}
	logger.Info("loaded model bundle",
		zap.String("dir", cfg.App.ModelDir),
		zap.String("model_version", b.Manifest.ModelVersion),
		zap.Int("candidates", b.Candidates.Len()),
		zap.Int("jobs", b.Jobs.Len()),
	)

	rec := usecase.NewRecommendationUsecase(b)

	redisCache := cache.NewRedis(cfg.Redis, logger)
	cached := usecase.NewCachedRecommendation(rec, redisCache, cfg.Redis.CacheTTL, logger)

	f := fiber.New(fiber.Config{AppName: cfg.App.Name})
	f.Use(middleware.AccessLog(logger))
	f.Use(middleware.NewErrorMiddleware(logger).Middleware())

	handler.NewStatusHandler(rec).RegisterRoutes(f)
	handler.NewRecommendHandler(cached).RegisterRoutes(f)

	cleanup := func() error {
		return redisCache.Close()
	}
	return &App{Fiber: f, Bundle: b}, cleanup, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
