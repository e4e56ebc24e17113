package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/config"
	"github.com/kapu/moodtunes-go/internal/constants"
	"github.com/kapu/moodtunes-go/internal/server"
	"github.com/kapu/moodtunes-go/internal/service/ai"
	"github.com/kapu/moodtunes-go/internal/service/cache"
	"github.com/kapu/moodtunes-go/internal/service/database"
	"github.com/kapu/moodtunes-go/internal/service/recommend"
	"github.com/kapu/moodtunes-go/internal/service/soundcloud"
	"github.com/kapu/moodtunes-go/internal/store"
)

// Container bundles assembled services and their teardown hooks.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Server *server.Server

	closers []func()
}

// Close tears services down in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services. Heavy-weight initialization
// (DB, cache, AI clients) happens here so the HTTP layer stays free of wiring.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	if err := postgresSvc.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	entryStore := store.NewEntryStore(postgresSvc, logger)
	prefStore := store.NewPreferenceStore(postgresSvc, logger)

	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultGeminiModel: cfg.Gemini.Model,
		DefaultOpenAIModel: cfg.OpenAI.Model,
		EnableFallback:     cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	analyzer := ai.NewMoodAnalyzer(modelManager, logger)

	catalogClient := soundcloud.NewClient(soundcloud.ClientConfig{
		ClientID:           cfg.SoundCloud.ClientID,
		ClientSecret:       cfg.SoundCloud.ClientSecret,
		AllowSentinelToken: cfg.SoundCloud.AllowSentinelToken,
	}, &http.Client{Timeout: constants.HTTPConfig.ClientTimeout}, cacheSvc, logger)

	orchestrator := recommend.NewOrchestrator(catalogClient, logger)

	health := map[string]server.HealthChecker{
		"postgres": postgresSvc.Ping,
		"redis": func(ctx context.Context) error {
			if !cacheSvc.IsConnected(ctx) {
				return fmt.Errorf("redis unreachable")
			}
			return nil
		},
	}

	handler := server.NewHandler(analyzer, orchestrator, entryStore, prefStore, health, logger)
	srv := server.New(handler, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Server:  srv,
		closers: closers,
	}, nil
}
