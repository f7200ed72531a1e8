package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sandevgo/vidquery/internal/cascade"
	"github.com/sandevgo/vidquery/internal/config"
	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/internal/intent"
	"github.com/sandevgo/vidquery/internal/providers/answer"
	"github.com/sandevgo/vidquery/internal/providers/embed"
	"github.com/sandevgo/vidquery/internal/providers/market"
	"github.com/sandevgo/vidquery/internal/resolver"
	"github.com/sandevgo/vidquery/internal/service/pipeline"
	"github.com/sandevgo/vidquery/internal/service/recorder"
	"github.com/sandevgo/vidquery/internal/storage/sqlite"
	"github.com/sandevgo/vidquery/internal/transport/httpapi"
	"github.com/sandevgo/vidquery/pkg/log"
	"github.com/sandevgo/vidquery/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	providersCfg := config.NewProvidersConfig(ctx)
	marketCfg := config.NewMarketConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	videosRepo := sqlite.NewVideosRepo(db)
	conversationsRepo := sqlite.NewConversationsRepo(db)

	// 3. Embedder + internal resolver
	embedder := embed.NewClient(providersCfg.EmbedBaseURL, providersCfg.EmbedAPIKey, providersCfg.EmbedModel)
	internal := resolver.New(videosRepo, embedder, providersCfg.StoreTimeout)

	// 4. External search cascade. Providers without an API key are left out
	// so the cascade only tries tiers that can actually answer.
	external := cascade.New(providersCfg.ProviderTimeout, answerProviders(providersCfg)...)

	// 5. Pipeline + recorder
	pipe := pipeline.New(
		intent.Classify,
		internal,
		external,
		recorder.New(conversationsRepo),
	)

	// 6. Market quotes with redis cache
	cache := redis.NewClient(&redis.Options{
		Addr:     marketCfg.RedisAddr,
		Password: marketCfg.RedisPassword,
		DB:       marketCfg.RedisDB,
	})
	services = append(services, srv.NewCleanup(cache.Close))
	quotes := market.NewClient(marketCfg.BaseURL, marketCfg.QuoteTimeout, marketCfg.CacheTTL, cache)

	// 7. HTTP transport
	handler := httpapi.NewHandler(pipe, quotes, *logger)
	services = append(services, httpapi.NewServer(appCfg.Addr, handler))

	return services
}

func answerProviders(cfg *config.ProvidersConfig) []core.AnswerProvider {
	var providers []core.AnswerProvider
	if cfg.PerplexityAPIKey != "" {
		providers = append(providers, answer.NewPerplexity(cfg.PerplexityBaseURL, cfg.PerplexityAPIKey, cfg.PerplexityModel))
	}
	if cfg.TavilyAPIKey != "" {
		providers = append(providers, answer.NewTavily(cfg.TavilyBaseURL, cfg.TavilyAPIKey))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, answer.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}
	return providers
}

func initEnv(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(config.GetRuntimePath(), ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
