package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/vidquery/pkg/log"
)

// ProvidersConfig covers the external answer providers and the embedder.
// All endpoints are OpenAI-compatible unless noted.
type ProvidersConfig struct {
	PerplexityAPIKey  string `env:"PERPLEXITY_API_KEY"`
	PerplexityBaseURL string `env:"PERPLEXITY_BASE_URL" envDefault:"https://api.perplexity.ai"`
	PerplexityModel   string `env:"PERPLEXITY_MODEL" envDefault:"sonar"`

	TavilyAPIKey  string `env:"TAVILY_API_KEY"`
	TavilyBaseURL string `env:"TAVILY_BASE_URL" envDefault:"https://api.tavily.com"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	EmbedAPIKey  string `env:"EMBED_API_KEY"`
	EmbedBaseURL string `env:"EMBED_BASE_URL" envDefault:"https://api.openai.com"`
	EmbedModel   string `env:"EMBED_MODEL" envDefault:"text-embedding-3-small"`

	// ProviderTimeout bounds each cascade tier; StoreTimeout bounds each
	// internal store lookup.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"20s"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}

func NewProvidersConfig(ctx context.Context) *ProvidersConfig {
	c := &ProvidersConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse providers config")
	}
	return c
}
