package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/vidquery/pkg/log"
)

type MarketConfig struct {
	BaseURL      string        `env:"MARKET_BASE_URL" envDefault:"https://query1.finance.yahoo.com"`
	QuoteTimeout time.Duration `env:"MARKET_QUOTE_TIMEOUT" envDefault:"5s"`
	CacheTTL     time.Duration `env:"MARKET_CACHE_TTL" envDefault:"5m"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

func NewMarketConfig(ctx context.Context) *MarketConfig {
	c := &MarketConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse market config")
	}
	return c
}
