package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/vidquery/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"VIDQUERY_RUNTIME_PATH" envDefault:".vidquery"`
	Addr        string `env:"VIDQUERY_ADDR" envDefault:":8080"`

	// Ingest
	IngestTokenBudget int `env:"INGEST_TOKEN_BUDGET" envDefault:"8000"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "vidquery.db")
}

// GetRuntimePath reads the runtime directory straight from the environment
// so it is available before any config struct is parsed.
func GetRuntimePath() string {
	if v := os.Getenv("VIDQUERY_RUNTIME_PATH"); v != "" {
		return v
	}
	return ".vidquery"
}

func IsDebug() bool {
	v, _ := strconv.ParseBool(os.Getenv("VIDQUERY_DEBUG"))
	return v
}
