// Package market fronts the product's market-data proxy: quotes are cached
// in redis with a TTL so the upstream rate limit is rarely touched.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/pkg/log"
	"github.com/sandevgo/vidquery/pkg/retry"
)

type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	AsOf          time.Time `json:"as_of"`
}

type Client struct {
	http     *http.Client
	baseURL  string
	cache    *redis.Client
	ttl      time.Duration
	retryCfg retry.Config
}

func NewClient(baseURL string, timeout, ttl time.Duration, cache *redis.Client) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		cache:    cache,
		ttl:      ttl,
		retryCfg: retry.DefaultConfig(),
	}
}

// Quote serves from cache when possible. Cache failures are logged and
// ignored: redis being down must never break quote serving.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, fmt.Errorf("empty symbol")
	}

	key := "quote:" + symbol
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key).Result(); err == nil {
			var q Quote
			if err := json.Unmarshal([]byte(cached), &q); err == nil {
				return q, nil
			}
		}
	}

	var q Quote
	err := retry.Do(ctx, c.retryCfg, func() error {
		var fetchErr error
		q, fetchErr = c.fetch(ctx, symbol)
		return fetchErr
	})
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}

	if c.cache != nil {
		if data, err := json.Marshal(q); err == nil {
			if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
				log.FromCtx(ctx).Warn().Err(err).Str("symbol", symbol).Msg("failed to cache quote")
			}
		}
	}

	return q, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (Quote, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s", c.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", core.AppUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Symbol        string  `json:"symbol"`
		Price         float64 `json:"price"`
		Currency      string  `json:"currency"`
		Change        float64 `json:"change"`
		ChangePercent float64 `json:"change_percent"`
		Timestamp     int64   `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return Quote{}, fmt.Errorf("decode: %w", err)
	}

	q := Quote{
		Symbol:        symbol,
		Price:         result.Price,
		Currency:      result.Currency,
		Change:        result.Change,
		ChangePercent: result.ChangePercent,
		AsOf:          time.Now().UTC(),
	}
	if result.Timestamp > 0 {
		q.AsOf = time.Unix(result.Timestamp, 0).UTC()
	}
	return q, nil
}
