package retry

import (
	"context"
	"math/rand"
	"time"
)

type Config struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
	Jitter       time.Duration
}

func DefaultConfig() Config {
	return Config{
		Attempts:     3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Factor:       2.0,
		Jitter:       50 * time.Millisecond,
	}
}

// Do runs op up to cfg.Attempts times with exponential backoff between
// attempts. The last error is returned when all attempts fail; a cancelled
// context aborts the wait.
func Do(ctx context.Context, cfg Config, op func() error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt >= cfg.Attempts {
			return err
		}

		wait := delay + time.Duration(rnd.Float64()*float64(cfg.Jitter))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Factor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}
