// Package cascade tries external answer providers strictly in order until
// one succeeds. Sequential on purpose: racing providers would double the
// cost of every question.
package cascade

import (
	"context"
	"strings"
	"time"

	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/pkg/log"
)

// webConfidence is a flat trust constant applied to every provider answer,
// retrieval-backed or not. It is deliberately not derived from provider
// signal.
const webConfidence = 0.75

type Cascade struct {
	providers []core.AnswerProvider
	timeout   time.Duration
}

// New builds a cascade over the given providers. Adding, removing or
// reordering tiers is a data change here, not a code change.
func New(timeout time.Duration, providers ...core.AnswerProvider) *Cascade {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Cascade{providers: providers, timeout: timeout}
}

// Resolve returns the first successful provider answer and true, or a zero
// answer and false when every tier fails. It never returns an error: a
// timeout, transport failure or empty payload just advances to the next
// provider. No per-tier retries; those belong to the transport layer.
func (c *Cascade) Resolve(ctx context.Context, question string) (core.Answer, bool) {
	logger := log.FromCtx(ctx)

	for _, p := range c.providers {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		res, err := p.Answer(pctx, question)
		cancel()

		if err != nil {
			logger.Warn().Err(err).Str("provider", p.Name()).Msg("provider failed, trying next")
			continue
		}
		if strings.TrimSpace(res.Text) == "" {
			logger.Warn().Str("provider", p.Name()).Msg("provider returned empty answer, trying next")
			continue
		}

		logger.Debug().Str("provider", p.Name()).Msg("provider answered")
		return core.Answer{
			Text:       res.Text,
			References: res.References,
			Source:     core.WebSource(p.Name()),
			Confidence: webConfidence,
		}, true
	}

	logger.Warn().Int("providers", len(c.providers)).Msg("all providers exhausted")
	return core.Answer{}, false
}
