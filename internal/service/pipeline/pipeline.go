// Package pipeline coordinates the full query resolution: classify, resolve
// internally, fall back to the external cascade, and record the exchange.
package pipeline

import (
	"context"

	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/internal/resolver"
	"github.com/sandevgo/vidquery/pkg/log"
)

const (
	// internalThreshold is the confidence at which a database answer is
	// trusted without consulting the cascade.
	internalThreshold = 0.95
	// fallbackFloor is the minimum confidence for retagging an internal
	// answer as database_fallback after the cascade is exhausted.
	fallbackFloor = 0.15
)

const apologyText = "I'm sorry, I couldn't find an answer to that right now. " +
	"Try rephrasing the question or asking about a specific video in quotes."

type Classifier func(question string) core.QueryIntent

type InternalResolver interface {
	Resolve(ctx context.Context, qi core.QueryIntent, question string) (core.Answer, bool)
}

type ExternalResolver interface {
	Resolve(ctx context.Context, question string) (core.Answer, bool)
}

type Recorder interface {
	Record(ctx context.Context, conversationID, question string, ans core.Answer, titleHint string) error
}

type Request struct {
	Question       string
	ConversationID string
	TitleHint      string
}

type Pipeline struct {
	classify Classifier
	internal InternalResolver
	external ExternalResolver
	recorder Recorder
}

func New(classify Classifier, internal InternalResolver, external ExternalResolver, recorder Recorder) *Pipeline {
	return &Pipeline{
		classify: classify,
		internal: internal,
		external: external,
		recorder: recorder,
	}
}

// Resolve runs the state machine and always returns a usable answer. Every
// terminal state is recorded exactly once, except the panic boundary:
// source=error responses are returned to the caller but never persisted.
func (p *Pipeline) Resolve(ctx context.Context, req Request) (ans core.Answer) {
	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Error().Interface("panic", r).Str("question", req.Question).Msg("pipeline panicked")
			ans = core.Answer{
				Text:       apologyText,
				References: []core.Reference{},
				Source:     core.ErrorSource(),
				Confidence: 0,
			}
		}
	}()

	logger := log.FromCtx(ctx)

	qi := p.classify(req.Question)
	internal, fallback := p.internal.Resolve(ctx, qi, req.Question)
	logger.Debug().
		Str("intent", string(qi)).
		Float64("confidence", internal.Confidence).
		Bool("fallback", fallback).
		Msg("internal resolution done")

	if internal.Source.Kind == core.SourceDatabase && internal.Confidence >= internalThreshold && !fallback {
		p.record(ctx, req, internal)
		return internal
	}

	if external, ok := p.external.Resolve(ctx, req.Question); ok {
		p.record(ctx, req, external)
		return external
	}

	if internal.Confidence > fallbackFloor && !resolver.IsPlaceholder(internal.Text) {
		internal.Source = core.Source{Kind: core.SourceDatabaseFallback}
		p.record(ctx, req, internal)
		return internal
	}

	apology := core.Answer{
		Text:       apologyText,
		References: []core.Reference{},
		Source:     core.NoneSource(),
		Confidence: 0,
	}
	p.record(ctx, req, apology)
	return apology
}

// record is best-effort: persistence failures are logged and swallowed so
// they never fail the user-facing answer.
func (p *Pipeline) record(ctx context.Context, req Request, ans core.Answer) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, req.ConversationID, req.Question, ans, req.TitleHint); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("conversation_id", req.ConversationID).Msg("failed to record exchange")
	}
}
