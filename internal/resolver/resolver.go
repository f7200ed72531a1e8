// Package resolver answers questions from the internal corpus, attaching a
// heuristic confidence used by the coordinator for routing. The constants
// below are tuning heuristics carried over from production behavior; their
// relative ordering matters, their absolute values encode no probabilistic
// meaning.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/internal/intent"
	"github.com/sandevgo/vidquery/pkg/log"
)

const (
	confChannels       = 0.95
	confChannelsEmpty  = 0.1
	confFieldHit       = 0.98
	confFieldMiss      = 0.3
	confChannelExists  = 0.95
	confChannelAbsent  = 0.9
	confRecentHit      = 0.85
	confRecentMiss     = 0.4
	confSearchDefault  = 0.75
	confSearchCap      = 0.8
	confSearchEmpty    = 0.1
	confSearchLowTrust = 0.5

	topRecent  = 3
	topSimilar = 5
)

// Canned placeholder texts. The coordinator refuses to fall back to an
// internal answer whose text is one of these.
const (
	msgSpecifyTitle   = "Please specify the video title in quotes so I can look it up."
	msgSpecifyChannel = "Please specify the channel name in quotes so I can check it."
	msgVideoNotFound  = "I couldn't find that video in the library."
	msgNoChannels     = "I couldn't find any channels in the library."
	msgNothingRecent  = "I couldn't find any recent videos matching that."
	msgNothingSimilar = "I couldn't find anything relevant in the library."
)

var placeholders = map[string]struct{}{
	msgSpecifyTitle:   {},
	msgSpecifyChannel: {},
	msgVideoNotFound:  {},
	msgNoChannels:     {},
	msgNothingRecent:  {},
	msgNothingSimilar: {},
}

// IsPlaceholder reports whether text is one of the canned "couldn't find" /
// "please specify" responses rather than real content.
func IsPlaceholder(text string) bool {
	_, ok := placeholders[strings.TrimSpace(text)]
	return ok
}

type Resolver struct {
	videos       core.VideoRepository
	embedder     core.Embedder
	storeTimeout time.Duration
}

func New(videos core.VideoRepository, embedder core.Embedder, storeTimeout time.Duration) *Resolver {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Resolver{
		videos:       videos,
		embedder:     embedder,
		storeTimeout: storeTimeout,
	}
}

// Resolve dispatches on intent and returns the internal answer plus a flag
// indicating that the external cascade should be consulted. Lookup failures
// never propagate; they degrade to a zero-confidence answer with the flag set.
func (r *Resolver) Resolve(ctx context.Context, qi core.QueryIntent, question string) (core.Answer, bool) {
	switch qi {
	case core.IntentListChannels:
		return r.listChannels(ctx)
	case core.IntentGetTranscript:
		return r.fetchField(ctx, question, false)
	case core.IntentGetSummary:
		return r.fetchField(ctx, question, true)
	case core.IntentCheckChannelExists:
		return r.channelExists(ctx, question)
	case core.IntentRecentChannelInfo:
		return r.recent(ctx, question, true)
	case core.IntentRecentVideoInfo:
		return r.recent(ctx, question, false)
	case core.IntentRequiresExternalInfo:
		// Price/comparison questions are never answerable from the corpus.
		return core.Answer{Source: core.NoneSource()}, true
	default:
		return r.semanticSearch(ctx, question)
	}
}

func (r *Resolver) degraded(ctx context.Context, op string, err error) (core.Answer, bool) {
	log.FromCtx(ctx).Warn().Err(err).Str("op", op).Msg("internal lookup failed, flagging fallback")
	return core.Answer{Source: core.NoneSource()}, true
}

func (r *Resolver) listChannels(ctx context.Context) (core.Answer, bool) {
	sctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	channels, err := r.videos.ListChannels(sctx)
	if err != nil {
		return r.degraded(ctx, "list_channels", err)
	}
	if len(channels) == 0 {
		return core.Answer{
			Text:       msgNoChannels,
			Source:     core.DatabaseSource(),
			Confidence: confChannelsEmpty,
		}, true
	}

	text := fmt.Sprintf("The library has %d channels: %s.", len(channels), strings.Join(channels, ", "))
	return core.Answer{
		Text:       text,
		Source:     core.DatabaseSource(),
		Confidence: confChannels,
	}, false
}

func (r *Resolver) fetchField(ctx context.Context, question string, summary bool) (core.Answer, bool) {
	title := intent.QuotedTitle(question)
	if title == "" {
		return core.Answer{
			Text:       msgSpecifyTitle,
			Source:     core.DatabaseSource(),
			Confidence: confFieldMiss,
		}, true
	}

	sctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	v, err := r.videos.FindByTitle(sctx, title)
	if err != nil {
		return r.degraded(ctx, "find_by_title", err)
	}
	if v == nil {
		return core.Answer{
			Text:       msgVideoNotFound,
			Source:     core.DatabaseSource(),
			Confidence: confFieldMiss,
		}, true
	}

	field := v.Transcript
	label := "Transcript"
	if summary {
		field = v.Summary
		label = "Summary"
	}

	return core.Answer{
		Text:       fmt.Sprintf("%s of %q:\n\n%s", label, v.Title, field),
		References: []core.Reference{videoReference(*v)},
		Source:     core.DatabaseSource(),
		Confidence: confFieldHit,
	}, false
}

func (r *Resolver) channelExists(ctx context.Context, question string) (core.Answer, bool) {
	name := intent.QuotedTitle(question)
	if name == "" {
		return core.Answer{
			Text:       msgSpecifyChannel,
			Source:     core.DatabaseSource(),
			Confidence: confFieldMiss,
		}, true
	}

	sctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	count, err := r.videos.CountChannel(sctx, name)
	if err != nil {
		return r.degraded(ctx, "count_channel", err)
	}
	if count == 0 {
		// Absent channels still flag fallback: the user may want general
		// web information about a channel we simply haven't ingested.
		return core.Answer{
			Text:       fmt.Sprintf("I couldn't find a channel named %q in the library.", name),
			Source:     core.DatabaseSource(),
			Confidence: confChannelAbsent,
		}, true
	}

	return core.Answer{
		Text:       fmt.Sprintf("Yes, %q is in the library with %d videos.", name, count),
		Source:     core.DatabaseSource(),
		Confidence: confChannelExists,
	}, false
}

func (r *Resolver) recent(ctx context.Context, question string, byChannel bool) (core.Answer, bool) {
	name := intent.QuotedTitle(question)

	sctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	var (
		videos []core.Video
		err    error
	)
	if byChannel {
		videos, err = r.videos.RecentByChannel(sctx, name, topRecent)
	} else {
		videos, err = r.videos.RecentByTitle(sctx, name, topRecent)
	}
	if err != nil {
		return r.degraded(ctx, "recent", err)
	}
	if len(videos) == 0 {
		return core.Answer{
			Text:       msgNothingRecent,
			Source:     core.DatabaseSource(),
			Confidence: confRecentMiss,
		}, true
	}

	var sb strings.Builder
	sb.WriteString("Most recent videos:\n")
	refs := make([]core.Reference, 0, len(videos))
	for _, v := range videos {
		fmt.Fprintf(&sb, "- %s (%s, %s)\n", v.Title, v.ChannelName, v.Date.Format("2006-01-02"))
		refs = append(refs, videoReference(v))
	}

	return core.Answer{
		Text:       strings.TrimRight(sb.String(), "\n"),
		References: refs,
		Source:     core.DatabaseSource(),
		Confidence: confRecentHit,
	}, false
}

func (r *Resolver) semanticSearch(ctx context.Context, question string) (core.Answer, bool) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return r.degraded(ctx, "embed", err)
	}

	sctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	results, err := r.videos.SearchSimilar(sctx, vector, topSimilar)
	if err != nil {
		return r.degraded(ctx, "search_similar", err)
	}
	if len(results) == 0 {
		return core.Answer{
			Text:       msgNothingSimilar,
			Source:     core.DatabaseSource(),
			Confidence: confSearchEmpty,
		}, true
	}

	var sum float64
	for _, res := range results {
		score := res.Score
		if score <= 0 {
			score = confSearchDefault
		}
		sum += score
	}
	confidence := sum / float64(len(results))
	if confidence > confSearchCap {
		confidence = confSearchCap
	}

	var sb strings.Builder
	sb.WriteString("Here's what I found in the library:\n")
	refs := make([]core.Reference, 0, len(results))
	for _, res := range results {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", res.Title, res.ChannelName, snippet(res.Summary, 200))
		refs = append(refs, videoReference(res.Video))
	}

	// Even with matches in hand, a weak composite score means low trust in
	// the internal answer, so the cascade is still consulted.
	fallback := confidence < confSearchLowTrust

	return core.Answer{
		Text:       strings.TrimRight(sb.String(), "\n"),
		References: refs,
		Source:     core.DatabaseSource(),
		Confidence: confidence,
	}, fallback
}

func videoReference(v core.Video) core.Reference {
	ref := core.Reference{
		Title:   v.Title,
		Link:    v.Link,
		Snippet: snippet(v.Summary, 200),
	}
	if !v.Date.IsZero() {
		ref.Date = v.Date.Format("2006-01-02")
	}
	return ref
}

func snippet(text string, max int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
