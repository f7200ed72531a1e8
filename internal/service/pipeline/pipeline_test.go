package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/vidquery/internal/core"
)

type fakeInternal struct {
	ans      core.Answer
	fallback bool
	calls    int
}

func (f *fakeInternal) Resolve(ctx context.Context, qi core.QueryIntent, question string) (core.Answer, bool) {
	f.calls++
	return f.ans, f.fallback
}

type fakeExternal struct {
	ans   core.Answer
	ok    bool
	calls int
}

func (f *fakeExternal) Resolve(ctx context.Context, question string) (core.Answer, bool) {
	f.calls++
	return f.ans, f.ok
}

type fakeRecorder struct {
	calls   int
	lastAns core.Answer
	lastID  string
}

func (f *fakeRecorder) Record(ctx context.Context, conversationID, question string, ans core.Answer, titleHint string) error {
	f.calls++
	f.lastAns = ans
	f.lastID = conversationID
	return nil
}

func classifyGeneric(string) core.QueryIntent { return core.IntentGenericSearch }

func req() Request {
	return Request{Question: "list the channels", ConversationID: "conv-1"}
}

func TestHighConfidenceInternalSkipsCascade(t *testing.T) {
	internal := &fakeInternal{ans: core.Answer{
		Text:       "The library has 2 channels: Alpha, Beta.",
		Source:     core.DatabaseSource(),
		Confidence: 0.95,
	}}
	external := &fakeExternal{}
	rec := &fakeRecorder{}

	p := New(classifyGeneric, internal, external, rec)
	ans := p.Resolve(context.Background(), req())

	assert.Equal(t, core.SourceDatabase, ans.Source.Kind)
	assert.Equal(t, 0.95, ans.Confidence)
	assert.Zero(t, external.calls, "cascade must not be invoked")
	assert.Equal(t, 1, rec.calls)
}

func TestLowConfidenceInvokesCascade(t *testing.T) {
	internal := &fakeInternal{
		ans:      core.Answer{Text: "weak internal answer", Source: core.DatabaseSource(), Confidence: 0.4},
		fallback: true,
	}
	external := &fakeExternal{
		ans: core.Answer{Text: "web answer", Source: core.WebSource("perplexity"), Confidence: 0.75},
		ok:  true,
	}
	rec := &fakeRecorder{}

	p := New(classifyGeneric, internal, external, rec)
	ans := p.Resolve(context.Background(), req())

	assert.Equal(t, 1, external.calls)
	assert.Equal(t, "web:perplexity", ans.Source.String())
	assert.Equal(t, 1, rec.calls)
}

func TestFallbackFlagForcesCascadeEvenAtHighConfidence(t *testing.T) {
	internal := &fakeInternal{
		ans:      core.Answer{Text: "exists but unknown channel", Source: core.DatabaseSource(), Confidence: 0.9},
		fallback: true,
	}
	external := &fakeExternal{ans: core.Answer{Text: "web", Source: core.WebSource("tavily")}, ok: true}

	p := New(classifyGeneric, internal, external, &fakeRecorder{})
	ans := p.Resolve(context.Background(), req())

	assert.Equal(t, 1, external.calls)
	assert.Equal(t, "web:tavily", ans.Source.String())
}

func TestCascadeExhaustedRetagsInternalAnswer(t *testing.T) {
	internal := &fakeInternal{
		ans:      core.Answer{Text: "partial internal answer", Source: core.DatabaseSource(), Confidence: 0.4},
		fallback: true,
	}
	external := &fakeExternal{}
	rec := &fakeRecorder{}

	p := New(classifyGeneric, internal, external, rec)
	ans := p.Resolve(context.Background(), req())

	assert.Equal(t, core.SourceDatabaseFallback, ans.Source.Kind)
	assert.Equal(t, "partial internal answer", ans.Text)
	assert.Equal(t, 1, rec.calls)
}

func TestCascadeExhaustedPlaceholderYieldsApology(t *testing.T) {
	internal := &fakeInternal{
		ans: core.Answer{
			Text:       "I couldn't find that video in the library.",
			Source:     core.DatabaseSource(),
			Confidence: 0.3,
		},
		fallback: true,
	}
	external := &fakeExternal{}
	rec := &fakeRecorder{}

	p := New(classifyGeneric, internal, external, rec)
	ans := p.Resolve(context.Background(), req())

	assert.Equal(t, core.SourceNone, ans.Source.Kind)
	assert.Zero(t, ans.Confidence)
	assert.Empty(t, ans.References)
	assert.Equal(t, 1, rec.calls, "the apologetic terminal state is still recorded")
}

func TestCascadeExhaustedLowConfidenceYieldsApology(t *testing.T) {
	internal := &fakeInternal{
		ans:      core.Answer{Source: core.NoneSource(), Confidence: 0},
		fallback: true,
	}
	external := &fakeExternal{}
	rec := &fakeRecorder{}

	p := New(classifyGeneric, internal, external, rec)
	ans := p.Resolve(context.Background(), req())

	assert.Equal(t, core.SourceNone, ans.Source.Kind)
	assert.Zero(t, ans.Confidence)
	assert.Equal(t, 1, rec.calls)
}

func TestEveryTerminalRecordsExactlyOnce(t *testing.T) {
	internal := &fakeInternal{ans: core.Answer{Text: "x", Source: core.DatabaseSource(), Confidence: 0.98}}
	rec := &fakeRecorder{}

	p := New(classifyGeneric, internal, &fakeExternal{}, rec)
	p.Resolve(context.Background(), req())
	p.Resolve(context.Background(), req())

	assert.Equal(t, 2, rec.calls)
}

func TestPanicBoundaryReturnsErrorAnswerAndSkipsRecording(t *testing.T) {
	panicClassify := func(string) core.QueryIntent { panic("boom") }
	rec := &fakeRecorder{}

	p := New(panicClassify, &fakeInternal{}, &fakeExternal{}, rec)
	ans := p.Resolve(context.Background(), req())

	assert.Equal(t, core.SourceError, ans.Source.Kind)
	assert.Zero(t, ans.Confidence)
	assert.Zero(t, rec.calls, "error responses must not be persisted")
}

func TestRecorderFailureDoesNotFailAnswer(t *testing.T) {
	internal := &fakeInternal{ans: core.Answer{Text: "x", Source: core.DatabaseSource(), Confidence: 0.98}}

	p := New(classifyGeneric, internal, &fakeExternal{}, &failingRecorder{})
	ans := p.Resolve(context.Background(), req())

	require.Equal(t, core.SourceDatabase, ans.Source.Kind)
}

type failingRecorder struct{}

func (failingRecorder) Record(ctx context.Context, conversationID, question string, ans core.Answer, titleHint string) error {
	return assert.AnError
}
