package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/internal/providers/market"
	"github.com/sandevgo/vidquery/internal/service/pipeline"
)

type fakeResolver struct {
	calls   int
	lastReq pipeline.Request
	answer  core.Answer
}

func (f *fakeResolver) Resolve(_ context.Context, req pipeline.Request) core.Answer {
	f.calls++
	f.lastReq = req
	return f.answer
}

type fakeQuotes struct {
	quote market.Quote
	err   error
}

func (f *fakeQuotes) Quote(_ context.Context, symbol string) (market.Quote, error) {
	if f.err != nil {
		return market.Quote{}, f.err
	}
	q := f.quote
	q.Symbol = symbol
	return q, nil
}

func newTestHandler(resolver *fakeResolver, quotes QuoteProvider) http.Handler {
	return NewHandler(resolver, quotes, zerolog.Nop())
}

func TestQueryReturnsAnswer(t *testing.T) {
	resolver := &fakeResolver{answer: core.Answer{
		Text:       "Alpha and Beta.",
		References: []core.Reference{{Title: "ref", Link: "https://example.com"}},
		Source:     core.DatabaseSource(),
		Confidence: 0.95,
	}}
	h := newTestHandler(resolver, nil)

	body := `{"question": "what channels do you have?", "conversationId": "conv-1"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Alpha and Beta.", resp.Answer)
	assert.Equal(t, "database", resp.Source)
	assert.Equal(t, 0.95, resp.Confidence)
	assert.Equal(t, "conv-1", resp.ConversationID)
	require.Len(t, resp.References, 1)

	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, "conv-1", resolver.lastReq.ConversationID)
}

func TestQueryMissingQuestionRejected(t *testing.T) {
	resolver := &fakeResolver{}
	h := newTestHandler(resolver, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question": "  "}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, resolver.calls, "pipeline must not run for an empty question")
}

func TestQueryInvalidBodyRejected(t *testing.T) {
	resolver := &fakeResolver{}
	h := newTestHandler(resolver, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader("not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, resolver.calls)
}

func TestQueryGeneratesConversationID(t *testing.T) {
	resolver := &fakeResolver{answer: core.Answer{Text: "ok", Source: core.DatabaseSource()}}
	h := newTestHandler(resolver, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question": "hi"}`)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, resp.ConversationID, resolver.lastReq.ConversationID)
}

func TestQuoteEndpoint(t *testing.T) {
	h := newTestHandler(&fakeResolver{}, &fakeQuotes{quote: market.Quote{Price: 123.45, Currency: "USD"}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quotes/msft", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var q market.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, "msft", q.Symbol)
	assert.Equal(t, 123.45, q.Price)
}

func TestQuoteNotConfigured(t *testing.T) {
	h := newTestHandler(&fakeResolver{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quotes/MSFT", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(&fakeResolver{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
