package answer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerplexityAnswerParsesSearchResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "sonar", payload["model"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"content": "Rates were held steady."}}],
			"search_results": [
				{"title": "Fed statement", "url": "https://example.com/fed", "date": "2026-08-01"}
			]
		}`))
	}))
	defer server.Close()

	p := NewPerplexity(server.URL, "test-key", "sonar")
	res, err := p.Answer(context.Background(), "what did the fed do")

	require.NoError(t, err)
	assert.Equal(t, "Rates were held steady.", res.Text)
	require.Len(t, res.References, 1)
	assert.Equal(t, "Fed statement", res.References[0].Title)
	assert.Equal(t, "2026-08-01", res.References[0].Date)
}

func TestPerplexityAnswerFallsBackToMarkdownLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "See [source](https://example.com/s)."}}]}`))
	}))
	defer server.Close()

	p := NewPerplexity(server.URL, "k", "sonar")
	res, err := p.Answer(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, res.References, 1)
	assert.Equal(t, "https://example.com/s", res.References[0].Link)
}

func TestPerplexityAnswerNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewPerplexity(server.URL, "k", "sonar")
	_, err := p.Answer(context.Background(), "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTavilyAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		w.Write([]byte(`{
			"answer": "Diversification spreads risk.",
			"results": [{"title": "Investopedia", "url": "https://example.com/d", "content": "snippet"}]
		}`))
	}))
	defer server.Close()

	tv := NewTavily(server.URL, "k")
	res, err := tv.Answer(context.Background(), "what is diversification")

	require.NoError(t, err)
	assert.Equal(t, "Diversification spreads risk.", res.Text)
	require.Len(t, res.References, 1)
	assert.Equal(t, "snippet", res.References[0].Snippet)
}

func TestTavilyEmptyAnswerIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer": "", "results": []}`))
	}))
	defer server.Close()

	tv := NewTavily(server.URL, "k")
	_, err := tv.Answer(context.Background(), "q")

	require.Error(t, err)
}

func TestOpenAIAnswerHasNoReferences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Write([]byte(`{"choices": [{"message": {"content": "A broad answer."}}]}`))
	}))
	defer server.Close()

	o := NewOpenAI(server.URL, "k", "gpt-4o-mini")
	res, err := o.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "A broad answer.", res.Text)
	assert.Empty(t, res.References)
}
