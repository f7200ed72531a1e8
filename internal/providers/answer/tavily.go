package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sandevgo/vidquery/internal/core"
)

// Tavily is a search API that returns a short synthesized answer alongside
// the raw search results.
type Tavily struct {
	baseProvider
}

func NewTavily(baseURL, apiKey string) *Tavily {
	return &Tavily{baseProvider: newBaseProvider(baseURL, apiKey)}
}

func (t *Tavily) Name() string { return "tavily" }

func (t *Tavily) Answer(ctx context.Context, question string) (core.ProviderAnswer, error) {
	payload := map[string]any{
		"query":          question,
		"include_answer": true,
		"max_results":    5,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + t.apiKey,
	}

	resp, err := t.doRequest(ctx, http.MethodPost, "/search", payload, headers)
	if err != nil {
		return core.ProviderAnswer{}, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return core.ProviderAnswer{}, err
	}

	var result struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.ProviderAnswer{}, fmt.Errorf("decode: %w", err)
	}
	if strings.TrimSpace(result.Answer) == "" {
		return core.ProviderAnswer{}, fmt.Errorf("empty answer: %s", string(data))
	}

	refs := make([]core.Reference, 0, len(result.Results))
	for _, r := range result.Results {
		refs = append(refs, core.Reference{Title: r.Title, Link: r.URL, Snippet: r.Content})
	}

	return core.ProviderAnswer{Text: result.Answer, References: refs}, nil
}
