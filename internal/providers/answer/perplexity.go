package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sandevgo/vidquery/internal/core"
)

// Perplexity performs its own web retrieval and returns a synthesized
// answer plus source snippets.
type Perplexity struct {
	baseProvider
	model string
}

func NewPerplexity(baseURL, apiKey, model string) *Perplexity {
	return &Perplexity{
		baseProvider: newBaseProvider(baseURL, apiKey),
		model:        model,
	}
}

func (p *Perplexity) Name() string { return "perplexity" }

func (p *Perplexity) Answer(ctx context.Context, question string) (core.ProviderAnswer, error) {
	payload := map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemInstruction},
			{"role": "user", "content": question},
		},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}

	resp, err := p.doRequest(ctx, http.MethodPost, "/chat/completions", payload, headers)
	if err != nil {
		return core.ProviderAnswer{}, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return core.ProviderAnswer{}, err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Citations     []string `json:"citations"`
		SearchResults []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
			Date  string `json:"date"`
		} `json:"search_results"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.ProviderAnswer{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.ProviderAnswer{}, fmt.Errorf("empty choices: %s", string(data))
	}

	text := result.Choices[0].Message.Content

	// Prefer structured results, fall back to bare citation URLs, then to
	// links embedded in the answer markdown.
	var refs []core.Reference
	for _, sr := range result.SearchResults {
		refs = append(refs, core.Reference{Title: sr.Title, Link: sr.URL, Date: sr.Date})
	}
	if len(refs) == 0 {
		for _, c := range result.Citations {
			refs = append(refs, core.Reference{Title: hostOf(c), Link: c})
		}
	}
	if len(refs) == 0 {
		refs = ExtractMarkdownRefs(text)
	}

	return core.ProviderAnswer{Text: text, References: refs}, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
