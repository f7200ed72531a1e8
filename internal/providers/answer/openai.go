package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/vidquery/internal/core"
)

// OpenAI is the knowledge-only last tier: a plain chat completion with no
// retrieval, so it returns no references.
type OpenAI struct {
	baseProvider
	model string
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	return &OpenAI{
		baseProvider: newBaseProvider(baseURL, apiKey),
		model:        model,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Answer(ctx context.Context, question string) (core.ProviderAnswer, error) {
	payload := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemInstruction},
			{"role": "user", "content": question},
		},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
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
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.ProviderAnswer{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.ProviderAnswer{}, fmt.Errorf("empty choices: %s", string(data))
	}

	return core.ProviderAnswer{Text: result.Choices[0].Message.Content}, nil
}
