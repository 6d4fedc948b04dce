// Package tokenizer provides a production metacontext.Tokenizer backed by
// the Anthropic Messages API's count_tokens endpoint, for callers who want
// working-memory budgets measured against the model that will actually
// consume the text rather than the engine's built-in character heuristic.
package tokenizer

import (
	"context"
	"strings"
	"sync"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"metacontext/internal/observability"
)

// AnthropicTokenizer counts tokens via /v1/messages/count_tokens, caching
// results by exact text so repeated synthesis of the same section does not
// re-hit the API.
type AnthropicTokenizer struct {
	sdk   anthropic.Client
	model string

	mu    sync.Mutex
	cache map[string]int
}

// New builds a tokenizer that counts tokens for model using sdk.
func New(sdk anthropic.Client, model string) *AnthropicTokenizer {
	return &AnthropicTokenizer{
		sdk:   sdk,
		model: model,
		cache: make(map[string]int),
	}
}

// CountTokens implements metacontext.Tokenizer.
func (t *AnthropicTokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	t.mu.Lock()
	if n, ok := t.cache[text]; ok {
		t.mu.Unlock()
		return n, nil
	}
	t.mu.Unlock()

	log := observability.LoggerWithTrace(ctx)

	params := anthropic.MessageCountTokensParams{
		Model: anthropic.Model(t.model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	result, err := t.sdk.Messages.CountTokens(ctx, params)
	if err != nil {
		log.Warn().Err(err).Str("model", t.model).Msg("metacontext: anthropic count_tokens failed")
		return 0, err
	}

	n := int(result.InputTokens)
	t.mu.Lock()
	t.cache[text] = n
	t.mu.Unlock()

	log.Debug().Int("tokens", n).Str("model", t.model).Msg("metacontext: anthropic count_tokens ok")
	return n, nil
}
