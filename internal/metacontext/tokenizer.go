package metacontext

import "context"

// Tokenizer estimates how many tokens a piece of text would consume in a
// downstream model's context window. Implementations may call out to a real
// tokenizer or model API; synthesizeWorkingMemory budgets against whatever
// this returns.
type Tokenizer interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// approxTokenizer is the zero-configuration default: a character-count
// heuristic (roughly four characters per token for English prose) good
// enough to budget against when no production tokenizer is wired in.
type approxTokenizer struct{}

func (approxTokenizer) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n, nil
}

func defaultTokenizer() Tokenizer { return approxTokenizer{} }
