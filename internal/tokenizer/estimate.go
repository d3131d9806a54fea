package tokenizer

import "strings"

// Estimator gives a rough token count from the word count. Used when no
// BPE encoding is available.
type Estimator struct{}

func (Estimator) Count(text string) int { return EstimateTokens(text) }

func (Estimator) Name() string { return "estimate" }

// EstimateTokens approximates tokens as 1.33 per word, with at least one
// token for any non-empty text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
