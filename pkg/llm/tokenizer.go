package llm

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens client-side so prompts can be capped before they
// leave the process.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer creates a tokenizer using the cl100k_base encoding, which
// covers the GPT-4 family.
func NewTokenizer() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	return &Tokenizer{encoding: enc}, nil
}

// CountTokens returns the token count for the given text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// approximateTokens estimates token count at four characters per token.
// Used when the tokenizer's encoding data is unavailable.
func approximateTokens(text string) int {
	return len(text) / 4
}

// truncateToTokens trims text so that count(text) stays at or below limit.
// Trimming is done by a proportional cut then a linear walk back, which is
// close enough for prompt capping.
func truncateToTokens(text string, limit int, count func(string) int) string {
	if limit <= 0 || count(text) <= limit {
		return text
	}

	runes := []rune(text)
	// Start from a proportional guess and shrink until under the limit.
	cut := len(runes) * limit / count(text)
	if cut > len(runes) {
		cut = len(runes)
	}
	for cut > 0 && count(string(runes[:cut])) > limit {
		step := cut / 10
		if step == 0 {
			step = 1
		}
		cut -= step
	}
	return string(runes[:cut])
}
