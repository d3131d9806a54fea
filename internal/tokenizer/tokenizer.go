// Package tokenizer counts tokens, words and characters in chunk text.
package tokenizer

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used for token statistics.
const DefaultEncoding = "cl100k_base"

// Counter returns the number of tokens in a piece of text.
type Counter interface {
	Count(text string) int
	Name() string
}

// Tiktoken counts tokens with a BPE encoding. Build one with NewTiktoken
// and share it; encoding tables are loaded once.
type Tiktoken struct {
	name string
	enc  *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding. The first load for an encoding
// downloads its rank file unless TIKTOKEN_CACHE_DIR already holds it.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{name: encoding, enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tiktoken) Name() string { return t.name }

// New returns a Tiktoken counter for encoding, or an Estimator when the
// encoding cannot be loaded.
func New(encoding string, log *slog.Logger) Counter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	tk, err := NewTiktoken(encoding)
	if err != nil {
		log.Warn("falling back to token estimator", "encoding", encoding, "error", err)
		return Estimator{}
	}
	return tk
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountChars counts Unicode code points.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}
