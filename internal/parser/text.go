package parser

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// TextExtractor handles plain text files. Input must be valid UTF-8.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", extractionError("txt", err)
	}
	if !utf8.Valid(data) {
		return "", extractionError("txt", errors.New("invalid UTF-8"))
	}
	return normalizeNewlines(strings.TrimPrefix(string(data), "\ufeff")), nil
}
