package report

import (
	"fmt"
	"io"

	"github.com/dgallion1/docchunk/internal/chunker"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// BundleFilename is the download name for the 1-based chunk index.
func BundleFilename(index int) string {
	return fmt.Sprintf("chunk_%d.txt", index)
}

// WriteBundle renders a chunk and its metrics as a standalone text file.
func WriteBundle(w io.Writer, st ChunkStats, c chunker.Chunk) error {
	_, err := printer.Fprintf(w, `Metadata:
Chapter: %s
Unit: %s
Section: %s
Subsection: %s

Content Metrics:
Characters: %d
Words: %d
Tokens: %d
Section Average Tokens: %.1f

Content:
%s
`,
		orNone(c.Chapter), orNone(c.Unit), orNone(c.Section), orNone(c.Subsection),
		st.Chars, st.Words, st.Tokens, st.SectionAvgTokens,
		c.Content)
	return err
}

// FormatInt renders n with thousands separators.
func FormatInt(n int) string {
	return printer.Sprintf("%d", n)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
