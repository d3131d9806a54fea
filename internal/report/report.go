// Package report computes per-chunk and per-section size statistics for
// a chunked document.
package report

import (
	"context"
	"fmt"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/tokenizer"
	"golang.org/x/sync/errgroup"
)

// UnnamedSection labels chunks with no enclosing section.
const UnnamedSection = "Unnamed Section"

// ChunkStats holds the size metrics of one chunk.
type ChunkStats struct {
	Index            int     `json:"index"` // 1-based
	Chapter          string  `json:"chapter,omitempty"`
	Unit             string  `json:"unit,omitempty"`
	Section          string  `json:"section"`
	Subsection       string  `json:"subsection,omitempty"`
	Chars            int     `json:"chars"`
	Words            int     `json:"words"`
	Tokens           int     `json:"tokens"`
	SectionAvgTokens float64 `json:"section_avg_tokens"`
}

// SectionAverage is the mean token count of the chunks sharing a section label.
type SectionAverage struct {
	Section     string  `json:"section"`
	Chunks      int     `json:"chunks"`
	TotalTokens int     `json:"total_tokens"`
	AvgTokens   float64 `json:"avg_tokens"`
}

// Totals aggregates the whole document.
type Totals struct {
	Chunks            int     `json:"chunks"`
	Chars             int     `json:"chars"`
	Words             int     `json:"words"`
	Tokens            int     `json:"tokens"`
	AvgTokensPerChunk float64 `json:"avg_tokens_per_chunk"`
}

// Report is the statistics view over a chunk sequence.
type Report struct {
	Encoding string           `json:"encoding"`
	Chunks   []ChunkStats     `json:"chunks"`
	Sections []SectionAverage `json:"sections"`
	Totals   Totals           `json:"totals"`
}

// SectionLabel returns the chunk's section, or UnnamedSection.
func SectionLabel(c chunker.Chunk) string {
	if c.Section != "" {
		return c.Section
	}
	return UnnamedSection
}

// DisplayTitle names a chunk for listings: its section, else its
// subsection, else UnnamedSection.
func DisplayTitle(c chunker.Chunk) string {
	switch {
	case c.Section != "":
		return c.Section
	case c.Subsection != "":
		return c.Subsection
	}
	return UnnamedSection
}

// Build counts tokens for every chunk, at most concurrency at a time,
// and aggregates the results.
func Build(ctx context.Context, chunks []chunker.Chunk, counter tokenizer.Counter, concurrency int) (*Report, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	tokens := make([]int, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range chunks {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tokens[i] = counter.Count(chunks[i].Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count tokens: %w", err)
	}

	return assemble(chunks, tokens, counter.Name()), nil
}

func assemble(chunks []chunker.Chunk, tokens []int, encoding string) *Report {
	r := &Report{
		Encoding: encoding,
		Chunks:   make([]ChunkStats, 0, len(chunks)),
		Sections: SectionAverages(chunks, tokens),
	}

	avg := make(map[string]float64, len(r.Sections))
	for _, s := range r.Sections {
		avg[s.Section] = s.AvgTokens
	}

	for i, c := range chunks {
		label := SectionLabel(c)
		st := ChunkStats{
			Index:            i + 1,
			Chapter:          c.Chapter,
			Unit:             c.Unit,
			Section:          label,
			Subsection:       c.Subsection,
			Chars:            tokenizer.CountChars(c.Content),
			Words:            tokenizer.CountWords(c.Content),
			Tokens:           tokens[i],
			SectionAvgTokens: avg[label],
		}
		r.Chunks = append(r.Chunks, st)
		r.Totals.Chars += st.Chars
		r.Totals.Words += st.Words
		r.Totals.Tokens += st.Tokens
	}

	r.Totals.Chunks = len(chunks)
	if len(chunks) > 0 {
		r.Totals.AvgTokensPerChunk = float64(r.Totals.Tokens) / float64(len(chunks))
	}
	return r
}

// SectionAverages groups token counts by section label, in the order
// each label first appears. tokens[i] belongs to chunks[i].
func SectionAverages(chunks []chunker.Chunk, tokens []int) []SectionAverage {
	var out []SectionAverage
	idx := make(map[string]int)
	for i, c := range chunks {
		label := SectionLabel(c)
		j, ok := idx[label]
		if !ok {
			j = len(out)
			idx[label] = j
			out = append(out, SectionAverage{Section: label})
		}
		out[j].Chunks++
		out[j].TotalTokens += tokens[i]
	}
	for i := range out {
		out[i].AvgTokens = float64(out[i].TotalTokens) / float64(out[i].Chunks)
	}
	return out
}

// AvgTokensFor returns the average tokens recorded for a section label.
func (r *Report) AvgTokensFor(label string) (float64, bool) {
	for _, s := range r.Sections {
		if s.Section == label {
			return s.AvgTokens, true
		}
	}
	return 0, false
}
