package report

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordCounter struct{}

func (wordCounter) Count(text string) int { return tokenizer.CountWords(text) }
func (wordCounter) Name() string          { return "words" }

func mustChunk(t *testing.T, text string) []chunker.Chunk {
	t.Helper()
	chunks, err := chunker.Split(text)
	require.NoError(t, err)
	return chunks
}

func TestBuild_Scenario(t *testing.T) {
	chunks := mustChunk(t, "CHAPTER 1\n1.1 Introduction\nSome intro text.\n1.2 Background\nMore text.")

	r, err := Build(context.Background(), chunks, wordCounter{}, 4)
	require.NoError(t, err)

	assert.Equal(t, "words", r.Encoding)
	require.Len(t, r.Chunks, 3)

	assert.Equal(t, 1, r.Chunks[0].Index)
	assert.Equal(t, UnnamedSection, r.Chunks[0].Section)
	assert.Equal(t, 0, r.Chunks[0].Tokens)

	intro := r.Chunks[1]
	assert.Equal(t, "1.1 Introduction", intro.Section)
	assert.Equal(t, "CHAPTER 1", intro.Chapter)
	assert.Equal(t, 16, intro.Chars)
	assert.Equal(t, 3, intro.Words)
	assert.Equal(t, 3, intro.Tokens)
	assert.InDelta(t, 3.0, intro.SectionAvgTokens, 1e-9)

	assert.Equal(t, Totals{
		Chunks:            3,
		Chars:             16 + 10,
		Words:             5,
		Tokens:            5,
		AvgTokensPerChunk: 5.0 / 3.0,
	}, r.Totals)

	avg, ok := r.AvgTokensFor("1.2 Background")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, avg, 1e-9)
	_, ok = r.AvgTokensFor("missing")
	assert.False(t, ok)
}

func TestSectionAverages_GroupsByLabel(t *testing.T) {
	chunks := []chunker.Chunk{
		{Content: "a"},
		{Section: "1.1 One", Content: "b"},
		{Section: "1.1 One", Subsection: "1.1.1 Deep", Content: "c"},
		{Content: "d"},
	}
	tokens := []int{4, 10, 20, 6}

	got := SectionAverages(chunks, tokens)
	assert.Equal(t, []SectionAverage{
		{Section: UnnamedSection, Chunks: 2, TotalTokens: 10, AvgTokens: 5},
		{Section: "1.1 One", Chunks: 2, TotalTokens: 30, AvgTokens: 15},
	}, got)
}

func TestBuild_Empty(t *testing.T) {
	r, err := Build(context.Background(), nil, tokenizer.Estimator{}, 2)
	require.NoError(t, err)
	assert.Empty(t, r.Chunks)
	assert.Empty(t, r.Sections)
	assert.Zero(t, r.Totals.AvgTokensPerChunk)
}

func TestBuild_Cancelled(t *testing.T) {
	chunks := mustChunk(t, "1.1 One\nBody.\n1.2 Two\nMore body.")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, chunks, tokenizer.Estimator{}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "1.1 One", DisplayTitle(chunker.Chunk{Section: "1.1 One", Subsection: "1.1.1 Deep"}))
	assert.Equal(t, "1.1.1 Deep", DisplayTitle(chunker.Chunk{Subsection: "1.1.1 Deep"}))
	assert.Equal(t, UnnamedSection, DisplayTitle(chunker.Chunk{}))
}

func TestWriteBundle(t *testing.T) {
	c := chunker.Chunk{
		Chapter: "CHAPTER 2",
		Section: "2.1 Beta",
		Content: "Body text here.",
	}
	st := ChunkStats{Chars: 1500, Words: 3, Tokens: 4, SectionAvgTokens: 4}

	var sb strings.Builder
	require.NoError(t, WriteBundle(&sb, st, c))
	out := sb.String()

	assert.Contains(t, out, "Chapter: CHAPTER 2\n")
	assert.Contains(t, out, "Unit: None\n")
	assert.Contains(t, out, "Subsection: None\n")
	assert.Contains(t, out, "Characters: 1,500\n")
	assert.Contains(t, out, "Section Average Tokens: 4.0\n")
	assert.True(t, strings.HasSuffix(out, "Content:\nBody text here.\n"))
}

func TestBundleFilename(t *testing.T) {
	assert.Equal(t, "chunk_7.txt", BundleFilename(7))
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "999", FormatInt(999))
	assert.Equal(t, "1,234,567", FormatInt(1234567))
}
