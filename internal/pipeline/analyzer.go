package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/metrics"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/report"
	"github.com/dgallion1/docchunk/internal/tokenizer"
)

// Analysis is the full result of analyzing one document.
type Analysis struct {
	DocID       string          `json:"doc_id"`
	Filename    string          `json:"filename"`
	ContentHash string          `json:"content_hash"`
	Chunks      []chunker.Chunk `json:"chunks"`
	Report      *report.Report  `json:"report"`
	DurationMs  int64           `json:"duration_ms"`
}

// Analyzer runs extraction, chunking and token counting for a document.
// It is safe for concurrent use.
type Analyzer struct {
	counter     tokenizer.Counter
	parserOpts  parser.Options
	concurrency int
	stats       *LatencyStats
	log         *slog.Logger
}

func NewAnalyzer(counter tokenizer.Counter, parserOpts parser.Options, concurrency int, stats *LatencyStats, log *slog.Logger) *Analyzer {
	if stats == nil {
		stats = NewLatencyStats(time.Hour)
	}
	return &Analyzer{
		counter:     counter,
		parserOpts:  parserOpts,
		concurrency: concurrency,
		stats:       stats,
		log:         log,
	}
}

// Stats returns the rolling latency window for completed analyses.
func (a *Analyzer) Stats() *LatencyStats {
	return a.stats
}

// Encoding names the token counter in use.
func (a *Analyzer) Encoding() string {
	return a.counter.Name()
}

// Analyze processes data as the document named filename. progress, if
// non-nil, is called as each phase starts. Extraction failures wrap
// parser.ErrExtraction and structureless text returns
// chunker.ErrNoStructure.
func (a *Analyzer) Analyze(ctx context.Context, filename string, data []byte, progress func(JobStatus)) (*Analysis, error) {
	start := time.Now()
	res, err := a.analyze(ctx, filename, data, progress)

	elapsed := time.Since(start)
	metrics.AnalysisDuration.Observe(elapsed.Seconds())
	metrics.DocumentsAnalyzed.WithLabelValues(ResultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	a.stats.Record(elapsed.Milliseconds())
	res.DurationMs = elapsed.Milliseconds()
	for _, c := range res.Chunks {
		metrics.ChunksProduced.WithLabelValues(string(c.Metadata.Kind)).Inc()
	}
	metrics.TokensCounted.Add(float64(res.Report.Totals.Tokens))
	a.log.Debug("analysis complete",
		"filename", filename,
		"chunks", len(res.Chunks),
		"tokens", res.Report.Totals.Tokens,
		"duration_ms", res.DurationMs,
	)
	return res, nil
}

func (a *Analyzer) analyze(ctx context.Context, filename string, data []byte, progress func(JobStatus)) (*Analysis, error) {
	step := func(s JobStatus) {
		if progress != nil {
			progress(s)
		}
	}

	step(StatusExtracting)
	text, err := parser.ExtractFile(bytes.NewReader(data), filename, a.parserOpts)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	step(StatusChunking)
	chunks, err := chunker.Split(text)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}

	step(StatusCounting)
	rep, err := report.Build(ctx, chunks, a.counter, a.concurrency)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		DocID:       ContentHashHex(data)[:16],
		Filename:    filename,
		ContentHash: ContentHashHex([]byte(text)),
		Chunks:      chunks,
		Report:      rep,
	}, nil
}

// ResultLabel classifies an analysis error for metrics and logs.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, chunker.ErrNoStructure):
		return "no_structure"
	case errors.Is(err, parser.ErrExtraction):
		return "extraction_failed"
	case errors.Is(err, parser.ErrUnsupported):
		return "unsupported"
	}
	return "failed"
}
