package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "CHAPTER 1\n1.1 Introduction\nSome intro text.\n1.2 Background\nMore text."

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(tokenizer.Estimator{}, parser.Options{}, 2, NewLatencyStats(time.Hour), testLogger())
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := newTestAnalyzer()

	var phases []JobStatus
	res, err := a.Analyze(context.Background(), "doc.txt", []byte(sampleDoc), func(s JobStatus) {
		phases = append(phases, s)
	})
	require.NoError(t, err)

	assert.Equal(t, []JobStatus{StatusExtracting, StatusChunking, StatusCounting}, phases)
	assert.Equal(t, "doc.txt", res.Filename)
	assert.Equal(t, ContentHashHex([]byte(sampleDoc))[:16], res.DocID)
	require.Len(t, res.Chunks, 3)
	assert.Equal(t, "More text.", res.Chunks[2].Content)
	assert.Equal(t, "estimate", res.Report.Encoding)
	assert.Equal(t, 3, res.Report.Totals.Chunks)
	assert.Equal(t, 1, a.Stats().Snapshot().Count)
}

func TestAnalyzer_NoStructure(t *testing.T) {
	a := newTestAnalyzer()
	_, err := a.Analyze(context.Background(), "plain.txt", []byte("just prose"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, chunker.ErrNoStructure)
	assert.Equal(t, "no_structure", ResultLabel(err))
	assert.Zero(t, a.Stats().Snapshot().Count, "failed analyses are not timed")
}

func TestAnalyzer_ExtractionFailure(t *testing.T) {
	a := newTestAnalyzer()
	_, err := a.Analyze(context.Background(), "broken.docx", []byte("not a zip"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrExtraction)
	assert.Equal(t, "extraction_failed", ResultLabel(err))
}

func TestAnalyzer_Unsupported(t *testing.T) {
	a := newTestAnalyzer()
	_, err := a.Analyze(context.Background(), "sheet.xlsx", []byte("x"), nil)
	assert.ErrorIs(t, err, parser.ErrUnsupported)
	assert.Equal(t, "unsupported", ResultLabel(err))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "completed", ResultLabel(nil))
	assert.Equal(t, "failed", ResultLabel(context.Canceled))
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	o := NewOrchestrator(newTestAnalyzer(), 2, 10, time.Hour, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	good := NewJob("doc.txt", []byte(sampleDoc))
	bad := NewJob("plain.txt", []byte("no headings here"))
	require.NoError(t, o.Submit(good))
	require.NoError(t, o.Submit(bad))

	waitDone(t, good)
	waitDone(t, bad)

	res, err := good.Result()
	require.NoError(t, err)
	assert.Len(t, res.Chunks, 3)
	assert.Equal(t, StatusCompleted, good.Snapshot().Status)

	_, err = bad.Result()
	assert.ErrorIs(t, err, chunker.ErrNoStructure)
	snap := bad.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, string(StatusChunking), snap.Phase)

	assert.Same(t, good, o.GetJob(good.ID))
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// Not started: nothing drains the queue.
	o := NewOrchestrator(newTestAnalyzer(), 1, 1, time.Hour, testLogger())

	require.NoError(t, o.Submit(NewJob("a.txt", []byte(sampleDoc))))
	overflow := NewJob("b.txt", []byte(sampleDoc))
	require.Error(t, o.Submit(overflow))
	assert.Equal(t, StatusFailed, overflow.Snapshot().Status)
	assert.Equal(t, 1, o.QueueDepth())
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(newTestAnalyzer(), 1, 1, time.Hour, testLogger())
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	assert.ErrorIs(t, o.Submit(NewJob("a.txt", []byte(sampleDoc))), ErrStopped)
}

func waitDone(t *testing.T, job *Job) {
	t.Helper()
	require.Eventually(t, func() bool {
		return job.Snapshot().Status.Done()
	}, 5*time.Second, 5*time.Millisecond)
}
