package pipeline

import (
	"context"
	"log/slog"
)

// Worker processes a single document job.
type Worker struct {
	analyzer *Analyzer
	log      *slog.Logger
}

func NewWorker(analyzer *Analyzer, log *slog.Logger) *Worker {
	return &Worker{analyzer: analyzer, log: log}
}

// Process runs the full analysis for a job. Failures are recorded on the
// job; Process never panics on bad input.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	phase := string(StatusQueued)
	res, err := w.analyzer.Analyze(ctx, job.Filename, job.FileData(), func(s JobStatus) {
		phase = string(s)
		job.SetStatus(s, phase)
	})
	if err != nil {
		log.Error("analysis failed", "phase", phase, "result", ResultLabel(err), "error", err)
		job.Fail(phase, err)
		return
	}

	job.Complete(res)
	log.Info("analysis complete",
		"chunks", len(res.Chunks),
		"tokens", res.Report.Totals.Tokens,
		"duration_ms", res.DurationMs,
	)
}
