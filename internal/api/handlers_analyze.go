package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/report"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	job := pipeline.NewJob(filename, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/analyze/%s/status", job.ID),
	})
}

func (s *Server) handleAnalyzeSync(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	res, err := s.orchestrator.Analyzer().Analyze(r.Context(), filename, data, nil)
	if err != nil {
		s.log.Warn("sync analysis failed", "filename", filename, "result", pipeline.ResultLabel(err), "error", err)
		analysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	job := s.lookupJob(w, r)
	if job == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	res := s.finishedAnalysis(w, r)
	if res == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	res := s.finishedAnalysis(w, r)
	if res == nil {
		return
	}
	c, st, ok := chunkAt(w, r, res)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"title": report.DisplayTitle(c),
		"chunk": c,
		"stats": st,
	})
}

func (s *Server) handleChunkDownload(w http.ResponseWriter, r *http.Request) {
	res := s.finishedAnalysis(w, r)
	if res == nil {
		return
	}
	c, st, ok := chunkAt(w, r, res)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.BundleFilename(st.Index)))
	if err := report.WriteBundle(w, st, c); err != nil {
		s.log.Error("write bundle", "job_id", chi.URLParam(r, "jobID"), "chunk", st.Index, "error", err)
	}
}

// readUpload pulls the "file" part out of a multipart request. On failure
// it has already written the error response.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", nil, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

func (s *Server) lookupJob(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

// finishedAnalysis returns the job's analysis, or writes 404, 409 or the
// job's failure and returns nil.
func (s *Server) finishedAnalysis(w http.ResponseWriter, r *http.Request) *pipeline.Analysis {
	job := s.lookupJob(w, r)
	if job == nil {
		return nil
	}
	res, err := job.Result()
	if err != nil {
		analysisError(w, err)
		return nil
	}
	if res == nil {
		jsonError(w, fmt.Sprintf("job is %s", job.Snapshot().Status), http.StatusConflict)
		return nil
	}
	return res
}

// chunkAt resolves the 1-based {n} path parameter.
func chunkAt(w http.ResponseWriter, r *http.Request, res *pipeline.Analysis) (chunker.Chunk, report.ChunkStats, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		jsonError(w, "chunk number must be an integer", http.StatusBadRequest)
		return chunker.Chunk{}, report.ChunkStats{}, false
	}
	if n < 1 || n > len(res.Chunks) {
		jsonError(w, fmt.Sprintf("chunk %d out of range (1-%d)", n, len(res.Chunks)), http.StatusNotFound)
		return chunker.Chunk{}, report.ChunkStats{}, false
	}
	return res.Chunks[n-1], res.Report.Chunks[n-1], true
}

func analysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chunker.ErrNoStructure):
		jsonError(w, chunker.ErrNoStructure.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, parser.ErrExtraction):
		jsonError(w, parser.ErrExtraction.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, parser.ErrUnsupported):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
