package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	data := []byte("hello world")
	job := NewJob("notes.txt", data)

	if job.ID == "" {
		t.Fatal("expected a job ID")
	}
	if job.DocID != "b94d27b9934d3e08" {
		t.Errorf("expected doc ID from content hash, got %q", job.DocID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if string(job.FileData()) != "hello world" {
		t.Errorf("expected file data to be kept until processing")
	}

	other := NewJob("notes.txt", data)
	if other.ID == job.ID {
		t.Error("expected unique job IDs for repeated uploads")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("doc.txt", []byte("x"))

	for _, status := range []JobStatus{StatusExtracting, StatusChunking, StatusCounting} {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(status, string(status))

		snap := job.Snapshot()
		if snap.Status != status || snap.Phase != string(status) {
			t.Errorf("expected %q/%q, got %q/%q", status, status, snap.Status, snap.Phase)
		}
		if !snap.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", status)
		}
		if status.Done() {
			t.Errorf("%q should not be terminal", status)
		}
	}
}

func TestJob_Complete(t *testing.T) {
	job := NewJob("doc.txt", []byte("x"))
	res := &Analysis{Chunks: make([]chunker.Chunk, 3)}
	job.Complete(res)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || !snap.Status.Done() {
		t.Errorf("expected completed status, got %q", snap.Status)
	}
	if snap.Progress.TotalChunks != 3 {
		t.Errorf("expected 3 total chunks, got %d", snap.Progress.TotalChunks)
	}
	got, err := job.Result()
	if err != nil || got != res {
		t.Errorf("expected stored result, got %v, %v", got, err)
	}
	if job.FileData() != nil {
		t.Error("expected upload bytes to be released")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("doc.txt", []byte("x"))
	cause := errors.New("boom")
	job.Fail("chunking", cause)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "chunking" {
		t.Errorf("expected failed/chunking, got %q/%q", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "boom" {
		t.Errorf("unexpected errors %v", snap.Progress.Errors)
	}
	res, err := job.Result()
	if res != nil || !errors.Is(err, cause) {
		t.Errorf("expected failure to be kept, got %v, %v", res, err)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("first")
	job.AddError("second")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "first" {
		t.Errorf("expected first error %q, got %q", "first", snap.Progress.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("store-1"); got == nil || got.ID != "store-1" {
		t.Fatalf("expected to get job back, got %v", got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	store.Put(&Job{ID: "old", UpdatedAt: time.Now()})
	time.Sleep(100 * time.Millisecond)
	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
