package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "CHAPTER 1\n1.1 Introduction\nSome intro text.\n1.2 Background\nMore text."

func writeDoc(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// Offline runs: an unknown encoding falls back to the word estimator.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(append([]string{"-encoding", "offline"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_Tables(t *testing.T) {
	out, err := runCLI(t, writeDoc(t, "notes.txt", sampleDoc))
	require.NoError(t, err)

	assert.Contains(t, out, "notes.txt: 3 chunks (estimate)")
	assert.Contains(t, out, "1.2 Background")
	assert.Contains(t, out, "Section averages")
	assert.Contains(t, out, "Unnamed Section")
	assert.Contains(t, out, "Total chunks: 3")
}

func TestRun_JSON(t *testing.T) {
	out, err := runCLI(t, "-json", writeDoc(t, "notes.txt", sampleDoc))
	require.NoError(t, err)

	var res pipeline.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Chunks, 3)
	assert.Equal(t, "More text.", res.Chunks[2].Content)
}

func TestRun_Bundle(t *testing.T) {
	out, err := runCLI(t, "-chunk", "2", writeDoc(t, "notes.txt", sampleDoc))
	require.NoError(t, err)
	assert.Contains(t, out, "Section: 1.1 Introduction")
	assert.Contains(t, out, "Content:\nSome intro text.\n")

	_, err = runCLI(t, "-chunk", "9", writeDoc(t, "notes.txt", sampleDoc))
	assert.EqualError(t, err, "chunk 9 out of range (1-3)")
}

func TestRun_Errors(t *testing.T) {
	_, err := runCLI(t, writeDoc(t, "plain.txt", "no headings"))
	assert.ErrorIs(t, err, chunker.ErrNoStructure)

	_, err = runCLI(t)
	assert.Error(t, err)

	_, err = runCLI(t, filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
