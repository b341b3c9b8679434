package telegram

import (
	"bytes"
	"errors"
	"os"
	"testing"
)

// brokenReader fails partway through the copy.
type brokenReader struct {
	served bool
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if r.served {
		return 0, errors.New("connection reset")
	}
	r.served = true
	n := copy(p, []byte("partial"))
	return n, nil
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp file left behind: %v", entries)
	}
}

func TestStageDocumentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("jpeg bytes")

	data, err := stageDocument(dir, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("stageDocument failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("staged data = %q, want %q", data, payload)
	}

	assertEmptyDir(t, dir)
}

func TestStageDocumentRemovesFileOnCopyFailure(t *testing.T) {
	dir := t.TempDir()

	_, err := stageDocument(dir, &brokenReader{})
	if err == nil {
		t.Fatal("expected an error from the broken reader")
	}

	assertEmptyDir(t, dir)
}

func TestStageDocumentFailsOnMissingDir(t *testing.T) {
	_, err := stageDocument("/nonexistent/dir", bytes.NewReader([]byte("x")))
	if err == nil {
		t.Fatal("expected an error when the directory cannot be used")
	}
}
