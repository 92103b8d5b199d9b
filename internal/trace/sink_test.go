package trace

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if sc.Text() != "" {
			lines = append(lines, sc.Text())
		}
	}
	return lines
}

func TestSink_EmitBuffersNonCriticalEventsUntilFlush(t *testing.T) {
	root := t.TempDir()
	s := Open(root, 1)
	defer s.Close()

	s.Emit(DesignEvent(1, "Widget.name", "StringStrategy", "hello"))
	path := filepath.Join(root, "logs", "workers", "worker-1.ndjson")
	if lines := readLines(t, path); len(lines) != 0 {
		t.Fatalf("expected design event to stay buffered, found %d lines on disk", len(lines))
	}

	s.ForceFlush()
	if lines := readLines(t, path); len(lines) != 1 {
		t.Fatalf("expected 1 line after flush, got %d", len(lines))
	}
}

func TestSink_EmitFlushesImmediatelyForCriticalEvents(t *testing.T) {
	root := t.TempDir()
	s := Open(root, 2)
	defer s.Close()

	s.Emit(ExecutionEvent(1, "run", nil, 3))
	path := filepath.Join(root, "logs", "workers", "worker-2.ndjson")
	if lines := readLines(t, path); len(lines) != 1 {
		t.Fatalf("expected execution event to flush immediately, got %d lines", len(lines))
	}
	if s.LastDigest() == "" {
		t.Fatalf("expected a non-empty digest after a direct write")
	}
}

func TestSink_ResetTruncatesJournal(t *testing.T) {
	root := t.TempDir()
	s := Open(root, 3)
	defer s.Close()

	s.Emit(VerdictEvent(1, "Passed", 10))
	path := filepath.Join(root, "logs", "workers", "worker-3.ndjson")
	if lines := readLines(t, path); len(lines) != 1 {
		t.Fatalf("expected 1 line before reset, got %d", len(lines))
	}
	s.Reset()
	if lines := readLines(t, path); len(lines) != 0 {
		t.Fatalf("expected 0 lines after reset, got %d", len(lines))
	}
}

func TestSink_SnapshotToCopiesJournalContent(t *testing.T) {
	root := t.TempDir()
	s := Open(root, 4)
	defer s.Close()

	s.Emit(VerdictEvent(1, "Passed", 10))
	dest := s.SnapshotTo(root, filepath.Join("traces", "run-abc.log"))
	if dest == snapshotFailedSentinel {
		t.Fatalf("expected snapshot to succeed")
	}
	if lines := readLines(t, dest); len(lines) != 1 {
		t.Fatalf("expected 1 line in snapshot destination, got %d", len(lines))
	}
}

func TestSink_OpenFailureProducesZombieThatNoOps(t *testing.T) {
	// A root path that is itself a regular file (not a directory) makes
	// MkdirAll fail underneath it, forcing the zombie path.
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s := Open(blocker, 1)
	s.Emit(VerdictEvent(1, "Passed", 1)) // must not panic
	s.ForceFlush()
	if dest := s.SnapshotTo(blocker, "x.log"); dest != snapshotFailedSentinel {
		t.Fatalf("expected zombie sink snapshot to fail, got %q", dest)
	}
}
