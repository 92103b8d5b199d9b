package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/blake3"
)

const bufferSize = 4096

type wireRow struct {
	Type           string   `json:"type"`
	Method         string   `json:"method,omitempty"`
	Args           []string `json:"args,omitempty"`
	DurationMs     int64    `json:"durationMs,omitempty"`
	Rule           string   `json:"rule,omitempty"`
	Status         string   `json:"status,omitempty"`
	Detail         string   `json:"detail,omitempty"`
	ExType         string   `json:"exType,omitempty"`
	Message        string   `json:"message,omitempty"`
	Stack          []string `json:"stack,omitempty"`
	Subject        string   `json:"subject,omitempty"`
	Strategy       string   `json:"strategy,omitempty"`
	Value          string   `json:"value,omitempty"`
	VerdictStatus  string   `json:"verdictStatus,omitempty"`
	DurationTotal  int64    `json:"durationTotalMs,omitempty"`
	Ts             int64    `json:"ts"`
}

func toWireRow(e Event) wireRow {
	row := wireRow{Ts: e.Ts}
	switch e.Phase {
	case Execution:
		row.Type, row.Method, row.Args, row.DurationMs = "Execution", e.Method, e.Args, e.DurationMs
	case Verification:
		row.Type, row.Rule, row.Status, row.Detail = "Verification", e.Rule, e.Status, e.Detail
	case Exception:
		row.Type, row.ExType, row.Message, row.Stack = "Exception", e.ExType, e.Message, e.Stack
	case Design:
		row.Type, row.Subject, row.Strategy, row.Value = "Design", e.Subject, e.Strategy, e.Value
	case Verdict:
		row.Type, row.VerdictStatus, row.DurationTotal = "Verdict", e.VerdictStatus, e.DurationTotalMs
	}
	return row
}

// Sink is the per-worker recycling file sink (§4.9): an append-mode file
// handle fronted by a small write buffer, flushed eagerly for critical
// events and lazily otherwise, tolerant of its own IO failures so a
// logging problem never aborts test execution.
type Sink struct {
	mu         sync.Mutex
	path       string
	file       *os.File
	buf        []byte
	zombie     bool
	lastDigest string
}

// Open creates (or appends to) <root>/logs/workers/worker-<id>.ndjson. A
// failure to create the parent directory or open the file puts the sink
// into a zombie state: every subsequent operation silently no-ops, so a
// logging setup failure never blocks test execution.
func Open(root string, workerID int) *Sink {
	path := filepath.Join(root, "logs", "workers", fmt.Sprintf("worker-%d.ndjson", workerID))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Sink{path: path, zombie: true}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &Sink{path: path, zombie: true}
	}
	s := &Sink{path: path, file: f}
	registerHook(s)
	return s
}

// Emit serializes e to NDJSON and applies the buffering rule (§4.9): flush
// then write-direct for critical events or oversized payloads, otherwise
// buffer, flushing first only if the payload would overflow the buffer.
func (s *Sink) Emit(e Event) {
	payload, err := json.Marshal(toWireRow(e))
	if err != nil {
		return
	}
	payload = append(payload, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zombie {
		return
	}
	switch {
	case e.Critical():
		s.flushLocked()
		s.writeDirectLocked(payload)
	case len(payload) > bufferSize:
		s.flushLocked()
		s.writeDirectLocked(payload)
	case len(payload)+len(s.buf) > bufferSize:
		s.flushLocked()
		s.buf = append(s.buf, payload...)
	default:
		s.buf = append(s.buf, payload...)
	}
}

func (s *Sink) flushLocked() {
	if len(s.buf) == 0 || s.file == nil {
		return
	}
	digest := blake3.Sum256(s.buf)
	s.lastDigest = fmt.Sprintf("%x", digest[:8])
	_, _ = s.file.Write(s.buf) // swallow IO error: no retries, keep test execution alive
	s.buf = s.buf[:0]
}

func (s *Sink) writeDirectLocked(payload []byte) {
	if s.file == nil {
		return
	}
	digest := blake3.Sum256(payload)
	s.lastDigest = fmt.Sprintf("%x", digest[:8])
	_, _ = s.file.Write(payload)
}

// ForceFlush empties the write buffer to disk.
func (s *Sink) ForceFlush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zombie {
		return
	}
	s.flushLocked()
}

// LastDigest returns the short BLAKE3 digest of the most recently written
// payload, content-addressing the journal's tail for the snapshot/verify
// path without hashing the whole file on every call.
func (s *Sink) LastDigest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDigest
}

// Reset truncates the journal to zero length.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zombie || s.file == nil {
		return
	}
	s.buf = s.buf[:0]
	_ = s.file.Truncate(0)
	_, _ = s.file.Seek(0, 0)
}

const snapshotFailedSentinel = "SNAPSHOT_FAILED"

// SnapshotTo flushes the sink, copies the journal's current content to
// <root>/targetRelPath, and returns the absolute destination path — or the
// sentinel string on any failure.
func (s *Sink) SnapshotTo(root, targetRelPath string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zombie || s.file == nil {
		return snapshotFailedSentinel
	}
	s.flushLocked()

	content, err := os.ReadFile(s.path)
	if err != nil {
		return snapshotFailedSentinel
	}
	dest := filepath.Join(root, targetRelPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return snapshotFailedSentinel
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return snapshotFailedSentinel
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return snapshotFailedSentinel
	}
	return abs
}

// Close removes this sink's shutdown hook and closes the underlying file.
func (s *Sink) Close() {
	unregisterHook(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zombie || s.file == nil {
		return
	}
	s.flushLocked()
	_ = s.file.Close()
}
