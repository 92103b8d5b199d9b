package trace

import (
	"io"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ScenarioTrace is the in-memory audit log for one test execution:
// a concurrent append-only event list and a concurrent argument map,
// identified by a stable ULID run ID (T1-T3 invariants).
type ScenarioTrace struct {
	mu       sync.Mutex
	runID    string
	clock    func() time.Time
	events   []Event
	argOrder []string
	args     map[string]string
}

// NewRunID mints a ULID from the frozen clock and a seeded entropy source,
// grounded on the teacher's engine.NewRunID (oklog/ulid) — reused here so
// that, per the determinism model (§5), an identical seed produces an
// identical runId. entropy is normally the GenerationContext's own seeded
// *rand.Rand, which already satisfies io.Reader.
func NewRunID(clock time.Time, entropy io.Reader) string {
	return ulid.MustNew(ulid.Timestamp(clock), entropy).String()
}

// NewScenarioTrace opens a trace for one execution, stamping events with
// clock (normally the executor's frozen `now`, not wall-clock time).
func NewScenarioTrace(runID string, clock func() time.Time) *ScenarioTrace {
	if clock == nil {
		clock = time.Now
	}
	return &ScenarioTrace{runID: runID, clock: clock, args: map[string]string{}}
}

// RunID returns the stable identifier for this trace's lifetime (T2).
func (t *ScenarioTrace) RunID() string { return t.runID }

// Append adds e to the event log (T1: append-only within an execution).
func (t *ScenarioTrace) Append(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

// DesignDecision implements the strategy.TraceRecorder seam the Generator
// Registry calls into, so internal/fixture/strategy never imports this
// package directly.
func (t *ScenarioTrace) DesignDecision(subject, strategyName, value string) {
	t.Append(DesignEvent(t.clock().UnixMilli(), subject, strategyName, value))
}

// RecordArgument sets key=value in the generated-arguments map (ADR-023
// dual recording: this is the pre-invocation write; ExecutionResult.arguments
// is the post-invocation copy).
func (t *ScenarioTrace) RecordArgument(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.args[key]; !exists {
		t.argOrder = append(t.argOrder, key)
	}
	t.args[key] = value
}

// Events returns a snapshot copy of the event log, in append order.
func (t *ScenarioTrace) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Arguments returns a stable snapshot of the generated-arguments map, keys
// sorted in code-point order per §5's ordering guarantee.
func (t *ScenarioTrace) Arguments() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]string, len(t.args))
	for k, v := range t.args {
		out[k] = v
	}
	return out
}

// SortedArgumentKeys returns the argument keys in code-point order, for
// callers that need the ordering guarantee explicitly (e.g. building a
// stable argument vector for display).
func (t *ScenarioTrace) SortedArgumentKeys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]string, len(t.argOrder))
	copy(keys, t.argOrder)
	sort.Strings(keys)
	return keys
}
