package verdict

import (
	"encoding/json"
	"fmt"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
)

// TestResultEvent is the wire-format record published once per executed
// scenario (§6): the complete, self-contained outcome a downstream
// consumer (a CI reporter, a dashboard) needs without reading the NDJSON
// journal itself.
type TestResultEvent struct {
	RunID       string
	TestName    string
	WorkerID    int
	Seed        int64
	Status      assertion.TestStatus
	DurationMs  int64
	JournalPath string
	Timestamp   int64 // unix millis
}

type statusWire struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Cause    string `json:"cause,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type eventWire struct {
	RunID       string     `json:"runId"`
	TestName    string     `json:"testName"`
	WorkerID    int        `json:"workerId"`
	Seed        int64      `json:"seed"`
	Status      statusWire `json:"status"`
	DurationMs  int64      `json:"durationMs"`
	JournalPath string     `json:"journalPath"`
	Timestamp   int64      `json:"timestamp"`
}

// MarshalJSON renders Status as the discriminated union §6 names
// (Passed, AssertionFailed, ExecutionError, Disabled, Aborted), rather
// than leaking the flat TestStatus struct shape onto the wire.
func (e TestResultEvent) MarshalJSON() ([]byte, error) {
	sw := statusWire{Type: string(e.Status.Kind)}
	switch e.Status.Kind {
	case assertion.TestAssertionFailed:
		sw.Message = e.Status.Message
		sw.Expected = fmt.Sprintf("%v", e.Status.Expected)
		sw.Actual = fmt.Sprintf("%v", e.Status.Actual)
	case assertion.TestExecutionError:
		if e.Status.Cause != nil {
			sw.Cause = e.Status.Cause.Error()
		}
	case assertion.TestAborted:
		sw.Reason = e.Status.Reason
	}

	return json.Marshal(eventWire{
		RunID:       e.RunID,
		TestName:    e.TestName,
		WorkerID:    e.WorkerID,
		Seed:        e.Seed,
		Status:      sw,
		DurationMs:  e.DurationMs,
		JournalPath: e.JournalPath,
		Timestamp:   e.Timestamp,
	})
}
