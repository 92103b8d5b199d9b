package kontrakt

import "github.com/kontrakt-go/kontrakt/internal/assertion"

// TestOutcome pairs one discovered target's raw Result with the verdict
// decided from it.
type TestOutcome struct {
	TestName string
	Target   string
	Result   assertion.Result
	Status   assertion.TestStatus
}

// Summary is the Run-wide report: every outcome, plus the exit-semantics
// verdict §6 specifies ("0 on all tests passed; non-zero if any test
// failed") — AllPassed is exactly that boolean, for a host CLI to turn
// into a process exit code.
type Summary struct {
	Outcomes  []TestOutcome
	AllPassed bool
}

// NewSummary folds outcomes into a Summary.
func NewSummary(outcomes []TestOutcome) Summary {
	s := Summary{Outcomes: outcomes, AllPassed: true}
	for _, o := range outcomes {
		if !o.Status.Passed() {
			s.AllPassed = false
		}
	}
	return s
}

// Failures returns only the outcomes that did not pass, in Outcomes order.
func (s Summary) Failures() []TestOutcome {
	var out []TestOutcome
	for _, o := range s.Outcomes {
		if !o.Status.Passed() {
			out = append(out, o)
		}
	}
	return out
}
