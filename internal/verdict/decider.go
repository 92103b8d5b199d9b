// Package verdict implements the Verdict Decider & Publisher (C12): the
// rule that turns one scenario's AssertionRecords (plus any exception that
// escaped the whole execution) into a single TestStatus, the wire-format
// TestResultEvent that status is reported as, and the fan-out publishers
// that deliver it downstream.
package verdict

import (
	"errors"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
)

// Decide implements §4.10's verdict rule: an escaped exception wins
// outright, classified as AssertionFailed when its root cause is a
// ContractViolationError, Aborted("timeout") when it is a TimeoutError,
// and ExecutionError otherwise; absent an escape, the first FAILED record
// (in recorded order) decides AssertionFailed; otherwise the scenario
// Passed.
func Decide(result assertion.Result, escaped error) assertion.TestStatus {
	if escaped != nil {
		var cv *kerrors.ContractViolationError
		if errors.As(escaped, &cv) {
			return assertion.NewAssertionFailed(cv.Error(), nil, nil)
		}
		var te *kerrors.TimeoutError
		if errors.As(escaped, &te) {
			return assertion.NewAborted("timeout")
		}
		return assertion.NewExecutionError(escaped)
	}
	for _, r := range result.Records {
		if r.Status == assertion.Failed {
			return assertion.NewAssertionFailed(r.Message, r.Expected, r.Actual)
		}
	}
	return assertion.NewPassed()
}
