package executor

import (
	"time"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/trace"
)

// liveness watches one scenario invocation for the worker pool: it enforces
// the configured per-scenario timeout and, while waiting, emits a stale
// -worker trace event if the invocation runs suspiciously long without
// finishing. Grounded on the branch heartbeat/stall-timeout pattern used to
// watch long-running parallel branches: a ticking keepalive goroutine racing
// the real work, torn down through a stop/done channel pair rather than a
// context, since the work itself may not accept one.
const (
	staleWarningThreshold = 5 * time.Minute
	staleWarningInterval  = 1 * time.Minute

	heartbeatDefaultInterval = 200 * time.Millisecond
	heartbeatMinInterval     = 50 * time.Millisecond
	heartbeatMaxInterval     = 2 * time.Second
)

// heartbeatInterval scales the keepalive tick with the configured timeout:
// a short timeout gets checked often, a long or absent one falls back to a
// sane default rather than ticking needlessly fast.
func heartbeatInterval(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return heartbeatDefaultInterval
	}
	interval := timeout / 3
	if interval < heartbeatMinInterval {
		return heartbeatMinInterval
	}
	if interval > heartbeatMaxInterval {
		return heartbeatMaxInterval
	}
	return interval
}

// runWithTimeout runs fn to completion unless timeoutMS elapses first (<=0
// means no deadline, fn just runs inline). Go cannot forcibly stop a running
// goroutine, so a timed-out fn keeps executing in the background after this
// returns a TimeoutError; its eventual result is simply never observed. A
// panic inside fn is re-raised on the caller's goroutine, so the interceptor
// chain recovers it just as it would for an inline run.
func runWithTimeout(timeoutMS int, sc *trace.ScenarioTrace, clock func() time.Time, fn func() (assertion.Result, error)) (assertion.Result, error) {
	if timeoutMS <= 0 {
		return fn()
	}
	timeout := time.Duration(timeoutMS) * time.Millisecond

	done := make(chan struct{})
	var res assertion.Result
	var fnErr error
	var panicked any
	go func() {
		defer close(done)
		defer func() { panicked = recover() }()
		res, fnErr = fn()
	}()

	keepaliveStop := make(chan struct{})
	keepaliveDone := make(chan struct{})
	go watchForStall(sc, clock, keepaliveStop, keepaliveDone, heartbeatInterval(timeout))

	select {
	case <-done:
		close(keepaliveStop)
		<-keepaliveDone
		if panicked != nil {
			panic(panicked)
		}
		return res, fnErr
	case <-time.After(timeout):
		close(keepaliveStop)
		<-keepaliveDone
		return assertion.Result{}, &kerrors.TimeoutError{
			TimeoutMS: timeoutMS,
			Reason:    "scenario execution exceeded the configured timeout",
		}
	}
}

// watchForStall ticks at interval, emitting a rate-limited stale-worker
// design event once the invocation has been running past
// staleWarningThreshold, until stop is closed. Elapsed time is measured
// against the real wall clock (time.Now), not the run's injected Clock:
// a stall is a real-time phenomenon regardless of what logical time a
// scenario's fixtures were generated against.
func watchForStall(sc *trace.ScenarioTrace, clock func() time.Time, stop <-chan struct{}, done chan<- struct{}, interval time.Duration) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	started := time.Now()
	var lastWarning time.Time
	for {
		select {
		case now := <-ticker.C:
			idle := now.Sub(started)
			if idle < staleWarningThreshold {
				continue
			}
			if !lastWarning.IsZero() && now.Sub(lastWarning) < staleWarningInterval {
				continue
			}
			lastWarning = now
			if sc != nil {
				sc.Append(trace.DesignEvent(clock().UnixMilli(), "liveness", "heartbeat", idle.String()))
			}
		case <-stop:
			return
		}
	}
}
