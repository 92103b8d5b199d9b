package interceptor

import (
	"fmt"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/policyconfig"
	"github.com/kontrakt-go/kontrakt/internal/trace"
	"github.com/kontrakt-go/kontrakt/internal/verdict"
)

// AuditingInterceptor is the middle link (§4.7, §4.9): it records a
// VerificationTrace event per checked rule, reacts to an escaped error with
// an ExceptionTrace event before letting it continue upward, and in all
// cases — success, failure, or panic — finalizes the run: flushing the
// in-memory trace to the worker's sink, computing the verdict, snapshotting
// the journal per the retention policy, publishing the result, and
// resetting the sink for the next scenario. The finalize step runs from a
// deferred recover so a panic still gets audited before it is rethrown for
// the Result-Resolver above to catch.
type AuditingInterceptor struct{}

func (a AuditingInterceptor) Intercept(ctx *ExecCtx, next Handler) (result assertion.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause := panicToError(r)
			ctx.Trace.Append(trace.ExceptionEvent(ctx.nowMillis(), typeNameOf(cause), cause.Error(), sanitizeStack()))
			a.finalize(ctx, assertion.Result{Seed: ctx.Seed}, cause)
			panic(r)
		}
	}()

	result, err = next(ctx)
	if err != nil {
		ctx.Trace.Append(trace.ExceptionEvent(ctx.nowMillis(), typeNameOf(err), err.Error(), sanitizeStack()))
	}
	for _, rec := range result.Records {
		ctx.Trace.Append(trace.VerificationEvent(ctx.nowMillis(), rec.Rule.String(), string(rec.Status), rec.Message))
	}
	a.finalize(ctx, result, err)
	return result, err
}

// finalize implements the try/finally block's finally clause: it always
// runs, on every exit path, and never itself panics or returns an error —
// an audit failure must not mask the scenario's own outcome.
func (a AuditingInterceptor) finalize(ctx *ExecCtx, result assertion.Result, escaped error) {
	a.flushTrace(ctx)

	status := verdict.Decide(result, escaped)
	totalMs := ctx.now().Sub(ctx.StartedAt).Milliseconds()
	ctx.Trace.Append(trace.VerdictEvent(ctx.nowMillis(), string(status.Kind), totalMs))
	if ctx.Sink != nil {
		ctx.Sink.Emit(trace.VerdictEvent(ctx.nowMillis(), string(status.Kind), totalMs))
		ctx.Sink.ForceFlush()
	}

	journalPath := a.snapshot(ctx, status)

	if ctx.Publisher != nil {
		_ = ctx.Publisher.Publish(verdict.TestResultEvent{
			RunID:       ctx.RunID,
			TestName:    ctx.TestName,
			WorkerID:    ctx.WorkerID,
			Seed:        ctx.Seed,
			Status:      status,
			DurationMs:  totalMs,
			JournalPath: journalPath,
			Timestamp:   ctx.nowMillis(),
		})
	}

	if ctx.Sink != nil {
		ctx.Sink.Reset()
	}
}

// flushTrace copies the in-memory event log to the worker's sink, dropping
// DESIGN-phase events at SIMPLE depth (§4.9's depth rule: EXPLAINABLE keeps
// the full fixture-generation narrative, SIMPLE keeps only what a scenario
// needs to be reproduced and explained).
func (a AuditingInterceptor) flushTrace(ctx *ExecCtx) {
	if ctx.Sink == nil || ctx.Trace == nil {
		return
	}
	for _, e := range ctx.Trace.Events() {
		if ctx.Policy.Auditing.Depth == policyconfig.DepthSimple && e.Phase == trace.Design {
			continue
		}
		ctx.Sink.Emit(e)
	}
	ctx.Sink.ForceFlush()
}

// snapshot applies the retention policy, returning the path the journal was
// copied to (or "" if nothing was kept).
func (a AuditingInterceptor) snapshot(ctx *ExecCtx, status assertion.TestStatus) string {
	if ctx.Sink == nil {
		return ""
	}
	switch ctx.Policy.Auditing.Retention {
	case policyconfig.RetentionAlways:
		return ctx.Sink.SnapshotTo(ctx.TraceRoot, fmt.Sprintf("traces/run-%s.log", ctx.RunID))
	case policyconfig.RetentionOnFailure:
		if !status.Passed() {
			return ctx.Sink.SnapshotTo(ctx.TraceRoot, fmt.Sprintf("failures/run-%s.log", ctx.RunID))
		}
		return ""
	default:
		return ""
	}
}
