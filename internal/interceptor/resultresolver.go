package interceptor

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
)

// ResultResolverInterceptor is the outermost link (§4.7): it recovers any
// panic escaping the rest of the chain, classifies whatever escaped (panic
// or returned error) into a single AssertionRecord via the cause table
// below, and enriches NotCaptured locations into Approximate ones when
// trace capture is on. It never lets an error or panic propagate past
// itself — a scenario execution always resolves to a Result.
type ResultResolverInterceptor struct{}

func (ResultResolverInterceptor) Intercept(ctx *ExecCtx, next Handler) (result assertion.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause := panicToError(r)
			result = assertion.Result{
				Records: []assertion.Record{classify(cause, sanitizeStack())},
				Seed:    ctx.Seed,
			}
			err = nil
		}
	}()

	res, nextErr := next(ctx)
	if nextErr != nil {
		res = assertion.Result{
			Records: []assertion.Record{classify(nextErr, sanitizeStack())},
			Seed:    ctx.Seed,
		}
		return res, nil
	}
	return enrichLocations(ctx, res), nil
}

func panicToError(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return fmt.Errorf("panic: %v", r)
}

// classify maps an escaped cause onto its AssertionRule and message per the
// cause table: contract violations keep their own rule, configuration and
// internal errors get framework-level rules with a distinguishing message
// prefix, a raised AssertionError becomes a StandardAssertion record
// carrying its expected/actual pair, and anything else is an unexpected
// exception named by its own Go type.
func classify(cause error, stack []string) assertion.Record {
	var cv *kerrors.ContractViolationError
	if errors.As(cause, &cv) {
		return assertion.Record{
			Status:  assertion.Failed,
			Rule:    assertion.Annotation(cv.Rule),
			Message: "Contract violated: " + cv.Message,
			Location: locationFromStack(stack),
		}
	}

	var ae *kerrors.AssertionError
	if errors.As(cause, &ae) {
		return assertion.Record{
			Status:   assertion.Failed,
			Rule:     assertion.StandardAssertion,
			Message:  "Assertion failed: " + ae.Message,
			Expected: ae.Expected,
			Actual:   ae.Actual,
			Location: locationFromStack(stack),
		}
	}

	var ce *kerrors.ConfigurationError
	if errors.As(cause, &ce) {
		return assertion.Record{
			Status:   assertion.Failed,
			Rule:     assertion.ConfigurationRule,
			Message:  "Configuration Error: " + ce.Error(),
			Location: locationFromStack(stack),
		}
	}

	// A cycle or other fixture-construction failure is a setup-time mistake,
	// not a scenario exception, so it gets the same Configuration rule a
	// bad constructor or ambiguous merge does.
	var rg *kerrors.RecursiveGenerationError
	if errors.As(cause, &rg) {
		return assertion.Record{
			Status:   assertion.Failed,
			Rule:     assertion.ConfigurationRule,
			Message:  "Configuration Error: " + rg.Error(),
			Location: locationFromStack(stack),
		}
	}

	var gf *kerrors.GenerationFailedError
	if errors.As(cause, &gf) {
		return assertion.Record{
			Status:   assertion.Failed,
			Rule:     assertion.ConfigurationRule,
			Message:  "Configuration Error: " + gf.Error(),
			Location: locationFromStack(stack),
		}
	}

	var te *kerrors.TimeoutError
	if errors.As(cause, &te) {
		return assertion.Record{
			Status:   assertion.Failed,
			Rule:     assertion.SystemError("Timeout"),
			Message:  "Timeout: " + te.Error(),
			Location: locationFromStack(stack),
		}
	}

	var ie *kerrors.InternalError
	if errors.As(cause, &ie) {
		return assertion.Record{
			Status:   assertion.Failed,
			Rule:     assertion.SystemError("InternalError"),
			Message:  "Internal Framework Error: " + ie.Error(),
			Location: locationFromStack(stack),
		}
	}

	return assertion.Record{
		Status:   assertion.Failed,
		Rule:     assertion.UserException(typeNameOf(cause)),
		Message:  "Unexpected Exception: " + cause.Error(),
		Location: locationFromStack(stack),
	}
}

func typeNameOf(err error) string {
	t := fmt.Sprintf("%T", err)
	return strings.TrimPrefix(t, "*")
}

// sanitizeStack captures the current goroutine's stack and drops frames
// belonging to the framework's own call path (this package, the standard
// runtime, and the testing harness itself), keeping only the part of the
// trace a scenario author would find informative. Best-effort: Go's stack
// dump is text, not structured frames, so this is a line filter rather than
// true frame introspection.
func sanitizeStack() []string {
	raw := strings.Split(string(debug.Stack()), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(line, "internal/interceptor/") {
			continue
		}
		if strings.HasPrefix(trimmed, "runtime.") || strings.Contains(line, "/runtime/") {
			continue
		}
		if strings.HasPrefix(trimmed, "testing.") || strings.Contains(line, "/src/testing/") {
			continue
		}
		out = append(out, trimmed)
		if len(out) >= 20 {
			break
		}
	}
	return out
}

// locationFromStack derives a best-effort SourceLocation from a sanitized
// stack: the first remaining "file:line" frame, or Unknown if none parsed.
func locationFromStack(stack []string) assertion.Location {
	for _, line := range stack {
		if idx := strings.LastIndex(line, ".go:"); idx > 0 {
			return assertion.Approximate("", line)
		}
	}
	return assertion.Unknown
}

// enrichLocations upgrades any NotCaptured location in result's records to
// Approximate when trace capture is enabled — the chain has a live trace to
// point at even though no exception fired, so "not captured" is too weak a
// claim.
func enrichLocations(ctx *ExecCtx, result assertion.Result) assertion.Result {
	if !ctx.TraceOn {
		return result
	}
	for i, rec := range result.Records {
		if rec.Location.Kind == assertion.LocationNotCaptured {
			result.Records[i].Location = assertion.Approximate(rec.Rule.String(), ctx.TestName)
		}
	}
	return result
}
