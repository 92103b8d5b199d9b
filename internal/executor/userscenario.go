package executor

import (
	"fmt"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/fixture"
	"github.com/kontrakt-go/kontrakt/internal/instancefactory"
	"github.com/kontrakt-go/kontrakt/internal/interceptor"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/trace"
)

// runUserScenario invokes the entry-point method the Instance Factory
// already resolved onto the ephemeral target instance: build each
// parameter through the Fixture Generator, record it (pre-invocation, per
// the dual-recording rule ADR-023 cites), invoke, then report a single
// passing record — any assertion or contract failure the method itself
// raises escapes as an error and is classified further up the chain by the
// Result-Resolver, exactly as a manual test method's thrown exception
// would be.
func (r *Runner) runUserScenario(s spec.TestSpecification, eph *instancefactory.EphemeralTestContext, ctx *interceptor.ExecCtx, sc *trace.ScenarioTrace) (assertion.Result, error) {
	if eph.TargetMethod == nil {
		return assertion.Result{}, &kerrors.ConfigurationError{Message: "no entry-point method resolved for user scenario"}
	}
	method := eph.TargetMethod

	args := make([]any, len(method.Params))
	argDisplay := make([]string, len(method.Params))
	for i, p := range method.Params {
		req := fixture.Request{Name: p.Name, Type: p.Type, Annotations: p.Annotations}
		v, err := r.Factory.Generator.Generate(eph.Generation, req)
		if err != nil {
			return assertion.Result{}, err
		}
		args[i] = v
		display := fmt.Sprintf("%v", v)
		argDisplay[i] = display
		sc.RecordArgument(p.Name, display)
	}

	start := ctx.Clock()
	_, err := method.Call(eph.TargetInstance, args)
	durationMs := ctx.Clock().Sub(start).Milliseconds()
	sc.Append(trace.ExecutionEvent(ctx.Clock().UnixMilli(), method.Name, argDisplay, durationMs))

	if err != nil {
		return assertion.Result{}, err
	}
	return assertion.Result{Records: []assertion.Record{{
		Status:   assertion.Passed,
		Rule:     assertion.StandardAssertion,
		Location: assertion.NotCaptured,
	}}}, nil
}
