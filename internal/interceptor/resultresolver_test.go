package interceptor

import (
	"strings"
	"testing"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
)

func TestResultResolver_PassesThroughASuccessfulResult(t *testing.T) {
	ctx := &ExecCtx{TestName: "Adder"}
	next := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{Records: []assertion.Record{{Status: assertion.Passed}}}, nil
	}
	res, err := (ResultResolverInterceptor{}).Intercept(ctx, next)
	if err != nil {
		t.Fatalf("Result-Resolver must never return an error, got %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Status != assertion.Passed {
		t.Fatalf("expected the passing record to survive unchanged, got %+v", res)
	}
}

func TestResultResolver_ClassifiesAnEscapedContractViolation(t *testing.T) {
	ctx := &ExecCtx{}
	next := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{}, &kerrors.ContractViolationError{Rule: "NotNull", Message: "field was nil"}
	}
	res, err := (ResultResolverInterceptor{}).Intercept(ctx, next)
	if err != nil {
		t.Fatalf("Result-Resolver must never re-throw, got %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Status != assertion.Failed || rec.Rule.Kind != assertion.RuleAnnotation {
		t.Fatalf("expected a failed Annotation record, got %+v", rec)
	}
}

func TestResultResolver_ClassifiesAnEscapedPanicAsUnexpected(t *testing.T) {
	ctx := &ExecCtx{}
	next := func(*ExecCtx) (assertion.Result, error) {
		panic("kaboom")
	}
	res, err := (ResultResolverInterceptor{}).Intercept(ctx, next)
	if err != nil {
		t.Fatalf("Result-Resolver must absorb the panic, got error %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Status != assertion.Failed {
		t.Fatalf("expected a single failed record, got %+v", res)
	}
	if res.Records[0].Rule.Kind != assertion.RuleUserException {
		t.Fatalf("expected an unexpected-exception rule, got %+v", res.Records[0].Rule)
	}
}

func TestResultResolver_ClassifiesConfigurationAndInternalErrorsDistinctly(t *testing.T) {
	ctx := &ExecCtx{}

	cfgNext := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{}, &kerrors.ConfigurationError{Message: "no primary constructor"}
	}
	res, _ := (ResultResolverInterceptor{}).Intercept(ctx, cfgNext)
	if res.Records[0].Rule.Kind != assertion.RuleConfigurationError {
		t.Fatalf("expected a ConfigurationError rule, got %+v", res.Records[0].Rule)
	}

	intNext := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{}, &kerrors.InternalError{Message: "nil session"}
	}
	res, _ = (ResultResolverInterceptor{}).Intercept(ctx, intNext)
	if res.Records[0].Rule.Kind != assertion.RuleSystemError {
		t.Fatalf("expected a SystemError rule, got %+v", res.Records[0].Rule)
	}
}

func TestResultResolver_ClassifiesCycleAndGenerationFailuresAsConfiguration(t *testing.T) {
	ctx := &ExecCtx{}

	cycleNext := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{}, &kerrors.RecursiveGenerationError{Path: []string{"A", "B", "A"}}
	}
	res, _ := (ResultResolverInterceptor{}).Intercept(ctx, cycleNext)
	if res.Records[0].Rule.Kind != assertion.RuleConfigurationError {
		t.Fatalf("expected a ConfigurationError rule for a cycle, got %+v", res.Records[0].Rule)
	}
	if !strings.Contains(res.Records[0].Message, "A -> B -> A") {
		t.Fatalf("expected the cycle path in the message, got %q", res.Records[0].Message)
	}

	genNext := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{}, &kerrors.GenerationFailedError{Reason: "no strategy supports the request"}
	}
	res, _ = (ResultResolverInterceptor{}).Intercept(ctx, genNext)
	if res.Records[0].Rule.Kind != assertion.RuleConfigurationError {
		t.Fatalf("expected a ConfigurationError rule for a generation failure, got %+v", res.Records[0].Rule)
	}
}

func TestResultResolver_ClassifiesATimeoutAsSystemError(t *testing.T) {
	ctx := &ExecCtx{}
	next := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{}, &kerrors.TimeoutError{TimeoutMS: 100, Reason: "scenario execution exceeded the configured timeout"}
	}
	res, _ := (ResultResolverInterceptor{}).Intercept(ctx, next)
	if res.Records[0].Rule.Kind != assertion.RuleSystemError {
		t.Fatalf("expected a SystemError rule for a timeout, got %+v", res.Records[0].Rule)
	}
}

func TestResultResolver_EnrichesNotCapturedLocationsWhenTraceIsOn(t *testing.T) {
	ctx := &ExecCtx{TraceOn: true, TestName: "Adder"}
	next := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{Records: []assertion.Record{{Status: assertion.Passed, Location: assertion.NotCaptured}}}, nil
	}
	res, _ := (ResultResolverInterceptor{}).Intercept(ctx, next)
	if res.Records[0].Location.Kind != assertion.LocationApproximate {
		t.Fatalf("expected the location to be upgraded to Approximate, got %+v", res.Records[0].Location)
	}
}

func TestResultResolver_LeavesNotCapturedAloneWhenTraceIsOff(t *testing.T) {
	ctx := &ExecCtx{TraceOn: false}
	next := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{Records: []assertion.Record{{Status: assertion.Passed, Location: assertion.NotCaptured}}}, nil
	}
	res, _ := (ResultResolverInterceptor{}).Intercept(ctx, next)
	if res.Records[0].Location.Kind != assertion.LocationNotCaptured {
		t.Fatalf("expected the location to stay NotCaptured, got %+v", res.Records[0].Location)
	}
}
