package executor

import (
	"math/rand"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/constraint"
	"github.com/kontrakt-go/kontrakt/internal/instancefactory"
	"github.com/kontrakt-go/kontrakt/internal/interceptor"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/policyconfig"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/trace"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
	"github.com/kontrakt-go/kontrakt/internal/verdict"
)

// Runner is the Scenario Executor: it owns the collaborators every mode's
// sub-executor needs (the type graph session, the Instance Factory, the
// Contract Validator) and the run-wide concerns (policy, publishing,
// journal root, clock) that the interceptor chain needs per invocation.
type Runner struct {
	Session   *typegraph.Session
	Factory   *instancefactory.Factory
	Validator *constraint.Validator
	Policy    policyconfig.ExecutionPolicy
	Publisher verdict.Publisher
	TraceRoot string
	Clock     func() time.Time
}

// NewRunner builds a Runner, defaulting Clock to time.Now.
func NewRunner(session *typegraph.Session, factory *instancefactory.Factory, validator *constraint.Validator, policy policyconfig.ExecutionPolicy, publisher verdict.Publisher, traceRoot string, clock func() time.Time) *Runner {
	if clock == nil {
		clock = time.Now
	}
	return &Runner{
		Session:   session,
		Factory:   factory,
		Validator: validator,
		Policy:    policy,
		Publisher: publisher,
		TraceRoot: traceRoot,
		Clock:     clock,
	}
}

// ExecuteAll runs every specification, spreading the work across a
// WorkerPool sized from the resource policy's Parallelism (0 means "one
// worker"), and returns one ExecutionResult per specification in the same
// order they were given.
func (r *Runner) ExecuteAll(specs []spec.TestSpecification) []assertion.Result {
	results := make([]assertion.Result, len(specs))
	tasks := make([]func(int), len(specs))
	for i, s := range specs {
		i, s := i, s
		tasks[i] = func(workerID int) {
			results[i] = r.executeOne(s, workerID)
		}
	}
	NewWorkerPool(r.Policy.Resources.Parallelism).Run(tasks)
	return results
}

func (r *Runner) resolveSeed(s spec.TestSpecification) int64 {
	if r.Policy.Determinism.Seed != nil {
		return *r.Policy.Determinism.Seed
	}
	if s.Seed != nil {
		return *s.Seed
	}
	return r.Clock().UnixNano()
}

// executeOne builds the per-scenario ExecCtx and runs the standard chain
// (Result-Resolver -> Auditing -> Executor) around the mode-specific
// sub-executor installed as ctx.Run.
func (r *Runner) executeOne(s spec.TestSpecification, workerID int) assertion.Result {
	seed := r.resolveSeed(s)
	entropy := rand.New(rand.NewSource(seed))
	started := r.Clock()
	runID := trace.NewRunID(started, entropy)
	scenarioTrace := trace.NewScenarioTrace(runID, r.Clock)
	sink := trace.Open(r.TraceRoot, workerID)
	defer sink.Close()

	ctx := &interceptor.ExecCtx{
		RunID:     runID,
		TestName:  s.Target.DisplayName,
		WorkerID:  workerID,
		Seed:      seed,
		StartedAt: started,
		TraceRoot: r.TraceRoot,
		TraceOn:   r.Policy.Auditing.Depth == policyconfig.DepthExplainable,
		Policy:    r.Policy,
		Trace:     scenarioTrace,
		Sink:      sink,
		Publisher: r.Publisher,
		Clock:     r.Clock,
	}
	ctx.Run = func() (assertion.Result, error) {
		return runWithTimeout(r.Policy.Resources.TimeoutMS, scenarioTrace, r.Clock, func() (assertion.Result, error) {
			return r.runScenario(s, ctx, scenarioTrace)
		})
	}

	chain := interceptor.NewChain(
		interceptor.ResultResolverInterceptor{},
		interceptor.AuditingInterceptor{},
		interceptor.ExecutorInterceptor{},
	)
	res, _ := chain.Proceed(ctx)
	res.Arguments = scenarioTrace.Arguments()
	res.Seed = seed
	return res
}

// runScenario runs every sub-executor whose mode is present on s and
// aggregates their records into one Result: a merged specification can
// carry UserScenario alongside ContractAuto or DataCompliance (a contract
// sweep and a data-compliance check both run independently of, not instead
// of, a user's own @Test scenario), so a first-match dispatch would silently
// drop whichever mode it didn't pick. The first sub-executor to return an
// error aborts the scenario outright, same as a single-mode run always did.
func (r *Runner) runScenario(s spec.TestSpecification, ctx *interceptor.ExecCtx, sc *trace.ScenarioTrace) (assertion.Result, error) {
	ephemeral, err := r.Factory.Create(s, ctx.Seed)
	if err != nil {
		return assertion.Result{}, err
	}

	var records []assertion.Record
	ranAnyMode := false

	if s.HasMode(spec.UserScenario) {
		ranAnyMode = true
		res, err := r.runUserScenario(s, ephemeral, ctx, sc)
		if err != nil {
			return assertion.Result{}, err
		}
		records = append(records, res.Records...)
	}
	if s.HasMode(spec.ContractAuto) {
		ranAnyMode = true
		res, err := r.runContractAuto(s, ephemeral, ctx, sc)
		if err != nil {
			return assertion.Result{}, err
		}
		records = append(records, res.Records...)
	}
	if s.HasMode(spec.DataCompliance) {
		ranAnyMode = true
		res, err := r.runDataCompliance(s, ephemeral, ctx, sc)
		if err != nil {
			return assertion.Result{}, err
		}
		records = append(records, res.Records...)
	}

	if !ranAnyMode {
		return assertion.Result{}, &kerrors.ConfigurationError{Message: "specification declares no recognized execution mode"}
	}
	return assertion.Result{Records: records}, nil
}
