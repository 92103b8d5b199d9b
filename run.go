// Package kontrakt is the public façade (§2's data-flow diagram wired into
// one call): Discovery finds specifications, the Instance Factory and
// Fixture Generator build and populate an ephemeral target for each, the
// Scenario Executor runs every specification through the interceptor
// chain, and the resulting per-target outcomes are collected into one
// Summary.
package kontrakt

import (
	"sort"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/constraint"
	"github.com/kontrakt-go/kontrakt/internal/discovery"
	"github.com/kontrakt-go/kontrakt/internal/executor"
	"github.com/kontrakt-go/kontrakt/internal/fixture"
	"github.com/kontrakt-go/kontrakt/internal/fixture/strategy"
	"github.com/kontrakt-go/kontrakt/internal/instancefactory"
	"github.com/kontrakt-go/kontrakt/internal/mocking"
	"github.com/kontrakt-go/kontrakt/internal/policyconfig"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
	"github.com/kontrakt-go/kontrakt/internal/verdict"
)

// Options configures one Run. Registrar and Scope drive Discovery;
// Policy, Publisher, TraceRoot, and Clock drive the Scenario Executor.
// Publisher defaults to a LoggingPublisher when nil; Clock defaults to
// time.Now; Mock defaults to mocking.ReflectEngine{}.
type Options struct {
	Registrar *discovery.Registrar
	Scope     discovery.ScanScope
	Policy    policyconfig.ExecutionPolicy
	TraceRoot string
	Publisher verdict.Publisher
	Mock      mocking.Engine
	Clock     func() time.Time
}

// Run executes the full pipeline and returns one Summary covering every
// discovered specification. An error here means discovery itself failed
// (a ConfigurationError, per §4.4's filtering rules) — individual
// scenario failures are never returned as an error, they show up as a
// failing TestOutcome in the Summary instead.
func Run(opts Options) (Summary, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Mock == nil {
		opts.Mock = mocking.ReflectEngine{}
	}
	if opts.Publisher == nil {
		opts.Publisher = NewLoggingPublisher(nil)
	}
	if opts.Registrar == nil {
		opts.Registrar = discovery.NewRegistrar()
	}

	session := typegraph.Open(typegraph.Options{TimeType: opts.Registrar.ClockType})

	grouped, err := discovery.DiscoverAndMerge(session, opts.Registrar, opts.Scope, opts.Policy.Determinism.Seed)
	if err != nil {
		return Summary{}, err
	}

	fqns := make([]string, 0, len(grouped))
	for fqn := range grouped {
		fqns = append(fqns, fqn)
	}
	sort.Strings(fqns)
	specs := make([]spec.TestSpecification, len(fqns))
	for i, fqn := range fqns {
		specs[i] = grouped[fqn]
	}

	generator := fixture.NewGenerator(strategy.DefaultRegistry(), opts.Mock)
	factory := instancefactory.NewFactory(session, generator, opts.Mock, opts.Clock)
	validator := constraint.NewValidator(opts.Clock)
	runner := executor.NewRunner(session, factory, validator, opts.Policy, opts.Publisher, opts.TraceRoot, opts.Clock)

	results := runner.ExecuteAll(specs)

	outcomes := make([]TestOutcome, len(specs))
	for i, s := range specs {
		outcomes[i] = TestOutcome{
			TestName: s.Target.DisplayName,
			Target:   s.Target.FullyQualifiedName,
			Result:   results[i],
			Status:   verdict.Decide(results[i], nil),
		}
	}
	return NewSummary(outcomes), nil
}
