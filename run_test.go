package kontrakt

import (
	"reflect"
	"testing"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/discovery"
	"github.com/kontrakt-go/kontrakt/internal/policyconfig"
)

type sampleGreeter struct{}

func (sampleGreeter) Test() string { return "hi" }

type sampleMultiplier interface {
	Multiply(a, b int) int
}

type sampleMultiplierImpl struct{}

func (sampleMultiplierImpl) Multiply(a, b int) int { return a * b }

func fixedClock() time.Time { return time.Unix(0, 0) }

func TestRun_DiscoversAndExecutesEveryRegisteredTarget(t *testing.T) {
	reg := discovery.NewRegistrar()
	reg.RegisterManual(reflect.TypeOf(sampleGreeter{}), "sampleGreeter", "github.com/kontrakt-go/kontrakt.sampleGreeter")
	reg.RegisterContract(reflect.TypeOf((*sampleMultiplier)(nil)).Elem(), reflect.TypeOf(sampleMultiplierImpl{}))

	summary, err := Run(Options{
		Registrar: reg,
		Scope:     discovery.NewAllScope(),
		Policy:    policyconfig.DefaultPolicy(),
		TraceRoot: t.TempDir(),
		Clock:     fixedClock,
	})
	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if len(summary.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d: %+v", len(summary.Outcomes), summary.Outcomes)
	}
	if !summary.AllPassed {
		t.Fatalf("expected every outcome to pass, got %+v", summary.Failures())
	}
}

func TestRun_ScopeNarrowsDiscoveryToMatchingTargets(t *testing.T) {
	reg := discovery.NewRegistrar()
	reg.RegisterManual(reflect.TypeOf(sampleGreeter{}), "sampleGreeter", "github.com/kontrakt-go/kontrakt.sampleGreeter")

	summary, err := Run(Options{
		Registrar: reg,
		Scope:     discovery.NewPackagesScope("github.com/other/**"),
		Policy:    policyconfig.DefaultPolicy(),
		TraceRoot: t.TempDir(),
		Clock:     fixedClock,
	})
	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if len(summary.Outcomes) != 0 {
		t.Fatalf("expected no outcomes outside scope, got %d", len(summary.Outcomes))
	}
	if !summary.AllPassed {
		t.Fatalf("expected a run with no outcomes to report AllPassed, got false")
	}
}
