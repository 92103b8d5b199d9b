package discovery

import (
	"reflect"
	"testing"

	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

type greeter interface {
	Greet() string
}

type englishGreeter struct {
	Name string
}

func (englishGreeter) Greet() string { return "hello" }

type manualScenario struct {
	Dep *englishGreeter
}

func newSession() *typegraph.Session {
	return typegraph.Open(typegraph.Options{
		Candidates: func(iface reflect.Type) []reflect.Type {
			if iface == reflect.TypeOf((*greeter)(nil)).Elem() {
				return []reflect.Type{reflect.TypeOf(englishGreeter{})}
			}
			return nil
		},
	})
}

func TestDiscover_ContractAutoEmitsOneSpecPerImplementation(t *testing.T) {
	session := newSession()
	reg := NewRegistrar()
	reg.RegisterContract(reflect.TypeOf((*greeter)(nil)).Elem(), reflect.TypeOf(englishGreeter{}))

	specs, err := Discover(session, reg, NewAllScope(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
	if !specs[0].HasMode(spec.ContractAuto) {
		t.Fatalf("expected ContractAuto mode, got %#v", specs[0].Modes)
	}
}

func TestDiscover_ManualTargetInfersRealDependency(t *testing.T) {
	session := newSession()
	reg := NewRegistrar()
	reg.RegisterManual(reflect.TypeOf(manualScenario{}), "manualScenario", "pkg.manualScenario")

	specs, err := Discover(session, reg, NewAllScope(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
	if len(specs[0].RequiredDependencies) != 1 {
		t.Fatalf("expected 1 dependency, got %#v", specs[0].RequiredDependencies)
	}
	if specs[0].RequiredDependencies[0].Strategy.Kind != spec.Real {
		t.Fatalf("expected Real strategy for concrete dependency, got %v", specs[0].RequiredDependencies[0].Strategy.Kind)
	}
}

func TestDiscover_ScopeExcludesNonMatchingPackages(t *testing.T) {
	session := newSession()
	reg := NewRegistrar()
	reg.RegisterManual(reflect.TypeOf(manualScenario{}), "manualScenario", "pkg.manualScenario")

	specs, err := Discover(session, reg, NewPackagesScope("other/**"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 0 {
		t.Fatalf("expected scope to exclude the target, got %d specs", len(specs))
	}
}

func TestDiscover_RejectsTargetWithoutFQN(t *testing.T) {
	session := newSession()
	reg := NewRegistrar()
	reg.RegisterManual(reflect.TypeOf(manualScenario{}), "manualScenario", "")

	if _, err := Discover(session, reg, NewAllScope(), nil); err == nil {
		t.Fatalf("expected a configuration error for an empty FQN")
	}
}
