package instancefactory

import (
	"reflect"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/fixture"
	"github.com/kontrakt-go/kontrakt/internal/fixture/strategy"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/mocking"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// Factory is the Instance Factory: it owns a resolver Session, a Fixture
// Generator, and a Mocking Engine, and turns one TestSpecification into a
// ready-to-invoke EphemeralTestContext.
type Factory struct {
	Session   *typegraph.Session
	Generator *fixture.Generator
	Mock      mocking.Engine
	Clock     func() time.Time
}

// NewFactory builds a Factory. mock defaults to a reflect-only engine;
// clock defaults to time.Now (callers that need a frozen clock for
// determinism should pass one explicitly — the Scenario Executor does).
func NewFactory(session *typegraph.Session, generator *fixture.Generator, mock mocking.Engine, clock func() time.Time) *Factory {
	if mock == nil {
		mock = mocking.ReflectEngine{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Factory{Session: session, Generator: generator, Mock: mock, Clock: clock}
}

// Create builds the EphemeralTestContext for s: resolves the target
// instance's full dependency graph (§4.5), then resolves its entry-point
// method for UserScenario when that mode is present, else for DataCompliance
// (those two resolve their own method here; ContractAuto's entry point is resolved
// per-method by the Scenario Executor directly from the contract
// interface, since a contract exposes many methods, not one).
func (f *Factory) Create(s spec.TestSpecification, seed int64) (*EphemeralTestContext, error) {
	if s.Target.Type == nil {
		return nil, &kerrors.ConfigurationError{Message: "test specification has no target type"}
	}
	targetDesc, err := f.Session.Resolve(s.Target.Type)
	if err != nil {
		return nil, err
	}

	ctx := &EphemeralTestContext{
		Specification: s,
		Dependencies:  map[reflect.Type]any{},
		Generation:    strategy.NewContext(seed, f.Clock, nil),
	}

	instance, err := f.resolve(s.Target.Type, ctx, nil)
	if err != nil {
		return nil, err
	}
	ctx.TargetInstance = instance

	if method, err := f.resolveEntryPoint(targetDesc, s); err == nil {
		ctx.TargetMethod = method
	} else if s.HasMode(spec.UserScenario) || s.HasMode(spec.DataCompliance) {
		return nil, err
	}

	return ctx, nil
}

// resolve implements §4.5's recursive dependency-resolution algorithm:
// cache check, cycle check against the current DFS path, explicit-strategy
// dispatch from the specification's RequiredDependencies, and otherwise a
// generate-or-construct fallback.
func (f *Factory) resolve(t reflect.Type, ctx *EphemeralTestContext, path []string) (any, error) {
	if v, ok := ctx.Dependencies[t]; ok {
		return v, nil
	}

	id := qualifiedTypeName(t)
	for _, p := range path {
		if p == id {
			full := append(append([]string{}, path...), id)
			return nil, &kerrors.RecursiveGenerationError{Path: full}
		}
	}
	nextPath := append(append([]string{}, path...), id)

	if dep, ok := f.findExplicitDependency(ctx.Specification, t); ok {
		v, err := f.resolveExplicit(dep, t, ctx, nextPath)
		if err != nil {
			return nil, err
		}
		ctx.Dependencies[t] = v
		return v, nil
	}

	desc, err := f.Session.Resolve(t)
	if err != nil {
		return nil, err
	}

	var v any
	if desc.Kind == typegraph.KindStructural && !desc.IsSealed() {
		v, err = f.createByConstructor(desc, ctx, nextPath)
	} else {
		v, err = f.Generator.Generate(ctx.Generation, fixture.Request{
			Name: desc.SimpleName, Type: desc, Annotations: desc.Annotations,
		})
	}
	if err != nil {
		return nil, err
	}
	ctx.Dependencies[t] = v
	return v, nil
}

// createByConstructor invokes a Structural descriptor's primary
// constructor, resolving each parameter recursively first. A type with no
// registered constructor falls back to the Mocking Engine rather than
// failing outright (§4.5: "falling back to createMock on constructor
// absence").
func (f *Factory) createByConstructor(desc *typegraph.Descriptor, ctx *EphemeralTestContext, path []string) (any, error) {
	ctors := desc.Constructors()
	if len(ctors) == 0 {
		return f.Mock.CreateMock(desc.GoType)
	}
	primary := ctors[0]
	args := make([]any, len(primary.Params))
	for i, p := range primary.Params {
		pt := p.Type.GoType
		if pt == nil {
			return nil, &kerrors.InternalError{Message: "constructor parameter " + p.Name + " resolved with no GoType"}
		}
		v, err := f.resolve(pt, ctx, path)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	v, err := primary.Invoke(args)
	if err != nil {
		return nil, &kerrors.GenerationFailedError{Reason: "constructor invocation failed for " + desc.TypeID, Cause: err}
	}
	return v, nil
}

func (f *Factory) findExplicitDependency(s spec.TestSpecification, t reflect.Type) (spec.DependencyMetadata, bool) {
	for _, d := range s.RequiredDependencies {
		if d.Type == t {
			return d, true
		}
	}
	return spec.DependencyMetadata{}, false
}

// resolveExplicit dispatches a constructor parameter with a Discovery-
// assigned MockingStrategy (§4.4 step 4's table, consumed here rather than
// re-derived): StatefulFake/StatelessMock go straight to the Mocking
// Engine, Environment("TIME") hands back the Factory's own frozen clock,
// and Real(impl) resolves the named implementation's own constructor chain
// in place of t.
func (f *Factory) resolveExplicit(dep spec.DependencyMetadata, t reflect.Type, ctx *EphemeralTestContext, path []string) (any, error) {
	switch dep.Strategy.Kind {
	case spec.StatefulFake:
		return f.Mock.CreateFake(t)
	case spec.StatelessMock:
		return f.Mock.CreateMock(t)
	case spec.Environment:
		if dep.Strategy.EnvType == "TIME" {
			if funcType, ok := clockFuncValue(t, f.Clock); ok {
				return funcType, nil
			}
		}
		return f.Mock.CreateMock(t)
	case spec.Real:
		impl := dep.Strategy.Implementation
		if impl == nil {
			impl = t
		}
		desc, err := f.Session.Resolve(impl)
		if err != nil {
			return nil, err
		}
		if desc.Kind != typegraph.KindStructural {
			return f.Generator.Generate(ctx.Generation, fixture.Request{Name: desc.SimpleName, Type: desc, Annotations: desc.Annotations})
		}
		return f.createByConstructor(desc, ctx, path)
	default:
		return f.Mock.CreateMock(t)
	}
}

// clockFuncValue adapts Factory.Clock to t when t is exactly the
// func() time.Time shape a Clock-typed dependency slot expects. Any other
// shape (an interface with a Now() method, say) has no safe reflective
// adapter here, so the caller falls back to the Mocking Engine instead.
func clockFuncValue(t reflect.Type, clock func() time.Time) (any, bool) {
	wantType := reflect.TypeOf(clock)
	if t == wantType {
		return clock, true
	}
	return nil, false
}

// qualifiedTypeName identifies t's logical identity for cycle-path
// tracking, stripping pointer indirection: A and *A name the same node in
// the dependency graph, since a pointer field resolving back to a value
// type already seen is exactly the cycle §4.5 requires detecting (a
// constructor holding a *A field pointing back to an A ancestor three
// frames up the tree is still "A -> B -> A").
func qualifiedTypeName(t reflect.Type) string {
	base := t
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if base.PkgPath() == "" {
		return base.String()
	}
	return base.PkgPath() + "." + base.Name()
}
