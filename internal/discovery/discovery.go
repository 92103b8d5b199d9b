package discovery

import (
	"reflect"
	"sort"

	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// Discover runs contract-auto, manual, and data-compliance enumeration
// with dependency-strategy inference per target, returning the specs
// unmerged; DiscoverAndMerge adds the merge-by-FQN pass. seed is threaded onto every emitted spec
// before merging (Merge's "first non-nil" rule then applies if some
// group's specs disagree, which for specs discovered in a single pass
// never happens — all specs for one target share the same pre-merge
// seed — but the field exists so a caller merging across two Discover
// calls still gets meaningful behavior).
func Discover(session *typegraph.Session, reg *Registrar, scope ScanScope, seed *int64) ([]spec.TestSpecification, error) {
	var specs []spec.TestSpecification

	for _, entry := range reg.Contracts {
		impls := sortedByName(entry.Implementations)
		for _, impl := range impls {
			target, err := buildTarget(session, impl)
			if err != nil {
				return nil, err
			}
			if !scope.Matches(target.FullyQualifiedName) {
				continue
			}
			deps, err := inferDependencies(session, impl, reg)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec.TestSpecification{
				Target:               target,
				Modes:                []spec.TestMode{spec.NewContractAuto(entry.Interface)},
				RequiredDependencies: deps,
				Seed:                 seed,
			})
		}
	}

	for _, m := range reg.ManualTargets {
		if !scope.Matches(m.FullyQualifiedName) {
			continue
		}
		target, err := validateTarget(session, m.Type, m.DisplayName, m.FullyQualifiedName)
		if err != nil {
			return nil, err
		}
		deps, err := inferDependencies(session, m.Type, reg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec.TestSpecification{
			Target:               target,
			Modes:                []spec.TestMode{spec.NewUserScenario()},
			RequiredDependencies: deps,
			Seed:                 seed,
		})
	}

	for _, d := range reg.DataContracts {
		if !scope.Matches(d.FullyQualifiedName) {
			continue
		}
		target, err := validateTarget(session, d.Type, d.DisplayName, d.FullyQualifiedName)
		if err != nil {
			return nil, err
		}
		deps, err := inferDependencies(session, d.Type, reg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec.TestSpecification{
			Target:               target,
			Modes:                []spec.TestMode{spec.NewDataCompliance(d.Type)},
			RequiredDependencies: deps,
			Seed:                 seed,
		})
	}

	return specs, nil
}

// DiscoverAndMerge runs Discover then folds the result through
// spec.GroupAndMerge, returning the final per-FQN spec map.
func DiscoverAndMerge(session *typegraph.Session, reg *Registrar, scope ScanScope, seed *int64) (map[string]spec.TestSpecification, error) {
	specs, err := Discover(session, reg, scope, seed)
	if err != nil {
		return nil, err
	}
	return spec.GroupAndMerge(specs)
}

// buildTarget resolves t and derives its FQN/display name from the
// resolved descriptor, then validates it as a target.
func buildTarget(session *typegraph.Session, t reflect.Type) (spec.DiscoveredTestTarget, error) {
	d, err := session.Resolve(t)
	if err != nil {
		return spec.DiscoveredTestTarget{}, err
	}
	return validateTarget(session, t, d.SimpleName, d.QualifiedName)
}

// validateTarget rejects a candidate target without a qualified name or
// without a primary constructor (§4.4 filtering rules).
func validateTarget(session *typegraph.Session, t reflect.Type, displayName, fqn string) (spec.DiscoveredTestTarget, error) {
	if fqn == "" {
		return spec.DiscoveredTestTarget{}, &kerrors.ConfigurationError{Message: "discovery target has no fully-qualified name (anonymous or local type)"}
	}
	d, err := session.Resolve(t)
	if err != nil {
		return spec.DiscoveredTestTarget{}, err
	}
	if d.Kind == typegraph.KindStructural && len(d.Constructors()) == 0 {
		return spec.DiscoveredTestTarget{}, &kerrors.ConfigurationError{Message: "discovery target " + fqn + " has no primary constructor"}
	}
	return spec.DiscoveredTestTarget{Type: t, DisplayName: displayName, FullyQualifiedName: fqn}, nil
}

// inferDependencies builds a DependencyMetadata per primary-constructor
// parameter, applying the §4.4 step 4 inference table to each parameter's
// type.
func inferDependencies(session *typegraph.Session, t reflect.Type, reg *Registrar) ([]spec.DependencyMetadata, error) {
	d, err := session.Resolve(t)
	if err != nil {
		return nil, err
	}
	if d.Kind != typegraph.KindStructural {
		return nil, nil
	}
	ctors := d.Constructors()
	if len(ctors) == 0 {
		return nil, nil
	}
	primary := ctors[0]
	out := make([]spec.DependencyMetadata, 0, len(primary.Params))
	for _, p := range primary.Params {
		out = append(out, spec.DependencyMetadata{
			Name:     p.Name,
			Type:     paramGoType(p),
			Strategy: inferStrategy(paramGoType(p), reg),
		})
	}
	return out, nil
}

func paramGoType(p typegraph.Param) reflect.Type {
	if p.Type == nil {
		return nil
	}
	return p.Type.GoType
}

// inferStrategy applies the dependency-strategy-inference table (§4.4 step
// 4), in the spec's own priority order.
func inferStrategy(t reflect.Type, reg *Registrar) spec.MockingStrategy {
	if t == nil {
		return spec.NewStatelessMock()
	}
	if reg.ClockType != nil && t == reg.ClockType {
		return spec.NewEnvironment("TIME")
	}
	if reg.Stateful[t] {
		return spec.NewStatefulFake()
	}
	if impl, ok := reg.ContractImplementations[t]; ok {
		return spec.NewReal(impl)
	}
	if t.Kind() == reflect.Interface {
		impls := reg.Implementations[t]
		if len(impls) > 0 {
			return spec.NewReal(sortedByName(impls)[0])
		}
		return spec.NewStatelessMock()
	}
	return spec.NewReal(t)
}

// sortedByName returns impls ordered by qualified (package path + name)
// identity, giving "first implementation" a deterministic meaning as the
// spec requires.
func sortedByName(impls []reflect.Type) []reflect.Type {
	out := append([]reflect.Type{}, impls...)
	sort.Slice(out, func(i, j int) bool {
		return qualifiedTypeName(out[i]) < qualifiedTypeName(out[j])
	})
	return out
}

func qualifiedTypeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		return "*" + qualifiedTypeName(t.Elem())
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
