package spec

import (
	"reflect"
	"testing"
)

type stringDep struct{}

func depList() []DependencyMetadata {
	return []DependencyMetadata{
		{Name: "a", Type: reflect.TypeOf(stringDep{}), Strategy: NewReal(reflect.TypeOf(stringDep{}))},
		{Name: "b", Type: reflect.TypeOf(0), Strategy: NewStatelessMock()},
	}
}

func TestMerge_UnionsModesAndPicksFirstSeed(t *testing.T) {
	seed7 := int64(7)
	target := DiscoveredTestTarget{FullyQualifiedName: "pkg.X"}
	a := TestSpecification{Target: target, Modes: []TestMode{NewUserScenario()}, RequiredDependencies: depList()}
	b := TestSpecification{Target: target, Modes: []TestMode{NewContractAuto(reflect.TypeOf((*error)(nil)).Elem())}, RequiredDependencies: depList(), Seed: &seed7}

	merged, err := Merge([]TestSpecification{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if !merged.HasMode(UserScenario) || !merged.HasMode(ContractAuto) {
		t.Fatalf("expected both modes present, got %#v", merged.Modes)
	}
	if merged.Seed == nil || *merged.Seed != 7 {
		t.Fatalf("expected seed 7, got %v", merged.Seed)
	}
}

func TestMerge_CommutativeAcrossPermutation(t *testing.T) {
	target := DiscoveredTestTarget{FullyQualifiedName: "pkg.X"}
	a := TestSpecification{Target: target, Modes: []TestMode{NewUserScenario()}, RequiredDependencies: depList()}
	b := TestSpecification{Target: target, Modes: []TestMode{NewDataCompliance(reflect.TypeOf(stringDep{}))}, RequiredDependencies: depList()}

	m1, err1 := Merge([]TestSpecification{a, b})
	m2, err2 := Merge([]TestSpecification{b, a})
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v %v", err1, err2)
	}
	if len(m1.Modes) != len(m2.Modes) {
		t.Fatalf("expected identical merged mode sets regardless of order")
	}
	for i := range m1.Modes {
		if m1.Modes[i].key() != m2.Modes[i].key() {
			t.Fatalf("merge is not commutative: %v vs %v", m1.Modes, m2.Modes)
		}
	}
}

func TestMerge_DivergentDependenciesIsConfigurationError(t *testing.T) {
	target := DiscoveredTestTarget{FullyQualifiedName: "pkg.X"}
	a := TestSpecification{Target: target, Modes: []TestMode{NewUserScenario()}, RequiredDependencies: depList()}
	b := TestSpecification{Target: target, Modes: []TestMode{NewUserScenario()}, RequiredDependencies: []DependencyMetadata{{Name: "c", Type: reflect.TypeOf(0)}}}

	if _, err := Merge([]TestSpecification{a, b}); err == nil {
		t.Fatalf("expected a configuration error for divergent dependency lists")
	}
}

func TestGroupAndMerge_GroupsByFQN(t *testing.T) {
	x := TestSpecification{Target: DiscoveredTestTarget{FullyQualifiedName: "pkg.X"}, Modes: []TestMode{NewUserScenario()}}
	y := TestSpecification{Target: DiscoveredTestTarget{FullyQualifiedName: "pkg.Y"}, Modes: []TestMode{NewUserScenario()}}

	grouped, err := GroupAndMerge([]TestSpecification{x, y})
	if err != nil {
		t.Fatal(err)
	}
	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
}
