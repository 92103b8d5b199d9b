// Package spec implements the Specification Aggregate (C6): the immutable
// TestSpecification blueprint Discovery emits and the Instance Factory
// consumes, plus the merge-by-FQN step that reconciles multiple specs
// discovered for the same target.
package spec

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/kontrakt-go/kontrakt/internal/kerrors"
)

// ModeKind discriminates the TestMode sum type's variants.
type ModeKind string

const (
	UserScenario   ModeKind = "UserScenario"
	ContractAuto   ModeKind = "ContractAuto"
	DataCompliance ModeKind = "DataCompliance"
)

// TestMode is the mode a Specification requests for its target. Only the
// field matching Kind is meaningful: ContractInterface for ContractAuto,
// DataClass for DataCompliance.
type TestMode struct {
	Kind             ModeKind
	ContractInterface reflect.Type
	DataClass         reflect.Type
}

func NewUserScenario() TestMode { return TestMode{Kind: UserScenario} }

func NewContractAuto(contractInterface reflect.Type) TestMode {
	return TestMode{Kind: ContractAuto, ContractInterface: contractInterface}
}

func NewDataCompliance(dataClass reflect.Type) TestMode {
	return TestMode{Kind: DataCompliance, DataClass: dataClass}
}

// key identifies a TestMode for set/union purposes: two ContractAuto modes
// over different interfaces are distinct entries.
func (m TestMode) key() string {
	switch m.Kind {
	case ContractAuto:
		if m.ContractInterface != nil {
			return string(m.Kind) + ":" + m.ContractInterface.String()
		}
	case DataCompliance:
		if m.DataClass != nil {
			return string(m.Kind) + ":" + m.DataClass.String()
		}
	}
	return string(m.Kind)
}

// StrategyKind discriminates the MockingStrategy sum type's variants.
type StrategyKind string

const (
	StatelessMock StrategyKind = "StatelessMock"
	StatefulFake  StrategyKind = "StatefulFake"
	Environment   StrategyKind = "Environment"
	Real          StrategyKind = "Real"
)

// MockingStrategy tells the Instance Factory how to satisfy one
// constructor parameter. Only the field matching Kind is meaningful.
type MockingStrategy struct {
	Kind           StrategyKind
	EnvType        string
	Implementation reflect.Type
}

func NewStatelessMock() MockingStrategy             { return MockingStrategy{Kind: StatelessMock} }
func NewStatefulFake() MockingStrategy              { return MockingStrategy{Kind: StatefulFake} }
func NewEnvironment(envType string) MockingStrategy { return MockingStrategy{Kind: Environment, EnvType: envType} }
func NewReal(impl reflect.Type) MockingStrategy     { return MockingStrategy{Kind: Real, Implementation: impl} }

// DependencyMetadata describes one constructor parameter Discovery resolved
// a MockingStrategy for.
type DependencyMetadata struct {
	Name     string
	Type     reflect.Type
	Strategy MockingStrategy
}

// equal reports (name, type, strategy) equality — Strategy is included:
// the merge rule (§4.4 step 5) compares dependency *lists*, and two specs
// disagreeing only on Strategy for an otherwise-identical dependency is
// still the configuration mismatch the strict-equality rule exists to
// catch, so Strategy divergence must also fail the merge. See equalLists.
func (d DependencyMetadata) equal(o DependencyMetadata) bool {
	return d.Name == o.Name && d.Type == o.Type && d.Strategy.Kind == o.Strategy.Kind &&
		d.Strategy.EnvType == o.Strategy.EnvType && d.Strategy.Implementation == o.Strategy.Implementation
}

// DiscoveredTestTarget is the immutable description of a target Discovery
// produced. FullyQualifiedName must be non-empty — Discovery itself enforces
// this before ever building a TestSpecification.
type DiscoveredTestTarget struct {
	Type               reflect.Type
	DisplayName        string
	FullyQualifiedName string
}

// TestSpecification is the immutable blueprint Discovery emits and the
// Instance Factory consumes.
type TestSpecification struct {
	Target               DiscoveredTestTarget
	Modes                []TestMode
	RequiredDependencies []DependencyMetadata
	Seed                 *int64
}

// HasMode reports whether kind is among Modes.
func (s TestSpecification) HasMode(kind ModeKind) bool {
	for _, m := range s.Modes {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

// Merge reconciles every TestSpecification in group (all must share the
// same target FQN) per §4.4 step 5: modes union, seed = first non-nil,
// dependencies must be element-wise equal across every spec in the group.
// The Open Question on divergent dependency lists is decided in favor of
// failing loudly — see DESIGN.md.
func Merge(group []TestSpecification) (TestSpecification, error) {
	if len(group) == 0 {
		return TestSpecification{}, &kerrors.InternalError{Message: "Merge called with an empty group"}
	}
	fqn := group[0].Target.FullyQualifiedName
	merged := TestSpecification{Target: group[0].Target, RequiredDependencies: group[0].RequiredDependencies}

	seen := map[string]TestMode{}
	for _, s := range group {
		if s.Target.FullyQualifiedName != fqn {
			return TestSpecification{}, &kerrors.ConfigurationError{
				Message: fmt.Sprintf("cannot merge specs for different targets: %q vs %q", fqn, s.Target.FullyQualifiedName),
			}
		}
		if merged.Seed == nil && s.Seed != nil {
			merged.Seed = s.Seed
		}
		for _, m := range s.Modes {
			seen[m.key()] = m
		}
		if !equalLists(merged.RequiredDependencies, s.RequiredDependencies) {
			return TestSpecification{}, &kerrors.ConfigurationError{
				Message: fmt.Sprintf("ambiguous spec merge for %q: dependency lists diverge between discovered specs", fqn),
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	merged.Modes = make([]TestMode, 0, len(keys))
	for _, k := range keys {
		merged.Modes = append(merged.Modes, seen[k])
	}
	return merged, nil
}

// equalLists compares two dependency lists element-wise, order-independent
// (§8 invariant 5, merge commutativity): sort a stable copy of each by name
// before comparing.
func equalLists(a, b []DependencyMetadata) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]DependencyMetadata{}, a...)
	sb := append([]DependencyMetadata{}, b...)
	sort.Slice(sa, func(i, j int) bool { return sa[i].Name < sa[j].Name })
	sort.Slice(sb, func(i, j int) bool { return sb[i].Name < sb[j].Name })
	for i := range sa {
		if !sa[i].equal(sb[i]) {
			return false
		}
	}
	return true
}

// GroupAndMerge groups specs by target FQN and merges each group,
// returning a map keyed by FQN. Any merge failure aborts the whole
// operation (discovery is IO-bounded and batch; a single ambiguous merge
// should surface immediately rather than silently dropping that target).
func GroupAndMerge(specs []TestSpecification) (map[string]TestSpecification, error) {
	groups := map[string][]TestSpecification{}
	order := []string{}
	for _, s := range specs {
		fqn := s.Target.FullyQualifiedName
		if _, ok := groups[fqn]; !ok {
			order = append(order, fqn)
		}
		groups[fqn] = append(groups[fqn], s)
	}
	out := make(map[string]TestSpecification, len(groups))
	for _, fqn := range order {
		merged, err := Merge(groups[fqn])
		if err != nil {
			return nil, err
		}
		out[fqn] = merged
	}
	return out, nil
}
