package instancefactory

import (
	"sort"

	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// standardMethodNames lists methods every Go type picks up incidentally
// (stringer/error/equality conventions) that are never themselves the
// entry point a UserScenario or DataCompliance mode is looking for.
var standardMethodNames = map[string]bool{
	"String": true, "Error": true, "GoString": true, "Equal": true,
}

// resolveEntryPoint picks the target method a single-method execution mode
// invokes, per §4.5's per-mode rules. ContractAuto resolves its own
// method per contract-method, at execution time, so it is not handled
// here: returning an error for a ContractAuto-only specification is
// expected and the caller must not treat it as fatal.
func (f *Factory) resolveEntryPoint(desc *typegraph.Descriptor, s spec.TestSpecification) (*typegraph.Method, error) {
	switch {
	case s.HasMode(spec.UserScenario):
		return resolveUserScenarioMethod(desc)
	case s.HasMode(spec.DataCompliance):
		return resolveDataComplianceMethod(desc)
	default:
		return nil, &kerrors.ConfigurationError{Message: "no entry-point-bearing mode present for " + desc.TypeID}
	}
}

// resolveUserScenarioMethod looks for a method named by the "@Test"-
// equivalent naming convention this framework uses absent runtime
// annotations: an exported method literally named Test, sorted first by
// name should more than one exist. Absent that, it falls back to the
// first non-standard exported method in lexicographic order.
func resolveUserScenarioMethod(desc *typegraph.Descriptor) (*typegraph.Method, error) {
	methods := desc.Methods()
	if methods == nil {
		return nil, &kerrors.ConfigurationError{Message: "no methods found on " + desc.TypeID}
	}
	sorted := sortedMethods(methods)

	for _, m := range sorted {
		if m.Name == "Test" {
			mm := m
			return &mm, nil
		}
	}
	for _, m := range sorted {
		if !standardMethodNames[m.Name] {
			mm := m
			return &mm, nil
		}
	}
	return nil, &kerrors.ConfigurationError{Message: "no scenario entry-point method found on " + desc.TypeID}
}

// resolveDataComplianceMethod returns the target's String method, its
// toString equivalent, or a ConfigurationError when it has none. No
// constructor is considered here, whether or not one is registered.
func resolveDataComplianceMethod(desc *typegraph.Descriptor) (*typegraph.Method, error) {
	for _, m := range desc.Methods() {
		if m.Name == "String" {
			mm := m
			return &mm, nil
		}
	}
	return nil, &kerrors.ConfigurationError{Message: "no toString-equivalent method found on " + desc.TypeID}
}

func sortedMethods(methods []typegraph.Method) []typegraph.Method {
	out := append([]typegraph.Method{}, methods...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
