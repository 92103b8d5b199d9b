// Package instancefactory implements the Instance Factory (C7): it builds
// the EphemeralTestContext a single test execution runs against, recursively
// resolving the target's dependency graph per §4.5's algorithm — cache
// check, cycle check, explicit-strategy dispatch, then the generate-or-
// construct fallback — and resolves the mode-appropriate entry-point method.
package instancefactory

import (
	"reflect"

	"github.com/kontrakt-go/kontrakt/internal/fixture/strategy"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// EphemeralTestContext is the single-arena object graph owned by one test
// execution (§9's cyclic-object-graph-ownership design note): the target
// instance, every resolved dependency keyed by its reflect.Type, and the
// resolved entry-point method, all discarded together once the execution
// completes.
type EphemeralTestContext struct {
	Specification spec.TestSpecification
	TargetInstance any
	Dependencies   map[reflect.Type]any
	TargetMethod   *typegraph.Method
	Generation     *strategy.Context
}
