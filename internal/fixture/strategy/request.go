// Package strategy implements the Generator Registry (C3): a typed set of
// generation strategies (Value/Container/Map/Array/Structural/Sealed/Enum),
// each producing a `generate`, `edgeCases`, and `invalid` sample, dispatched
// by a registry that picks the first strategy whose Supports predicate
// matches — the same shape as the teacher's llm.Client provider registry
// (internal/llm/client.go): a map of named adapters behind one dispatch
// call, selected by a predicate instead of an explicit provider name.
package strategy

import "github.com/kontrakt-go/kontrakt/internal/typegraph"

// Request is a GenerationRequest: the type to produce plus the name and
// annotations of the slot it fills (a parameter, a struct field, a return
// value).
type Request struct {
	Name        string
	Type        *typegraph.Descriptor
	Annotations typegraph.Annotations
}

// Regenerator lets a Recursive strategy ask the Fixture Generator to
// produce a child value for a nested request. The caller passes the
// Context it wants the child generated under — ctx.Descend(id) when the
// child needs to extend the cycle-detection ancestry, or ctx unchanged when
// it doesn't (a container's elements, for instance, share their parent's
// ancestry rather than extending it).
type Regenerator func(ctx *Context, req Request) (any, error)
