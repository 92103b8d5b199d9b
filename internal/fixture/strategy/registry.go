package strategy

import "github.com/kontrakt-go/kontrakt/internal/typegraph"

// RegisteredKind marks whether a strategy handles atomic (Terminal) types or
// needs to recurse through the Fixture Generator (Recursive) to fill nested
// slots. The Fixture Generator only passes a Regenerator to Recursive
// strategies.
type RegisteredKind string

const (
	Terminal  RegisteredKind = "Terminal"
	Recursive RegisteredKind = "Recursive"
)

// Strategy is one Generator Registry entry: a predicate over a Request plus
// the three sample-producing operations §4.3/§4.4 require.
type Strategy interface {
	Supports(req Request) bool
	Kind() RegisteredKind
	Generate(ctx *Context, req Request, regen Regenerator) (any, error)
	EdgeCases(ctx *Context, req Request, regen Regenerator) ([]any, error)
	Invalid(ctx *Context, req Request, regen Regenerator) ([]any, error)
}

// Registry is the Generator Registry (C3): an ordered list of strategies
// dispatched by first match, the same priority-list shape as the teacher's
// llm.Client provider lookup (internal/llm/client.go registers named
// providers and picks the first one whose predicate accepts a request)
// generalized here to a predicate instead of a literal provider name.
type Registry struct {
	entries []Strategy
}

// NewRegistry builds an empty registry; call Register in priority order —
// earlier registrations win ties, so register the most specific strategies
// (sealed, structural-with-recursion-guard) before the general-purpose
// fallbacks.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends s to the end of the priority list.
func (r *Registry) Register(s Strategy) {
	r.entries = append(r.entries, s)
}

// Select returns the first registered strategy whose Supports predicate
// accepts req, or false if the type graph has no adapter for it — the
// caller (Fixture Generator) turns that into a GenerationFailed.
func (r *Registry) Select(req Request) (Strategy, bool) {
	for _, s := range r.entries {
		if s.Supports(req) {
			return s, true
		}
	}
	return nil, false
}

// typeKind is a small helper shared by strategy predicates: nil-safe Kind
// read.
func typeKind(t *typegraph.Descriptor) typegraph.Kind {
	if t == nil {
		return ""
	}
	return t.Kind
}

func valueKind(t *typegraph.Descriptor) typegraph.ValueKind {
	if t == nil {
		return ""
	}
	return t.ValueKind
}
