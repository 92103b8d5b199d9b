package strategy

import "github.com/kontrakt-go/kontrakt/internal/typegraph"

// DefaultRegistry wires every built-in strategy in the priority order the
// core ships with: most specific first (Enum, then Sealed before plain
// Structural — a sealed interface must never fall through to the
// unconditional Structural match), terminals before the recursive
// container/structural strategies they share no Supports overlap with in
// practice, but ordering defensively keeps the first-match contract honest
// if a future strategy's predicate widens.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(EnumStrategy{})
	r.Register(NumericStrategy{ValueKind: typegraph.ValueInt})
	r.Register(NumericStrategy{ValueKind: typegraph.ValueLong})
	r.Register(DoubleStrategy{})
	r.Register(DoubleStrategy{Decimal: true})
	r.Register(StringStrategy{})
	r.Register(TimeStrategy{})
	r.Register(SealedStrategy{})
	r.Register(StructuralStrategy{})
	r.Register(ContainerStrategy{})
	r.Register(MapStrategy{})
	r.Register(ArrayStrategy{})
	return r
}
