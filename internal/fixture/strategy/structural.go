package strategy

import (
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// StructuralStrategy is a Recursive strategy over a concrete Structural
// type: it selects the primary (first-registered) constructor, regenerates
// each parameter under an extended ancestry, and invokes the constructor.
// A self-referential type (A holds a *A) is caught here rather than in the
// resolver, by checking the ancestry Context.Descend built up on the way
// down — the cycle-safety the resolver's lazy Properties/Constructors
// closures deliberately defer to this layer.
type StructuralStrategy struct{}

func (StructuralStrategy) Kind() RegisteredKind { return Recursive }

func (StructuralStrategy) Supports(req Request) bool {
	return typeKind(req.Type) == typegraph.KindStructural && !req.Type.IsSealed()
}

func (StructuralStrategy) Generate(ctx *Context, req Request, regen Regenerator) (any, error) {
	t := req.Type
	if ctx.Visited(t.TypeID) {
		return nil, &kerrors.RecursiveGenerationError{Path: append(append([]string{}, ctx.History...), t.TypeID)}
	}
	ctors := t.Constructors()
	if len(ctors) == 0 {
		return nil, &kerrors.GenerationFailedError{Reason: "no constructor registered for " + t.TypeID}
	}
	ctor := ctors[0]
	child := ctx.Descend(t.TypeID)
	args := make([]any, 0, len(ctor.Params))
	for _, p := range ctor.Params {
		v, err := regen(child, Request{Name: p.Name, Type: p.Type, Annotations: p.Annotations})
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	ctx.Trace.DesignDecision(req.Name, "structural", "constructor:"+t.TypeID)
	out, err := ctor.Invoke(args)
	if err != nil {
		return nil, &kerrors.GenerationFailedError{Reason: "constructor invocation failed for " + t.TypeID, Cause: err}
	}
	return out, nil
}

func (s StructuralStrategy) EdgeCases(ctx *Context, req Request, regen Regenerator) ([]any, error) {
	v, err := s.Generate(ctx, req, regen)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

// Invalid has no intrinsic invalid shape for a Structural value at this
// layer — invalidity for a structural value is expressed per-field by its
// properties' own constraints, surfaced through the Contract Validator
// rather than a standalone malformed instance.
func (StructuralStrategy) Invalid(_ *Context, _ Request, _ Regenerator) ([]any, error) {
	return nil, nil
}
