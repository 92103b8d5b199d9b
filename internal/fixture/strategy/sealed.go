package strategy

import (
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// SealedStrategy is a Recursive strategy over a Sealed/polymorphic
// Structural type (an interface with a registered candidate set, §4.2): it
// uniformly picks one candidate by seeded index and delegates to
// StructuralStrategy for that concrete type.
type SealedStrategy struct{ Concrete StructuralStrategy }

func (SealedStrategy) Kind() RegisteredKind { return Recursive }

func (SealedStrategy) Supports(req Request) bool {
	return typeKind(req.Type) == typegraph.KindStructural && req.Type.IsSealed()
}

func (s SealedStrategy) Generate(ctx *Context, req Request, regen Regenerator) (any, error) {
	candidates := req.Type.Candidates()
	if len(candidates) == 0 {
		return nil, &kerrors.GenerationFailedError{Reason: "sealed type " + req.Type.TypeID + " has no registered candidates"}
	}
	pick := candidates[ctx.Rand.Intn(len(candidates))]
	ctx.Trace.DesignDecision(req.Name, "sealed", "candidate:"+pick.TypeID)
	return s.Concrete.Generate(ctx, Request{Name: req.Name, Type: pick, Annotations: req.Annotations}, regen)
}

func (s SealedStrategy) EdgeCases(ctx *Context, req Request, regen Regenerator) ([]any, error) {
	candidates := req.Type.Candidates()
	out := make([]any, 0, len(candidates))
	for _, c := range candidates {
		v, err := s.Concrete.Generate(ctx, Request{Name: req.Name, Type: c, Annotations: req.Annotations}, regen)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Invalid aggregates each candidate's own invalid set (§4.3: "the union of
// every candidate's invalid shapes"), since an instance of the sealed type
// is really an instance of one of its candidates.
func (s SealedStrategy) Invalid(ctx *Context, req Request, regen Regenerator) ([]any, error) {
	var out []any
	for _, c := range req.Type.Candidates() {
		sub, err := s.Concrete.Invalid(ctx, Request{Name: req.Name, Type: c, Annotations: req.Annotations}, regen)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}
