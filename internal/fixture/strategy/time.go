package strategy

import (
	"strconv"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// TimeStrategy is a Terminal strategy over ValueTime, honoring @Past/@Future
// relative to the GenerationContext's frozen clock and an optional declared
// instant range.
type TimeStrategy struct{}

func (TimeStrategy) Kind() RegisteredKind { return Terminal }

func (TimeStrategy) Supports(req Request) bool {
	return typeKind(req.Type) == typegraph.KindValue && valueKind(req.Type) == typegraph.ValueTime
}

func (TimeStrategy) bounds(ctx *Context, ann typegraph.Annotations) (min, max time.Time) {
	now := ctx.Clock()
	min, max = now.AddDate(-10, 0, 0), now.AddDate(10, 0, 0)
	if attrs, ok := ann.GetAnnotationAttributes("TimeRange"); ok {
		if v, err := strconv.ParseInt(attrs["minEpochSeconds"], 10, 64); err == nil {
			min = time.Unix(v, 0).UTC()
		}
		if v, err := strconv.ParseInt(attrs["maxEpochSeconds"], 10, 64); err == nil {
			max = time.Unix(v, 0).UTC()
		}
	}
	if ann.HasAnnotation("Past") && max.After(now) {
		max = now.Add(-time.Second)
	}
	if ann.HasAnnotation("Future") && min.Before(now) {
		min = now.Add(time.Second)
	}
	return min, max
}

func (s TimeStrategy) Generate(ctx *Context, req Request, _ Regenerator) (any, error) {
	min, max := s.bounds(ctx, req.Annotations)
	if ctx.Biased(edgeBias) {
		ctx.Trace.DesignDecision(req.Name, "time", "boundary:instant")
		if ctx.Biased(0.5) {
			return min, nil
		}
		return max, nil
	}
	span := max.Sub(min)
	if span <= 0 {
		return min, nil
	}
	offset := time.Duration(ctx.Rand.Int63n(int64(span)))
	return min.Add(offset), nil
}

func (s TimeStrategy) EdgeCases(ctx *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := s.bounds(ctx, req.Annotations)
	return []any{min, max}, nil
}

func (s TimeStrategy) Invalid(ctx *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := s.bounds(ctx, req.Annotations)
	return []any{min.Add(-time.Second), max.Add(time.Second)}, nil
}
