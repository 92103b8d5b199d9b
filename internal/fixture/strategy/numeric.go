package strategy

import (
	"math"
	"strconv"

	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// edgeBias is the probability a numeric Generate call returns a boundary
// value instead of a uniformly sampled interior one (§4.3: "approximately
// 10% of generated values land on a declared boundary").
const edgeBias = 0.10

// NumericStrategy is a Terminal strategy over the Int/Long value kinds,
// reading @IntRange/@LongRange bounds (or a wide platform-sized default
// range when none is declared) and sampling
// uniformly within them, with a 10% chance of returning a declared boundary
// instead.
type NumericStrategy struct{ ValueKind typegraph.ValueKind }

func (s NumericStrategy) Supports(req Request) bool {
	return typeKind(req.Type) == typegraph.KindValue && valueKind(req.Type) == s.ValueKind
}

func (NumericStrategy) Kind() RegisteredKind { return Terminal }

func (s NumericStrategy) bounds(ann typegraph.Annotations) (min, max int64) {
	min, max = boundsFor(s.ValueKind)
	var attrName string
	switch s.ValueKind {
	case typegraph.ValueInt:
		attrName = "IntRange"
	case typegraph.ValueLong:
		attrName = "LongRange"
	default:
		attrName = "IntRange"
	}
	if attrs, ok := ann.GetAnnotationAttributes(attrName); ok {
		if v, err := strconv.ParseInt(attrs["min"], 10, 64); err == nil {
			min = v
		}
		if v, err := strconv.ParseInt(attrs["max"], 10, 64); err == nil {
			max = v
		}
	}
	if ann.HasAnnotation("Positive") && min < 1 {
		min = 1
	}
	if ann.HasAnnotation("PositiveOrZero") && min < 0 {
		min = 0
	}
	if ann.HasAnnotation("Negative") && max > -1 {
		max = -1
	}
	if ann.HasAnnotation("NegativeOrZero") && max > 0 {
		max = 0
	}
	return min, max
}

func boundsFor(k typegraph.ValueKind) (int64, int64) {
	switch k {
	case typegraph.ValueInt:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// nextInt64Inclusive samples a uniform int64 in [min,max], guarding the
// overflow case where max-min+1 does not fit in int64 (the full-range
// default) by using a raw 64-bit draw, which already spans the whole range.
func nextInt64Inclusive(r *Context, min, max int64) int64 {
	if min > max {
		min, max = max, min
	}
	span := uint64(max-min) + 1
	if span == 0 { // max-min == MaxUint64 range; span overflowed to 0
		return int64(r.Rand.Uint64())
	}
	return min + int64(r.Rand.Uint64()%span)
}

func (s NumericStrategy) Generate(ctx *Context, req Request, _ Regenerator) (any, error) {
	min, max := s.bounds(req.Annotations)
	if ctx.Biased(edgeBias) {
		if ctx.Biased(0.5) {
			ctx.Trace.DesignDecision(req.Name, "numeric", "boundary:min")
			return s.convert(min), nil
		}
		ctx.Trace.DesignDecision(req.Name, "numeric", "boundary:max")
		return s.convert(max), nil
	}
	return s.convert(nextInt64Inclusive(ctx, min, max)), nil
}

func (s NumericStrategy) convert(v int64) any {
	switch s.ValueKind {
	case typegraph.ValueInt:
		return int(v)
	case typegraph.ValueLong:
		return v
	case typegraph.ValueDouble:
		return float64(v)
	default:
		return DecimalFromFloat(float64(v))
	}
}

// EdgeCases returns {min, max, min+1, max-1, 0 if in range}, dropping any
// neighbor that collapses onto min/max itself for a single-value or
// two-value range so the same boundary is never reported twice.
func (s NumericStrategy) EdgeCases(_ *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := s.bounds(req.Annotations)
	out := []any{s.convert(min), s.convert(max)}
	if min+1 < max {
		out = append(out, s.convert(min+1))
	}
	if max-1 > min {
		out = append(out, s.convert(max-1))
	}
	if min <= 0 && max >= 0 {
		out = append(out, s.convert(0))
	}
	return out, nil
}

func (s NumericStrategy) Invalid(_ *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := s.bounds(req.Annotations)
	var out []any
	if min > math.MinInt64 {
		out = append(out, s.convert(min-1))
	}
	if max < math.MaxInt64 {
		out = append(out, s.convert(max+1))
	}
	return out, nil
}

// DoubleStrategy generates float64 samples directly in range, since
// nextInt64Inclusive's integer sampling does not cover the fractional
// interior a DoubleRange/DecimalMin constraint expects.
type DoubleStrategy struct{ Decimal bool }

func (s DoubleStrategy) Supports(req Request) bool {
	if typeKind(req.Type) != typegraph.KindValue {
		return false
	}
	if s.Decimal {
		return valueKind(req.Type) == typegraph.ValueDecimal
	}
	return valueKind(req.Type) == typegraph.ValueDouble
}

func (s DoubleStrategy) Kind() RegisteredKind { return Terminal }

func (s DoubleStrategy) bounds(ann typegraph.Annotations) (min, max float64) {
	min, max = -1e9, 1e9
	if attrs, ok := ann.GetAnnotationAttributes("DoubleRange"); ok {
		if v, err := strconv.ParseFloat(attrs["min"], 64); err == nil {
			min = v
		}
		if v, err := strconv.ParseFloat(attrs["max"], 64); err == nil {
			max = v
		}
	}
	if attrs, ok := ann.GetAnnotationAttributes("DecimalMin"); ok {
		if v, err := strconv.ParseFloat(attrs["value"], 64); err == nil {
			min = v
		}
	}
	if ann.HasAnnotation("Positive") && min < 1e-9 {
		min = 1e-9
	}
	if ann.HasAnnotation("PositiveOrZero") && min < 0 {
		min = 0
	}
	if ann.HasAnnotation("Negative") && max > -1e-9 {
		max = -1e-9
	}
	if ann.HasAnnotation("NegativeOrZero") && max > 0 {
		max = 0
	}
	return min, max
}

func (s DoubleStrategy) convert(f float64) any {
	if s.Decimal {
		return DecimalFromFloat(f)
	}
	return f
}

func (s DoubleStrategy) Generate(ctx *Context, req Request, _ Regenerator) (any, error) {
	min, max := s.bounds(req.Annotations)
	if ctx.Biased(edgeBias) {
		if ctx.Biased(0.5) {
			ctx.Trace.DesignDecision(req.Name, "double", "boundary:min")
			return s.convert(min), nil
		}
		ctx.Trace.DesignDecision(req.Name, "double", "boundary:max")
		return s.convert(max), nil
	}
	return s.convert(min + ctx.Rand.Float64()*(max-min)), nil
}

// EdgeCases returns {min, max, nextUp(min), nextDown(max), 0 if in range,
// -0.0 if in range}: the floating-point analogue of the integer min+1/max-1
// neighbors is the adjacent representable value, not an arbitrary +/-1.
func (s DoubleStrategy) EdgeCases(_ *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := s.bounds(req.Annotations)
	out := []any{s.convert(min), s.convert(max)}
	if nextUp := math.Nextafter(min, math.Inf(1)); nextUp < max {
		out = append(out, s.convert(nextUp))
	}
	if nextDown := math.Nextafter(max, math.Inf(-1)); nextDown > min {
		out = append(out, s.convert(nextDown))
	}
	if min <= 0 && max >= 0 {
		out = append(out, s.convert(0))
		out = append(out, s.convert(math.Copysign(0, -1)))
	}
	return out, nil
}

func (s DoubleStrategy) Invalid(_ *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := s.bounds(req.Annotations)
	return []any{s.convert(min - 1), s.convert(max + 1)}, nil
}
