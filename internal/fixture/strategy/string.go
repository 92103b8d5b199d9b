package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// physicalStringLimit bounds runaway generation: it is the upper bound when
// no @StringLength/@Size maximum is declared, and a declared maximum above
// it is clamped down to it (§4.3's "a physical ceiling applies even to an
// unconstrained slot").
const physicalStringLimit = 256

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// StringStrategy is a Terminal strategy over ValueString, covering the
// plain @StringLength/@NotBlank/@Pattern case and the @Email/@Url
// well-known-format sub-kinds.
type StringStrategy struct{}

func (StringStrategy) Kind() RegisteredKind { return Terminal }

func (StringStrategy) Supports(req Request) bool {
	return typeKind(req.Type) == typegraph.KindValue && valueKind(req.Type) == typegraph.ValueString
}

func (StringStrategy) bounds(ann typegraph.Annotations) (min, max int) {
	min, max = 0, physicalStringLimit
	if attrs, ok := ann.GetAnnotationAttributes("StringLength"); ok {
		if v, err := strconv.Atoi(attrs["min"]); err == nil {
			min = v
		}
		if v, err := strconv.Atoi(attrs["max"]); err == nil {
			max = v
		}
	}
	if attrs, ok := ann.GetAnnotationAttributes("Size"); ok {
		if v, err := strconv.Atoi(attrs["min"]); err == nil {
			min = v
		}
		if v, err := strconv.Atoi(attrs["max"]); err == nil {
			max = v
		}
	}
	if ann.HasAnnotation("NotBlank") && min < 1 {
		min = 1
	}
	if max > physicalStringLimit {
		max = physicalStringLimit
	}
	if min > max {
		min = max
	}
	return min, max
}

func (s StringStrategy) Generate(ctx *Context, req Request, _ Regenerator) (any, error) {
	if req.Annotations.HasAnnotation("Email") {
		return s.email(ctx), nil
	}
	if req.Annotations.HasAnnotation("Url") {
		return s.url(ctx), nil
	}
	if attrs, ok := req.Annotations.GetAnnotationAttributes("Pattern"); ok {
		if lit := literalFromPattern(attrs["regexp"]); lit != "" {
			return lit, nil
		}
	}
	min, max := s.bounds(req.Annotations)
	if ctx.Biased(edgeBias) {
		ctx.Trace.DesignDecision(req.Name, "string", "boundary:length")
		if ctx.Biased(0.5) {
			return randomString(ctx, min), nil
		}
		return randomString(ctx, max), nil
	}
	n := min
	if max > min {
		n = min + ctx.Rand.Intn(max-min+1)
	}
	return randomString(ctx, n), nil
}

func (StringStrategy) email(ctx *Context) string {
	local := randomString(ctx, 5+ctx.Rand.Intn(5))
	return fmt.Sprintf("%s@example.test", strings.ToLower(local))
}

func (StringStrategy) url(ctx *Context) string {
	path := randomString(ctx, 4+ctx.Rand.Intn(6))
	return fmt.Sprintf("https://example.test/%s", strings.ToLower(path))
}

// literalFromPattern recognizes the trivial anchored-literal pattern shape
// (^literal$) so a generated value satisfies a common fixed-format @Pattern
// without embedding a regular-expression-to-string generator; any other
// pattern falls through to plain random sampling and relies on the Contract
// Validator to flag it during verification, matching the spec's allowance
// that pattern-conformant generation is best-effort, not guaranteed.
func literalFromPattern(re string) string {
	if len(re) >= 2 && re[0] == '^' && re[len(re)-1] == '$' {
		body := re[1 : len(re)-1]
		for _, c := range body {
			if strings.ContainsRune(`.*+?()[]{}|\^$`, c) {
				return ""
			}
		}
		return body
	}
	return ""
}

func randomString(ctx *Context, n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[ctx.Rand.Intn(len(alphanumeric))]
	}
	return string(b)
}

// EdgeCases returns the boundary lengths (min, max) and their +/-1
// neighbors. bounds already clamps max to the physical ceiling, so a
// declared maximum above it is probed at the ceiling itself; the ceiling
// check below therefore adds nothing for any declared range.
func (s StringStrategy) EdgeCases(ctx *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := s.bounds(req.Annotations)
	out := []any{randomString(ctx, min), randomString(ctx, max)}
	if min+1 < max {
		out = append(out, randomString(ctx, min+1))
	}
	if max-1 > min {
		out = append(out, randomString(ctx, max-1))
	}
	if physicalStringLimit > min && physicalStringLimit < max {
		out = append(out, randomString(ctx, physicalStringLimit))
	}
	if req.Annotations.HasAnnotation("Email") {
		out = append(out, s.email(ctx))
	}
	return out, nil
}

func (s StringStrategy) Invalid(ctx *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := s.bounds(req.Annotations)
	var out []any
	if min > 0 {
		out = append(out, randomString(ctx, min-1))
	}
	out = append(out, randomString(ctx, max+1))
	if req.Annotations.HasAnnotation("NotBlank") {
		out = append(out, "   ")
	}
	if req.Annotations.HasAnnotation("Email") {
		out = append(out, "not-an-email")
	}
	if req.Annotations.HasAnnotation("Url") {
		out = append(out, "not a url")
	}
	return out, nil
}
