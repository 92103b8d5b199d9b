package strategy

import "strings"

// EnumStrategy handles a field carrying an explicit `Enum(values=a|b|c)`
// annotation — the field-level convention typegraph documents for Go's lack
// of a distinct enum type (enum-ness is declared per occurrence, not
// per-type). Must be registered ahead of NumericStrategy/StringStrategy in
// the Registry so its more specific predicate wins the first-match
// dispatch.
type EnumStrategy struct{}

func (EnumStrategy) Kind() RegisteredKind { return Terminal }

func (EnumStrategy) Supports(req Request) bool {
	_, ok := req.Annotations.GetAnnotationAttributes("Enum")
	return ok
}

func (EnumStrategy) values(req Request) []string {
	attrs, _ := req.Annotations.GetAnnotationAttributes("Enum")
	if attrs["values"] == "" {
		return nil
	}
	return strings.Split(attrs["values"], "|")
}

func (s EnumStrategy) Generate(ctx *Context, req Request, _ Regenerator) (any, error) {
	values := s.values(req)
	if len(values) == 0 {
		return "", nil
	}
	return values[ctx.Rand.Intn(len(values))], nil
}

func (s EnumStrategy) EdgeCases(_ *Context, req Request, _ Regenerator) ([]any, error) {
	values := s.values(req)
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out, nil
}

func (s EnumStrategy) Invalid(_ *Context, req Request, _ Regenerator) ([]any, error) {
	return []any{"__not_a_declared_enum_value__"}, nil
}
