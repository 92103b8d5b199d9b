package strategy

import (
	"strconv"

	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

const defaultContainerSize = 3

func sizeBounds(ann typegraph.Annotations) (min, max int) {
	min, max = 0, defaultContainerSize
	if attrs, ok := ann.GetAnnotationAttributes("Size"); ok {
		if v, err := strconv.Atoi(attrs["min"]); err == nil {
			min = v
		}
		if v, err := strconv.Atoi(attrs["max"]); err == nil {
			max = v
		}
	}
	if max < min {
		max = min
	}
	return min, max
}

// ContainerStrategy is a Recursive strategy over a Go slice Container: it
// builds the empty shell itself and asks the Fixture Generator (via regen)
// to populate each element, respecting a declared @Size.
type ContainerStrategy struct{}

func (ContainerStrategy) Kind() RegisteredKind { return Recursive }

func (ContainerStrategy) Supports(req Request) bool {
	return typeKind(req.Type) == typegraph.KindContainer
}

func (ContainerStrategy) count(ctx *Context, ann typegraph.Annotations) int {
	min, max := sizeBounds(ann)
	if max == min {
		return min
	}
	return min + ctx.Rand.Intn(max-min+1)
}

func (s ContainerStrategy) Generate(ctx *Context, req Request, regen Regenerator) (any, error) {
	elemType := req.Type.ElementType()
	n := s.count(ctx, req.Annotations)
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := regen(ctx, Request{Name: req.Name, Type: elemType})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s ContainerStrategy) EdgeCases(ctx *Context, req Request, regen Regenerator) ([]any, error) {
	elemType := req.Type.ElementType()
	empty := []any{}
	one, err := regen(ctx, Request{Name: req.Name, Type: elemType})
	if err != nil {
		return nil, err
	}
	return []any{empty, []any{one}}, nil
}

func (s ContainerStrategy) Invalid(_ *Context, req Request, _ Regenerator) ([]any, error) {
	min, max := sizeBounds(req.Annotations)
	var out []any
	if min > 0 {
		out = append(out, make([]any, min-1))
	}
	out = append(out, make([]any, max+1))
	return out, nil
}

// MapStrategy is a Recursive strategy over a Map: keys and values are each
// regenerated independently per entry.
type MapStrategy struct{}

func (MapStrategy) Kind() RegisteredKind { return Recursive }

func (MapStrategy) Supports(req Request) bool {
	return typeKind(req.Type) == typegraph.KindMap
}

func (s MapStrategy) Generate(ctx *Context, req Request, regen Regenerator) (any, error) {
	keyType := req.Type.KeyType()
	valType := req.Type.ValueType()
	n := ContainerStrategy{}.count(ctx, req.Annotations)
	out := make(map[any]any, n)
	for i := 0; i < n; i++ {
		k, err := regen(ctx, Request{Name: req.Name + ".key", Type: keyType})
		if err != nil {
			return nil, err
		}
		v, err := regen(ctx, Request{Name: req.Name + ".value", Type: valType})
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (s MapStrategy) EdgeCases(_ *Context, req Request, _ Regenerator) ([]any, error) {
	return []any{map[any]any{}}, nil
}

func (s MapStrategy) Invalid(_ *Context, req Request, _ Regenerator) ([]any, error) {
	min, _ := sizeBounds(req.Annotations)
	if min > 0 {
		return []any{map[any]any{}}, nil
	}
	return nil, nil
}

// ArrayStrategy is a Recursive strategy over a platform Array, using the
// TypeDescriptor's own ArrayOps instantiator/setter so it never reflects
// over the array type directly.
type ArrayStrategy struct{}

func (ArrayStrategy) Kind() RegisteredKind { return Recursive }

func (ArrayStrategy) Supports(req Request) bool {
	return typeKind(req.Type) == typegraph.KindArray
}

func (s ArrayStrategy) Generate(ctx *Context, req Request, regen Regenerator) (any, error) {
	compType := req.Type.ComponentType()
	n := ContainerStrategy{}.count(ctx, req.Annotations)
	arr := req.Type.Array.Instantiate(n)
	for i := 0; i < n; i++ {
		v, err := regen(ctx, Request{Name: req.Name, Type: compType})
		if err != nil {
			return nil, err
		}
		req.Type.Array.Set(arr, i, v)
	}
	return arr, nil
}

func (s ArrayStrategy) EdgeCases(_ *Context, req Request, _ Regenerator) ([]any, error) {
	return []any{req.Type.Array.Instantiate(0)}, nil
}

func (s ArrayStrategy) Invalid(_ *Context, req Request, _ Regenerator) ([]any, error) {
	min, _ := sizeBounds(req.Annotations)
	if min > 0 {
		return []any{req.Type.Array.Instantiate(0)}, nil
	}
	return nil, nil
}
