package fixture

import (
	"testing"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/fixture/strategy"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

func intDescriptor() *typegraph.Descriptor {
	return &typegraph.Descriptor{TypeID: "int", Kind: typegraph.KindValue, ValueKind: typegraph.ValueInt}
}

func newGenerator() *Generator {
	return NewGenerator(strategy.DefaultRegistry(), nil)
}

func TestGenerator_Generate_Int(t *testing.T) {
	g := newGenerator()
	ctx := NewContext(1, func() time.Time { return time.Unix(0, 0) }, nil)
	req := Request{Name: "n", Type: intDescriptor(), Annotations: typegraph.ParseAnnotations("IntRange(min=1,max=5)")}

	v, err := g.Generate(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := v.(int)
	if !ok || n < 1 || n > 5 {
		t.Fatalf("expected int in [1,5], got %#v", v)
	}
}

func TestGenerator_Generate_NoStrategyAndNoGoTypeFails(t *testing.T) {
	g := newGenerator()
	ctx := NewContext(1, nil, nil)
	// An empty Kind matches no registered strategy, and with no GoType the
	// mock fallback has nothing to build, so the "no strategy registered"
	// error is returned.
	req := Request{Name: "x", Type: &typegraph.Descriptor{TypeID: "mystery"}}

	if _, err := g.Generate(ctx, req); err == nil {
		t.Fatalf("expected an error for a type with no GoType and no strategy support")
	}
}

func TestGenerator_GenerateValidBoundaries(t *testing.T) {
	g := newGenerator()
	ctx := NewContext(1, nil, nil)
	req := Request{Name: "n", Type: intDescriptor(), Annotations: typegraph.ParseAnnotations("IntRange(min=1,max=5)")}

	edges, err := g.GenerateValidBoundaries(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) == 0 {
		t.Fatalf("expected at least one boundary value")
	}
}

func TestGenerator_ConfigurationErrorRejectsMutuallyExclusive(t *testing.T) {
	g := newGenerator()
	ctx := NewContext(1, nil, nil)
	req := Request{Name: "n", Type: intDescriptor(), Annotations: typegraph.ParseAnnotations("Null;NotNull")}

	if _, err := g.Generate(ctx, req); err == nil {
		t.Fatalf("expected a configuration error for Null+NotNull")
	}
}
