package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

func intDescriptor() *typegraph.Descriptor {
	return &typegraph.Descriptor{TypeID: "int", Kind: typegraph.KindValue, ValueKind: typegraph.ValueInt}
}

func stringDescriptor() *typegraph.Descriptor {
	return &typegraph.Descriptor{TypeID: "string", Kind: typegraph.KindValue, ValueKind: typegraph.ValueString}
}

func TestRegistry_SelectsIntStrategy(t *testing.T) {
	r := DefaultRegistry()
	s, ok := r.Select(Request{Type: intDescriptor()})
	if !ok {
		t.Fatalf("expected a strategy for int")
	}
	if s.Kind() != Terminal {
		t.Fatalf("expected Terminal strategy, got %v", s.Kind())
	}
}

func TestRegistry_Deterministic(t *testing.T) {
	ctx1 := NewContext(42, func() time.Time { return time.Unix(0, 0) }, nil)
	ctx2 := NewContext(42, func() time.Time { return time.Unix(0, 0) }, nil)
	req := Request{Type: intDescriptor(), Annotations: typegraph.ParseAnnotations("IntRange(min=0,max=100)")}
	s, _ := DefaultRegistry().Select(req)

	a, err := s.Generate(ctx1, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Generate(ctx2, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("same seed produced different values: %v vs %v", a, b)
	}
}

func TestStringStrategy_RespectsLength(t *testing.T) {
	ctx := NewContext(7, nil, nil)
	req := Request{Type: stringDescriptor(), Annotations: typegraph.ParseAnnotations("StringLength(min=3,max=3)")}
	s := StringStrategy{}
	v, err := s.Generate(ctx, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	str, ok := v.(string)
	if !ok || len(str) != 3 {
		t.Fatalf("expected a 3-char string, got %#v", v)
	}
}

func TestNumericStrategy_InvalidExceedsBounds(t *testing.T) {
	req := Request{Type: intDescriptor(), Annotations: typegraph.ParseAnnotations("IntRange(min=1,max=10)")}
	s := NumericStrategy{ValueKind: typegraph.ValueInt}
	invalid, err := s.Invalid(nil, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(invalid) != 2 || invalid[0].(int) != 0 || invalid[1].(int) != 11 {
		t.Fatalf("unexpected invalid set: %#v", invalid)
	}
}

func TestNumericStrategy_EdgeCasesIncludesBoundaryNeighbors(t *testing.T) {
	req := Request{Type: intDescriptor(), Annotations: typegraph.ParseAnnotations("IntRange(min=1,max=10)")}
	s := NumericStrategy{ValueKind: typegraph.ValueInt}
	edges, err := s.EdgeCases(nil, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]bool{1: true, 10: true, 2: true, 9: true}
	got := map[int]bool{}
	for _, v := range edges {
		got[v.(int)] = true
	}
	for k := range want {
		if !got[k] {
			t.Fatalf("expected edge case %d in %#v", k, edges)
		}
	}
}

func TestNumericStrategy_EdgeCasesIncludesZeroWhenInRange(t *testing.T) {
	req := Request{Type: intDescriptor(), Annotations: typegraph.ParseAnnotations("IntRange(min=-5,max=5)")}
	s := NumericStrategy{ValueKind: typegraph.ValueInt}
	edges, err := s.EdgeCases(nil, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range edges {
		if v.(int) == 0 {
			return
		}
	}
	t.Fatalf("expected 0 among edge cases, got %#v", edges)
}

func TestDoubleStrategy_EdgeCasesIncludesFloatSpecificCases(t *testing.T) {
	req := Request{Type: stringDescriptor(), Annotations: typegraph.ParseAnnotations("DoubleRange(min=-5,max=5)")}
	s := DoubleStrategy{}
	edges, err := s.EdgeCases(nil, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) < 6 {
		t.Fatalf("expected min, max, nextUp(min), nextDown(max), 0, -0.0, got %#v", edges)
	}
	var sawNegativeZero bool
	for _, v := range edges {
		f := v.(float64)
		if f == 0 && math.Signbit(f) {
			sawNegativeZero = true
		}
	}
	if !sawNegativeZero {
		t.Fatalf("expected -0.0 among edge cases, got %#v", edges)
	}
}

func TestStringStrategy_EdgeCasesIncludesBoundaryNeighbors(t *testing.T) {
	req := Request{Type: stringDescriptor(), Annotations: typegraph.ParseAnnotations("StringLength(min=2,max=300)")}
	s := StringStrategy{}
	edges, err := s.EdgeCases(NewContext(1, nil, nil), req, nil)
	if err != nil {
		t.Fatal(err)
	}
	lengths := map[int]bool{}
	for _, v := range edges {
		lengths[len(v.(string))] = true
	}
	for _, want := range []int{2, 256, 3, 255} {
		if !lengths[want] {
			t.Fatalf("expected a length-%d edge case in %#v", want, lengths)
		}
	}
}

func TestEnumStrategy_GeneratesDeclaredValue(t *testing.T) {
	ctx := NewContext(1, nil, nil)
	req := Request{Type: stringDescriptor(), Annotations: typegraph.ParseAnnotations("Enum(values=RED|GREEN|BLUE)")}
	s := EnumStrategy{}
	v, err := s.Generate(ctx, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	switch v {
	case "RED", "GREEN", "BLUE":
	default:
		t.Fatalf("unexpected enum value: %v", v)
	}
}
