package constraint

import (
	"testing"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

func TestValidate_IntRange(t *testing.T) {
	v := NewValidator(func() time.Time { return time.Unix(0, 0) })
	ann := typegraph.ParseAnnotations("IntRange(min=1,max=10)")

	records := v.Validate(ann, 5)
	if len(records) != 1 || records[0].Status != assertion.Passed {
		t.Fatalf("expected pass for in-range value, got %#v", records)
	}

	records = v.Validate(ann, 11)
	if len(records) != 1 || records[0].Status != assertion.Failed {
		t.Fatalf("expected fail for out-of-range value, got %#v", records)
	}
}

func TestValidate_NotNullAndPositive(t *testing.T) {
	v := NewValidator(nil)
	ann := typegraph.ParseAnnotations("NotNull;Positive")

	records := v.Validate(ann, -1)
	var sawNotNull, sawPositive bool
	for _, r := range records {
		if r.Rule.Detail == "NotNull" {
			sawNotNull = true
			if r.Status != assertion.Passed {
				t.Fatalf("expected NotNull to pass for -1, got %v", r)
			}
		}
		if r.Rule.Detail == "Positive" {
			sawPositive = true
			if r.Status != assertion.Failed {
				t.Fatalf("expected Positive to fail for -1, got %v", r)
			}
		}
	}
	if !sawNotNull || !sawPositive {
		t.Fatalf("expected both rules evaluated, got %#v", records)
	}
}

func TestValidateConfiguration_MutuallyExclusive(t *testing.T) {
	ann := typegraph.ParseAnnotations("Null;NotNull")
	if err := ValidateConfiguration(ann, typegraph.ValueInt, typegraph.KindValue); err == nil {
		t.Fatalf("expected configuration error for Null+NotNull")
	}
}

func TestValidateConfiguration_PatternOnNonString(t *testing.T) {
	ann := typegraph.ParseAnnotations("Pattern(regexp=^a+$)")
	if err := ValidateConfiguration(ann, typegraph.ValueInt, typegraph.KindValue); err == nil {
		t.Fatalf("expected configuration error for @Pattern on int")
	}
}

func TestValidateConfiguration_SizeBadBound(t *testing.T) {
	ann := typegraph.ParseAnnotations("Size(min=5,max=1)")
	if err := ValidateConfiguration(ann, typegraph.ValueString, typegraph.KindValue); err == nil {
		t.Fatalf("expected configuration error for min>max")
	}
}

func TestValidate_Pattern(t *testing.T) {
	v := NewValidator(nil)
	ann := typegraph.ParseAnnotations("Pattern(regexp=^[a-z]+$)")
	if r := v.Validate(ann, "abc"); r[0].Status != assertion.Passed {
		t.Fatalf("expected pass: %#v", r)
	}
	if r := v.Validate(ann, "ABC"); r[0].Status != assertion.Failed {
		t.Fatalf("expected fail: %#v", r)
	}
}
