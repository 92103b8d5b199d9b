// Package constraint implements the Annotation & Constraint Model (C2) and
// the Contract Validator (C10): the value-object interpretation of the
// struct-tag annotations typegraph.Annotations carries, a pre-generation
// sanity pass over mutually-exclusive/nonsensical combinations, and the
// post-generation rule evaluation against declared constraints.
package constraint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// exclusivePairs lists annotation names that must never co-occur.
var exclusivePairs = [][2]string{
	{"Null", "NotNull"},
	{"AssertTrue", "AssertFalse"},
	{"Past", "Future"},
	{"Positive", "Negative"},
}

// valueConstraints are forbidden alongside @Null (a null-only slot cannot
// also carry a value constraint).
var valueConstraints = []string{
	"IntRange", "LongRange", "DoubleRange", "DecimalMin", "Digits",
	"Positive", "PositiveOrZero", "Negative", "NegativeOrZero",
	"StringLength", "NotBlank", "Pattern", "Email", "Url", "Size",
	"Past", "Future",
}

// ValidateConfiguration runs the Configuration Validator pre-pass (§4.2):
// it rejects mutually exclusive or nonsensical annotation combinations
// before a strategy is ever selected, failing fast with a ConfigurationError
// carrying "InvalidAnnotationValue" semantics.
func ValidateConfiguration(ann typegraph.Annotations, vk typegraph.ValueKind, kind typegraph.Kind) error {
	for _, pair := range exclusivePairs {
		if ann.HasAnnotation(pair[0]) && ann.HasAnnotation(pair[1]) {
			return invalidAnnotation(fmt.Sprintf("@%s and @%s are mutually exclusive", pair[0], pair[1]))
		}
	}
	if ann.HasAnnotation("Null") {
		for _, vc := range valueConstraints {
			if ann.HasAnnotation(vc) {
				return invalidAnnotation(fmt.Sprintf("@Null cannot be combined with @%s", vc))
			}
		}
	}
	isString := kind == typegraph.KindValue && vk == typegraph.ValueString
	isNumeric := kind == typegraph.KindValue && (vk == typegraph.ValueInt || vk == typegraph.ValueLong || vk == typegraph.ValueDouble || vk == typegraph.ValueDecimal)
	isTemporal := kind == typegraph.KindValue && vk == typegraph.ValueTime

	if ann.HasAnnotation("Pattern") && !isString {
		return invalidAnnotation("@Pattern is only valid on string-typed values")
	}
	if ann.HasAnnotation("Positive") && !isNumeric {
		return invalidAnnotation("@Positive is only valid on numeric-typed values")
	}
	if ann.HasAnnotation("Future") && !isTemporal {
		return invalidAnnotation("@Future is only valid on temporal-typed values")
	}
	if ann.HasAnnotation("Past") && !isTemporal {
		return invalidAnnotation("@Past is only valid on temporal-typed values")
	}
	if attrs, ok := ann.GetAnnotationAttributes("Size"); ok {
		min, max, err := parseIntPair(attrs, "min", "max", -1)
		if err != nil {
			return invalidAnnotation("@Size: " + err.Error())
		}
		if min < 0 || (max >= 0 && min > max) {
			return invalidAnnotation(fmt.Sprintf("@Size has an invalid bound (min=%d, max=%d)", min, max))
		}
	}
	return nil
}

func invalidAnnotation(message string) error {
	return &kerrors.ConfigurationError{Message: "InvalidAnnotationValue: " + message}
}

func parseIntPair(attrs map[string]string, minKey, maxKey string, defaultMax int) (min, max int, err error) {
	max = defaultMax
	if v, ok := attrs[minKey]; ok {
		min, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, 0, fmt.Errorf("bad %s: %v", minKey, err)
		}
	}
	if v, ok := attrs[maxKey]; ok {
		max, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, 0, fmt.Errorf("bad %s: %v", maxKey, err)
		}
	}
	return min, max, nil
}
