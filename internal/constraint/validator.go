package constraint

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
)

// Validator is the Contract Validator (C10): it reads the annotations
// declared on an element and evaluates each rule against a produced value,
// returning one assertion.Record per rule actually present. A non-PASSED
// record is returned to the caller as-is, not raised as an error; the
// verdict decider turns the first FAILED record into AssertionFailed.
type Validator struct {
	// Now supplies the frozen clock for @Past/@Future checks.
	Now func() time.Time
}

// NewValidator builds a Validator against the given frozen-clock source.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{Now: now}
}

// Validate evaluates every rule declared in ann against value, returning one
// Record per declared rule.
func (v *Validator) Validate(ann interface {
	HasAnnotation(string) bool
	GetAnnotationAttributes(string) (map[string]string, bool)
}, value any) []assertion.Record {
	var out []assertion.Record

	if ann.HasAnnotation("NotNull") {
		out = append(out, v.checkNotNull(value))
	}
	if ann.HasAnnotation("Null") {
		out = append(out, v.checkNull(value))
	}
	if ann.HasAnnotation("AssertTrue") {
		out = append(out, v.checkBool("AssertTrue", value, true))
	}
	if ann.HasAnnotation("AssertFalse") {
		out = append(out, v.checkBool("AssertFalse", value, false))
	}
	if attrs, ok := ann.GetAnnotationAttributes("IntRange"); ok {
		out = append(out, v.checkRange("IntRange", attrs, value))
	}
	if attrs, ok := ann.GetAnnotationAttributes("LongRange"); ok {
		out = append(out, v.checkRange("LongRange", attrs, value))
	}
	if attrs, ok := ann.GetAnnotationAttributes("DoubleRange"); ok {
		out = append(out, v.checkRange("DoubleRange", attrs, value))
	}
	if attrs, ok := ann.GetAnnotationAttributes("DecimalMin"); ok {
		out = append(out, v.checkDecimalMin(attrs, value))
	}
	if attrs, ok := ann.GetAnnotationAttributes("Digits"); ok {
		out = append(out, v.checkDigits(attrs, value))
	}
	if ann.HasAnnotation("Positive") {
		out = append(out, v.checkSign("Positive", value, func(f float64) bool { return f > 0 }))
	}
	if ann.HasAnnotation("PositiveOrZero") {
		out = append(out, v.checkSign("PositiveOrZero", value, func(f float64) bool { return f >= 0 }))
	}
	if ann.HasAnnotation("Negative") {
		out = append(out, v.checkSign("Negative", value, func(f float64) bool { return f < 0 }))
	}
	if ann.HasAnnotation("NegativeOrZero") {
		out = append(out, v.checkSign("NegativeOrZero", value, func(f float64) bool { return f <= 0 }))
	}
	if attrs, ok := ann.GetAnnotationAttributes("StringLength"); ok {
		out = append(out, v.checkStringLength(attrs, value))
	}
	if ann.HasAnnotation("NotBlank") {
		out = append(out, v.checkNotBlank(value))
	}
	if attrs, ok := ann.GetAnnotationAttributes("Pattern"); ok {
		out = append(out, v.checkPattern(attrs, value))
	}
	if attrs, ok := ann.GetAnnotationAttributes("Email"); ok {
		out = append(out, v.checkEmail(attrs, value))
	}
	if attrs, ok := ann.GetAnnotationAttributes("Url"); ok {
		out = append(out, v.checkURL(attrs, value))
	}
	if attrs, ok := ann.GetAnnotationAttributes("Size"); ok {
		out = append(out, v.checkSize(attrs, value))
	}
	if ann.HasAnnotation("Past") {
		out = append(out, v.checkTemporal("Past", value, func(t, now time.Time) bool { return t.Before(now) }))
	}
	if ann.HasAnnotation("Future") {
		out = append(out, v.checkTemporal("Future", value, func(t, now time.Time) bool { return t.After(now) }))
	}
	return out
}

func pass(rule string) assertion.Record {
	return assertion.Record{Status: assertion.Passed, Rule: assertion.Annotation(rule)}
}

func fail(rule, message string, expected, actual any) assertion.Record {
	return assertion.Record{Status: assertion.Failed, Rule: assertion.Annotation(rule), Message: message, Expected: expected, Actual: actual}
}

func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func (v *Validator) checkNotNull(value any) assertion.Record {
	if isNilValue(value) {
		return fail("NotNull", "value must not be null", "non-null", nil)
	}
	return pass("NotNull")
}

func (v *Validator) checkNull(value any) assertion.Record {
	if !isNilValue(value) {
		return fail("Null", "value must be null", nil, value)
	}
	return pass("Null")
}

func (v *Validator) checkBool(rule string, value any, want bool) assertion.Record {
	b, ok := value.(bool)
	if !ok || b != want {
		return fail(rule, fmt.Sprintf("value must be %v", want), want, value)
	}
	return pass(rule)
}

func asFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func (v *Validator) checkRange(rule string, attrs map[string]string, value any) assertion.Record {
	f, ok := asFloat(value)
	if !ok {
		return fail(rule, "value is not numeric", nil, value)
	}
	min, hasMin := parseFloatAttr(attrs, "min")
	max, hasMax := parseFloatAttr(attrs, "max")
	if hasMin && f < min {
		return fail(rule, fmt.Sprintf("value %v below minimum %v", f, min), min, f)
	}
	if hasMax && f > max {
		return fail(rule, fmt.Sprintf("value %v above maximum %v", f, max), max, f)
	}
	return pass(rule)
}

func parseFloatAttr(attrs map[string]string, key string) (float64, bool) {
	s, ok := attrs[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func (v *Validator) checkDecimalMin(attrs map[string]string, value any) assertion.Record {
	f, ok := asFloat(value)
	if !ok {
		return fail("DecimalMin", "value is not numeric", nil, value)
	}
	min, _ := parseFloatAttr(attrs, "value")
	inclusive := attrs["inclusive"] != "false"
	if inclusive && f < min {
		return fail("DecimalMin", fmt.Sprintf("value %v below minimum %v", f, min), min, f)
	}
	if !inclusive && f <= min {
		return fail("DecimalMin", fmt.Sprintf("value %v not strictly above minimum %v", f, min), min, f)
	}
	return pass("DecimalMin")
}

func (v *Validator) checkDigits(attrs map[string]string, value any) assertion.Record {
	f, ok := asFloat(value)
	if !ok {
		return fail("Digits", "value is not numeric", nil, value)
	}
	integer, _ := strconv.Atoi(attrs["integer"])
	fraction, _ := strconv.Atoi(attrs["fraction"])
	s := strconv.FormatFloat(f, 'f', -1, 64)
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(intPart) > integer || len(fracPart) > fraction {
		return fail("Digits", fmt.Sprintf("value %v exceeds %d integer / %d fraction digits", f, integer, fraction), nil, f)
	}
	return pass("Digits")
}

func (v *Validator) checkSign(rule string, value any, ok func(float64) bool) assertion.Record {
	f, isNum := asFloat(value)
	if !isNum || !ok(f) {
		return fail(rule, "value failed sign check", nil, value)
	}
	return pass(rule)
}

func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func (v *Validator) checkStringLength(attrs map[string]string, value any) assertion.Record {
	s, ok := asString(value)
	if !ok {
		return fail("StringLength", "value is not a string", nil, value)
	}
	min, hasMin := attrs["min"]
	max, hasMax := attrs["max"]
	n := len([]rune(s))
	if hasMin {
		if mi, err := strconv.Atoi(min); err == nil && n < mi {
			return fail("StringLength", fmt.Sprintf("length %d below minimum %d", n, mi), mi, n)
		}
	}
	if hasMax {
		if ma, err := strconv.Atoi(max); err == nil && n > ma {
			return fail("StringLength", fmt.Sprintf("length %d above maximum %d", n, ma), ma, n)
		}
	}
	return pass("StringLength")
}

func (v *Validator) checkNotBlank(value any) assertion.Record {
	s, ok := asString(value)
	if !ok || strings.TrimSpace(s) == "" {
		return fail("NotBlank", "value must not be blank", "<non-blank>", value)
	}
	return pass("NotBlank")
}

func (v *Validator) checkPattern(attrs map[string]string, value any) assertion.Record {
	s, ok := asString(value)
	if !ok {
		return fail("Pattern", "value is not a string", nil, value)
	}
	re, err := regexp.Compile(attrs["regexp"])
	if err != nil {
		return fail("Pattern", "invalid pattern: "+err.Error(), attrs["regexp"], value)
	}
	if !re.MatchString(s) {
		return fail("Pattern", fmt.Sprintf("value %q does not match %q", s, attrs["regexp"]), attrs["regexp"], s)
	}
	return pass("Pattern")
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (v *Validator) checkEmail(attrs map[string]string, value any) assertion.Record {
	s, ok := asString(value)
	if !ok || !emailRe.MatchString(s) {
		return fail("Email", "value is not a structurally valid email", "user@host.tld", value)
	}
	host := s[strings.LastIndexByte(s, '@')+1:]
	if block := splitCSV(attrs["block"]); containsFold(block, host) {
		return fail("Email", fmt.Sprintf("host %q is blocked", host), nil, s)
	}
	if allow := splitCSV(attrs["allow"]); len(allow) > 0 && !containsFold(allow, host) {
		return fail("Email", fmt.Sprintf("host %q is not in the allow list", host), allow, s)
	}
	return pass("Email")
}

func (v *Validator) checkURL(attrs map[string]string, value any) assertion.Record {
	s, ok := asString(value)
	if !ok {
		return fail("Url", "value is not a string", nil, value)
	}
	idx := strings.Index(s, "://")
	if idx < 0 {
		return fail("Url", "value has no protocol", nil, s)
	}
	protocol := s[:idx]
	rest := s[idx+3:]
	host := rest
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		host = rest[:slash]
	}
	if protocols := splitCSV(attrs["protocol"]); len(protocols) > 0 && !containsFold(protocols, protocol) {
		return fail("Url", fmt.Sprintf("protocol %q not allowed", protocol), protocols, s)
	}
	if block := splitCSV(attrs["hostBlock"]); containsFold(block, host) {
		return fail("Url", fmt.Sprintf("host %q is blocked", host), nil, s)
	}
	if allow := splitCSV(attrs["hostAllow"]); len(allow) > 0 && !containsFold(allow, host) {
		return fail("Url", fmt.Sprintf("host %q is not in the allow list", host), allow, s)
	}
	return pass("Url")
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func (v *Validator) checkSize(attrs map[string]string, value any) assertion.Record {
	rv := reflect.ValueOf(value)
	var n int
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		n = rv.Len()
	default:
		return fail("Size", "value has no size", nil, value)
	}
	if min, ok := attrs["min"]; ok {
		if mi, err := strconv.Atoi(min); err == nil && n < mi {
			return fail("Size", fmt.Sprintf("size %d below minimum %d", n, mi), mi, n)
		}
	}
	if max, ok := attrs["max"]; ok {
		if ma, err := strconv.Atoi(max); err == nil && n > ma {
			return fail("Size", fmt.Sprintf("size %d above maximum %d", n, ma), ma, n)
		}
	}
	return pass("Size")
}

func (v *Validator) checkTemporal(rule string, value any, ok func(t, now time.Time) bool) assertion.Record {
	t, isTime := value.(time.Time)
	if !isTime {
		return fail(rule, "value is not temporal", nil, value)
	}
	now := v.Now()
	if !ok(t, now) {
		return fail(rule, fmt.Sprintf("%v failed %s check against %v", t, rule, now), now, t)
	}
	return pass(rule)
}
