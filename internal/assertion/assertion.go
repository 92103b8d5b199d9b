// Package assertion holds the small, dependency-free value objects shared by
// the validator, interceptor chain, trace, and verdict packages: the record
// of a single checked rule, the rule taxonomy, and the outcome of a whole
// scenario. Kept free of imports from the rest of the core so every other
// package can depend on it without a cycle.
package assertion

import "fmt"

// Status is the PASSED/FAILED outcome of one checked rule.
type Status string

const (
	Passed Status = "PASSED"
	Failed Status = "FAILED"
)

// RuleKind discriminates AssertionRule variants for fast dispatch and
// serialization, per the sealed-hierarchy design note.
type RuleKind string

const (
	RuleAnnotation       RuleKind = "Annotation"
	RuleConstructorSanity RuleKind = "ConstructorSanity"
	RuleDefensiveCheck   RuleKind = "DefensiveCheck"
	RuleDataContract     RuleKind = "DataContract"
	RuleStandardAssertion RuleKind = "StandardAssertion"
	RuleUserException    RuleKind = "UserException"
	RuleSystemError      RuleKind = "SystemError"
	RuleConfigurationError RuleKind = "ConfigurationError"
)

// Rule is the tagged AssertionRule sum type. Kind selects the variant;
// Detail carries the variant's single payload (annotation type name,
// data-contract kind, exception type name) where applicable.
type Rule struct {
	Kind   RuleKind
	Detail string
}

func (r Rule) String() string {
	if r.Detail == "" {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.Detail)
}

func Annotation(annotationName string) Rule { return Rule{Kind: RuleAnnotation, Detail: annotationName} }
func DataContract(kind string) Rule         { return Rule{Kind: RuleDataContract, Detail: kind} }
func UserException(typeName string) Rule    { return Rule{Kind: RuleUserException, Detail: typeName} }
func SystemError(typeName string) Rule      { return Rule{Kind: RuleSystemError, Detail: typeName} }

var (
	ConstructorSanity   = Rule{Kind: RuleConstructorSanity}
	DefensiveCheck      = Rule{Kind: RuleDefensiveCheck}
	StandardAssertion   = Rule{Kind: RuleStandardAssertion}
	ConfigurationRule   = Rule{Kind: RuleConfigurationError}
)

// LocationKind discriminates SourceLocation variants.
type LocationKind string

const (
	LocationExact       LocationKind = "Exact"
	LocationApproximate  LocationKind = "Approximate"
	LocationUnknown      LocationKind = "Unknown"
	LocationNotCaptured  LocationKind = "NotCaptured"
)

// Location is the tagged SourceLocation sum type.
type Location struct {
	Kind LocationKind

	// Exact
	File   string
	Line   int
	Class  string
	Method string

	// Approximate
	Display string
}

func Exact(file string, line int, class, method string) Location {
	return Location{Kind: LocationExact, File: file, Line: line, Class: class, Method: method}
}

func Approximate(class, display string) Location {
	return Location{Kind: LocationApproximate, Class: class, Display: display}
}

var (
	Unknown     = Location{Kind: LocationUnknown}
	NotCaptured = Location{Kind: LocationNotCaptured}
)

func (l Location) String() string {
	switch l.Kind {
	case LocationExact:
		return fmt.Sprintf("%s:%d (%s)", l.File, l.Line, l.Method)
	case LocationApproximate:
		return fmt.Sprintf("~%s (%s)", l.Class, l.Display)
	default:
		return string(l.Kind)
	}
}

// Record is the outcome of evaluating a single declared rule against a
// single value: AssertionRecord in spec terms.
type Record struct {
	Status   Status
	Rule     Rule
	Message  string
	Expected any
	Actual   any
	Location Location
}

// StatusKind discriminates TestStatus variants.
type StatusKind string

const (
	TestPassed          StatusKind = "Passed"
	TestAssertionFailed StatusKind = "AssertionFailed"
	TestExecutionError  StatusKind = "ExecutionError"
	TestDisabled        StatusKind = "Disabled"
	TestAborted         StatusKind = "Aborted"
)

// TestStatus is the tagged, exhaustive outcome of one scenario execution.
type TestStatus struct {
	Kind     StatusKind
	Message  string
	Expected any
	Actual   any
	Cause    error
	Reason   string
}

func NewPassed() TestStatus { return TestStatus{Kind: TestPassed} }

func NewAssertionFailed(message string, expected, actual any) TestStatus {
	return TestStatus{Kind: TestAssertionFailed, Message: message, Expected: expected, Actual: actual}
}

func NewExecutionError(cause error) TestStatus {
	return TestStatus{Kind: TestExecutionError, Cause: cause}
}

func NewDisabled() TestStatus { return TestStatus{Kind: TestDisabled} }

func NewAborted(reason string) TestStatus { return TestStatus{Kind: TestAborted, Reason: reason} }

// Passed reports whether this status represents a successful scenario.
func (s TestStatus) Passed() bool { return s.Kind == TestPassed }

// Result is ExecutionResult: the full per-scenario outcome handed back by
// the Scenario Executor, independent of the trace (which is the forensic,
// append-only shadow of the same run).
type Result struct {
	Records   []Record
	Arguments map[string]string
	Seed      int64
}
