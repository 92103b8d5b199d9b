package executor

import (
	"reflect"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/constraint"
	"github.com/kontrakt-go/kontrakt/internal/fixture"
	"github.com/kontrakt-go/kontrakt/internal/instancefactory"
	"github.com/kontrakt-go/kontrakt/internal/interceptor"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/trace"
)

// runDataCompliance checks a data class's structural and equality
// properties, one record per rule. Go has no host-level equals()/
// hashCode() to call into, so equality properties are checked the way the
// language actually expresses them: reflect.DeepEqual over the target
// instance and a freshly generated sibling of the same type, rather than
// a user-overridable method dispatch. Structural requirements reuse the
// same jsonschema compilation CompileStructuralSchema already provides for
// the Contract Validator's DataCompliance check.
func (r *Runner) runDataCompliance(s spec.TestSpecification, eph *instancefactory.EphemeralTestContext, ctx *interceptor.ExecCtx, sc *trace.ScenarioTrace) (assertion.Result, error) {
	desc, err := r.Session.Resolve(reflect.TypeOf(eph.TargetInstance))
	if err != nil {
		return assertion.Result{}, err
	}
	a := eph.TargetInstance

	sibling, genErr := r.Factory.Generator.Generate(eph.Generation, fixture.Request{
		Name: "dataComplianceSibling", Type: desc, Annotations: desc.Annotations,
	})
	if genErr != nil {
		return assertion.Result{}, genErr
	}

	var records []assertion.Record
	records = append(records, dataComplianceRecord("Reflexivity", reflect.DeepEqual(a, a)))
	records = append(records, dataComplianceRecord("NotNullEquality", !isNilAny(a) && !reflect.DeepEqual(a, nil)))
	records = append(records, dataComplianceRecord("Consistency", reflect.DeepEqual(a, a) == reflect.DeepEqual(a, a)))
	records = append(records, dataComplianceRecord("Symmetry", reflect.DeepEqual(a, sibling) == reflect.DeepEqual(sibling, a)))

	if desc.Properties != nil {
		schema, err := constraint.CompileStructuralSchema(desc.Properties())
		if err != nil {
			return assertion.Result{}, err
		}
		structuralOK := constraint.ValidateStructural(schema, a) == nil
		records = append(records, dataComplianceRecord("StructuralRequirements", structuralOK))
	}

	if eph.TargetMethod != nil {
		start := ctx.Clock()
		v, err := eph.TargetMethod.Call(a, nil)
		sc.Append(trace.ExecutionEvent(ctx.Clock().UnixMilli(), eph.TargetMethod.Name, nil, ctx.Clock().Sub(start).Milliseconds()))
		if err != nil {
			return assertion.Result{}, err
		}
		str, ok := v.(string)
		records = append(records, dataComplianceRecord("ToStringEquivalent", ok && str != ""))
	}

	return assertion.Result{Records: records}, nil
}

func dataComplianceRecord(rule string, ok bool) assertion.Record {
	if ok {
		return assertion.Record{Status: assertion.Passed, Rule: assertion.DataContract(rule), Location: assertion.NotCaptured}
	}
	return assertion.Record{
		Status:   assertion.Failed,
		Rule:     assertion.DataContract(rule),
		Message:  "data compliance rule failed: " + rule,
		Location: assertion.NotCaptured,
	}
}

func isNilAny(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
