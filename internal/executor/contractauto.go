package executor

import (
	"fmt"
	"reflect"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/fixture"
	"github.com/kontrakt-go/kontrakt/internal/instancefactory"
	"github.com/kontrakt-go/kontrakt/internal/interceptor"
	"github.com/kontrakt-go/kontrakt/internal/kerrors"
	"github.com/kontrakt-go/kontrakt/internal/spec"
	"github.com/kontrakt-go/kontrakt/internal/trace"
	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

// runContractAuto sweeps every declared contract interface's methods
// against the ephemeral target: for each interface method, the matching
// implementation method is resolved by exact name (a NoSuchMethod mismatch
// is a configuration error, not a contract failure, since it means the
// target does not actually implement what the specification claims), its
// arguments are generated fresh through the Fixture Generator, and its
// return value is checked against the declared annotations by the Contract
// Validator. Records accumulate per method (one per declared return rule,
// or a single passing record when none is declared), so a single
// scenario's Result can report every contract method's
// outcome rather than stopping at the first violation.
func (r *Runner) runContractAuto(s spec.TestSpecification, eph *instancefactory.EphemeralTestContext, ctx *interceptor.ExecCtx, sc *trace.ScenarioTrace) (assertion.Result, error) {
	implType := reflect.TypeOf(eph.TargetInstance)
	implDesc, err := r.Session.Resolve(implType)
	if err != nil {
		return assertion.Result{}, err
	}

	var records []assertion.Record
	for _, mode := range s.Modes {
		if mode.Kind != spec.ContractAuto {
			continue
		}
		ifaceDesc, err := r.Session.Resolve(mode.ContractInterface)
		if err != nil {
			return assertion.Result{}, err
		}
		for _, cm := range ifaceDesc.Methods() {
			recs, err := r.runContractMethod(cm, implDesc, eph, ctx, sc)
			if err != nil {
				return assertion.Result{}, err
			}
			records = append(records, recs...)
		}
	}
	if len(records) == 0 {
		records = append(records, assertion.Record{Status: assertion.Passed, Rule: assertion.DataContract("ContractAuto"), Location: assertion.NotCaptured})
	}
	return assertion.Result{Records: records}, nil
}

func (r *Runner) runContractMethod(cm typegraph.Method, implDesc *typegraph.Descriptor, eph *instancefactory.EphemeralTestContext, ctx *interceptor.ExecCtx, sc *trace.ScenarioTrace) ([]assertion.Record, error) {
	im, ok := findMethodByName(implDesc.Methods(), cm.Name)
	if !ok {
		return nil, &kerrors.ConfigurationError{Message: fmt.Sprintf("target %s does not implement contract method %s", implDesc.SimpleName, cm.Name)}
	}

	args := make([]any, len(im.Params))
	argDisplay := make([]string, len(im.Params))
	for i, p := range im.Params {
		req := fixture.Request{Name: p.Name, Type: p.Type, Annotations: p.Annotations}
		v, err := r.Factory.Generator.Generate(eph.Generation, req)
		if err != nil {
			return nil, err
		}
		args[i] = v
		argDisplay[i] = fmt.Sprintf("%v", v)
	}

	start := ctx.Clock()
	result, err := im.Call(eph.TargetInstance, args)
	durationMs := ctx.Clock().Sub(start).Milliseconds()
	sc.Append(trace.ExecutionEvent(ctx.Clock().UnixMilli(), im.Name, argDisplay, durationMs))
	if err != nil {
		return nil, err
	}

	if im.Returns == nil {
		return []assertion.Record{{Status: assertion.Passed, Rule: assertion.DataContract(cm.Name), Location: assertion.NotCaptured}}, nil
	}
	checked := r.Validator.Validate(im.Returns.Annotations, result)
	if len(checked) == 0 {
		checked = []assertion.Record{{Status: assertion.Passed, Rule: assertion.DataContract(cm.Name), Location: assertion.NotCaptured}}
	}
	for i := range checked {
		checked[i].Location = assertion.NotCaptured
	}
	return checked, nil
}

func findMethodByName(methods []typegraph.Method, name string) (typegraph.Method, bool) {
	for _, m := range methods {
		if m.Name == name {
			return m, true
		}
	}
	return typegraph.Method{}, false
}
