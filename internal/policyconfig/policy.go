// Package policyconfig implements the ExecutionPolicy configuration model
// (spec §3's Policy aggregate): determinism, auditing, and resource limits
// for one execution run, loadable from a YAML file the same way the
// teacher's engine.RunConfigFile is (strict decode, then defaults, then
// validation).
package policyconfig

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RetentionPolicy discriminates how aggressively trace snapshots are kept.
type RetentionPolicy string

const (
	RetentionNone      RetentionPolicy = "NONE"
	RetentionOnFailure RetentionPolicy = "ON_FAILURE"
	RetentionAlways    RetentionPolicy = "ALWAYS"
)

// AuditingDepth discriminates how much of the trace survives into a kept
// snapshot: SIMPLE drops DESIGN-phase events, EXPLAINABLE keeps everything.
type AuditingDepth string

const (
	DepthSimple      AuditingDepth = "SIMPLE"
	DepthExplainable AuditingDepth = "EXPLAINABLE"
)

// DeterminismPolicy carries the optional fixed seed; nil means "derive one
// from the clock at run time", per §4.6's seed-hygiene rule.
type DeterminismPolicy struct {
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// AuditingPolicy configures trace retention and depth.
type AuditingPolicy struct {
	Retention RetentionPolicy `json:"retention" yaml:"retention"`
	Depth     AuditingDepth   `json:"depth" yaml:"depth"`
}

// ResourcePolicy bounds one run's concurrency and per-scenario timeout.
type ResourcePolicy struct {
	TimeoutMS   int `json:"timeoutMs" yaml:"timeout_ms"`
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// ExecutionPolicy is the full Policy aggregate.
type ExecutionPolicy struct {
	Determinism DeterminismPolicy `json:"determinism,omitempty" yaml:"determinism,omitempty"`
	Auditing    AuditingPolicy    `json:"auditing" yaml:"auditing"`
	Resources   ResourcePolicy    `json:"resources" yaml:"resources"`
}

// DefaultPolicy is the policy a run gets absent any configuration file:
// no fixed seed, failure-only retention at SIMPLE depth, a generous
// per-scenario timeout, and one worker per available CPU equivalent left
// to the caller to size (parallelism 0 here means "caller decides").
func DefaultPolicy() ExecutionPolicy {
	return ExecutionPolicy{
		Auditing:  AuditingPolicy{Retention: RetentionOnFailure, Depth: DepthSimple},
		Resources: ResourcePolicy{TimeoutMS: 30000, Parallelism: 0},
	}
}

// LoadPolicy reads path as strict YAML (unknown fields rejected, the same
// posture the teacher's decodeYAMLStrict takes), applies DefaultPolicy's
// values to any field left unset, and validates the result.
func LoadPolicy(path string) (ExecutionPolicy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExecutionPolicy{}, err
	}
	policy := DefaultPolicy()
	if err := decodeYAMLStrict(b, &policy); err != nil {
		return ExecutionPolicy{}, err
	}
	applyDefaults(&policy)
	if err := validate(&policy); err != nil {
		return ExecutionPolicy{}, err
	}
	return policy, nil
}

func decodeYAMLStrict(b []byte, policy *ExecutionPolicy) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(policy); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("yaml: multiple documents are not allowed in a policy file")
		}
		return err
	}
	return nil
}

func applyDefaults(p *ExecutionPolicy) {
	if strings.TrimSpace(string(p.Auditing.Retention)) == "" {
		p.Auditing.Retention = RetentionOnFailure
	}
	if strings.TrimSpace(string(p.Auditing.Depth)) == "" {
		p.Auditing.Depth = DepthSimple
	}
	if p.Resources.TimeoutMS == 0 {
		p.Resources.TimeoutMS = 30000
	}
}

func validate(p *ExecutionPolicy) error {
	switch p.Auditing.Retention {
	case RetentionNone, RetentionOnFailure, RetentionAlways:
	default:
		return fmt.Errorf("invalid auditing.retention: %q (want NONE|ON_FAILURE|ALWAYS)", p.Auditing.Retention)
	}
	switch p.Auditing.Depth {
	case DepthSimple, DepthExplainable:
	default:
		return fmt.Errorf("invalid auditing.depth: %q (want SIMPLE|EXPLAINABLE)", p.Auditing.Depth)
	}
	if p.Resources.TimeoutMS < 0 {
		return fmt.Errorf("resources.timeout_ms must be >= 0")
	}
	if p.Resources.Parallelism < 0 {
		return fmt.Errorf("resources.parallelism must be >= 0")
	}
	return nil
}
