package policyconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadPolicy_AppliesDefaultsForUnsetFields(t *testing.T) {
	path := writePolicyFile(t, "resources:\n  parallelism: 4\n")
	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Auditing.Retention != RetentionOnFailure || p.Auditing.Depth != DepthSimple {
		t.Fatalf("expected default auditing policy, got %+v", p.Auditing)
	}
	if p.Resources.TimeoutMS != 30000 {
		t.Fatalf("expected default timeout, got %d", p.Resources.TimeoutMS)
	}
	if p.Resources.Parallelism != 4 {
		t.Fatalf("expected parallelism from file, got %d", p.Resources.Parallelism)
	}
}

func TestLoadPolicy_RejectsInvalidRetention(t *testing.T) {
	path := writePolicyFile(t, "auditing:\n  retention: SOMETIMES\n  depth: SIMPLE\n")
	if _, err := LoadPolicy(path); err == nil {
		t.Fatalf("expected an error for invalid retention")
	}
}

func TestLoadPolicy_RejectsUnknownFields(t *testing.T) {
	path := writePolicyFile(t, "unknown_field: true\n")
	if _, err := LoadPolicy(path); err == nil {
		t.Fatalf("expected strict decoding to reject an unknown field")
	}
}

func TestLoadPolicy_HonorsExplicitSeed(t *testing.T) {
	path := writePolicyFile(t, "determinism:\n  seed: 7\n")
	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Determinism.Seed == nil || *p.Determinism.Seed != 7 {
		t.Fatalf("expected seed 7, got %+v", p.Determinism.Seed)
	}
}

func TestDefaultPolicy_IsInternallyValid(t *testing.T) {
	p := DefaultPolicy()
	if err := validate(&p); err != nil {
		t.Fatalf("DefaultPolicy must pass its own validation: %v", err)
	}
}
