package interceptor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/policyconfig"
	"github.com/kontrakt-go/kontrakt/internal/trace"
	"github.com/kontrakt-go/kontrakt/internal/verdict"
)

type fakePublisher struct {
	events []verdict.TestResultEvent
}

func (f *fakePublisher) Publish(e verdict.TestResultEvent) error {
	f.events = append(f.events, e)
	return nil
}
func (f *fakePublisher) Close() error { return nil }

func newAuditCtx(t *testing.T, policy policyconfig.ExecutionPolicy, pub *fakePublisher) (*ExecCtx, string) {
	t.Helper()
	root := t.TempDir()
	clock := func() time.Time { return time.Unix(100, 0) }
	sink := trace.Open(root, 0)
	t.Cleanup(sink.Close)
	return &ExecCtx{
		RunID:     "run-1",
		TestName:  "Adder",
		WorkerID:  0,
		Seed:      42,
		StartedAt: clock(),
		TraceRoot: root,
		Policy:    policy,
		Trace:     trace.NewScenarioTrace("run-1", clock),
		Sink:      sink,
		Publisher: pub,
		Clock:     clock,
	}, root
}

func TestAuditingInterceptor_PublishesPassingVerdict(t *testing.T) {
	pub := &fakePublisher{}
	ctx, _ := newAuditCtx(t, policyconfig.DefaultPolicy(), pub)
	next := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{Records: []assertion.Record{{Status: assertion.Passed}}}, nil
	}

	if _, err := (AuditingInterceptor{}).Intercept(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.events))
	}
	if pub.events[0].Status.Kind != assertion.TestPassed {
		t.Fatalf("expected a passing status, got %+v", pub.events[0].Status)
	}
}

func TestAuditingInterceptor_OnFailureRetentionSnapshotsOnlyWhenFailed(t *testing.T) {
	pub := &fakePublisher{}
	policy := policyconfig.DefaultPolicy()
	policy.Auditing.Retention = policyconfig.RetentionOnFailure
	ctx, root := newAuditCtx(t, policy, pub)

	next := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{Records: []assertion.Record{{Status: assertion.Failed, Message: "nope"}}}, nil
	}
	if _, err := (AuditingInterceptor{}).Intercept(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.events[0].JournalPath == "" {
		t.Fatalf("expected a snapshot path on failure")
	}
	if _, err := os.Stat(filepath.Join(root, "failures", "run-run-1.log")); err != nil {
		t.Fatalf("expected a failure snapshot file: %v", err)
	}
}

func TestAuditingInterceptor_RetentionNoneNeverSnapshots(t *testing.T) {
	pub := &fakePublisher{}
	policy := policyconfig.DefaultPolicy()
	policy.Auditing.Retention = policyconfig.RetentionNone
	ctx, _ := newAuditCtx(t, policy, pub)

	next := func(*ExecCtx) (assertion.Result, error) {
		return assertion.Result{Records: []assertion.Record{{Status: assertion.Failed}}}, nil
	}
	if _, err := (AuditingInterceptor{}).Intercept(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.events[0].JournalPath != "" {
		t.Fatalf("expected no snapshot path under NONE retention, got %q", pub.events[0].JournalPath)
	}
}

func TestAuditingInterceptor_FinalizesAndRethrowsOnPanic(t *testing.T) {
	pub := &fakePublisher{}
	ctx, _ := newAuditCtx(t, policyconfig.DefaultPolicy(), pub)
	next := func(*ExecCtx) (assertion.Result, error) {
		panic("kaboom")
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected the panic to be rethrown")
		}
		if len(pub.events) != 1 {
			t.Fatalf("expected finalize to publish exactly once even on panic, got %d", len(pub.events))
		}
		if pub.events[0].Status.Kind != assertion.TestExecutionError {
			t.Fatalf("expected an execution-error status, got %+v", pub.events[0].Status)
		}
	}()
	_, _ = (AuditingInterceptor{}).Intercept(ctx, next)
}
