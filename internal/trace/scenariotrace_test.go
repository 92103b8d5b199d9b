package trace

import (
	"math/rand"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewRunID_DeterministicForSameSeedAndClock(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewRunID(clock, rand.New(rand.NewSource(42)))
	b := NewRunID(clock, rand.New(rand.NewSource(42)))
	if a != b {
		t.Fatalf("expected identical run ids for identical seed, got %q and %q", a, b)
	}
}

func TestNewRunID_DiffersForDifferentSeed(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewRunID(clock, rand.New(rand.NewSource(1)))
	b := NewRunID(clock, rand.New(rand.NewSource(2)))
	if a == b {
		t.Fatalf("expected different run ids for different seeds")
	}
}

func TestScenarioTrace_AppendAndSnapshot(t *testing.T) {
	tr := NewScenarioTrace("run-1", fixedClock(time.Unix(100, 0)))
	tr.Append(ExecutionEvent(100, "doThing", []string{"a=1"}, 5))
	tr.Append(VerdictEvent(105, "Passed", 5))

	events := tr.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	events[0].Method = "mutated"
	if tr.Events()[0].Method == "mutated" {
		t.Fatalf("Events() must return a snapshot copy, not a live view")
	}
}

func TestScenarioTrace_RecordArgumentPreservesInsertionOrderButSortsKeys(t *testing.T) {
	tr := NewScenarioTrace("run-1", nil)
	tr.RecordArgument("user.b", "2")
	tr.RecordArgument("user.a", "1")
	tr.RecordArgument("user.b", "overwritten")

	args := tr.Arguments()
	if args["user.b"] != "overwritten" {
		t.Fatalf("expected overwritten value, got %q", args["user.b"])
	}
	keys := tr.SortedArgumentKeys()
	if len(keys) != 2 || keys[0] != "user.a" || keys[1] != "user.b" {
		t.Fatalf("expected sorted keys [user.a user.b], got %v", keys)
	}
}

func TestScenarioTrace_DesignDecisionAppendsDesignEvent(t *testing.T) {
	tr := NewScenarioTrace("run-1", fixedClock(time.Unix(7, 0)))
	tr.DesignDecision("Widget.name", "StringStrategy", "hello")

	events := tr.Events()
	if len(events) != 1 || events[0].Phase != Design {
		t.Fatalf("expected one Design event, got %v", events)
	}
	if events[0].Subject != "Widget.name" || events[0].Strategy != "StringStrategy" {
		t.Fatalf("unexpected design event contents: %+v", events[0])
	}
}
