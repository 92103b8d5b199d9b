package verdict

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
)

type recordingPublisher struct {
	events []TestResultEvent
	failOn error
}

func (r *recordingPublisher) Publish(e TestResultEvent) error {
	if r.failOn != nil {
		return r.failOn
	}
	r.events = append(r.events, e)
	return nil
}
func (r *recordingPublisher) Close() error { return nil }

func sampleEvent() TestResultEvent {
	return TestResultEvent{RunID: "run-1", TestName: "AdderTest", WorkerID: 0, Seed: 7, Status: assertion.NewPassed()}
}

func TestBroadcastingPublisher_FansOutToAllSubscribers(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{}
	bp := NewBroadcastingPublisher(nil)
	bp.Subscribe("a", a)
	bp.Subscribe("b", b)

	if err := bp.Publish(sampleEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected both subscribers to receive the event, got a=%d b=%d", len(a.events), len(b.events))
	}
}

func TestBroadcastingPublisher_IsolatesOneSubscriberFailure(t *testing.T) {
	failing := &recordingPublisher{failOn: errors.New("downstream unavailable")}
	ok := &recordingPublisher{}
	var reported string

	bp := NewBroadcastingPublisher(func(name string, cause error) { reported = name })
	bp.Subscribe("failing", failing)
	bp.Subscribe("ok", ok)

	if err := bp.Publish(sampleEvent()); err != nil {
		t.Fatalf("Publish itself must not fail when a subscriber fails: %v", err)
	}
	if len(ok.events) != 1 {
		t.Fatalf("expected the healthy subscriber to still receive the event")
	}
	if reported != "failing" {
		t.Fatalf("expected failure hook to report the failing subscriber by name, got %q", reported)
	}
}

func TestNDJSONFilePublisher_AppendsOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.ndjson")
	p, err := OpenNDJSONFilePublisher(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	if err := p.Publish(sampleEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Publish(sampleEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	count := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if sc.Text() != "" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 lines, got %d", count)
	}
}

func TestChannelPublisher_DeliversAndDropsWhenFull(t *testing.T) {
	cp := NewChannelPublisher(1)
	if err := cp.Publish(sampleEvent()); err != nil {
		t.Fatalf("unexpected error on first publish: %v", err)
	}
	if err := cp.Publish(sampleEvent()); err == nil {
		t.Fatalf("expected the second publish to be dropped with an error when the buffer is full")
	}
	<-cp.Events()
	cp.Close()
}
