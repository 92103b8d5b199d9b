package verdict

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Publisher is ResultPublisher: a downstream sink for one TestResultEvent
// per executed scenario.
type Publisher interface {
	Publish(e TestResultEvent) error
	Close() error
}

// FailureHook is called when one subscriber of a BroadcastingPublisher
// fails; it never aborts the fan-out to the remaining subscribers.
type FailureHook func(name string, cause error)

func defaultFailureHook(name string, cause error) {
	fmt.Fprintf(os.Stderr, "verdict publisher %q failed: %v\n", name, cause)
}

// namedPublisher pairs a Publisher with the name FailureHook reports it
// under.
type namedPublisher struct {
	name string
	pub  Publisher
}

// BroadcastingPublisher owns N downstream publishers and fans every event
// out to all of them sequentially, isolating one subscriber's failure from
// the rest — grounded on the teacher's server.Broadcaster (internal/server/
// sse.go), which fans progress events out to many SSE clients and drops a
// failing one rather than blocking or aborting the others.
type BroadcastingPublisher struct {
	mu      sync.Mutex
	subs    []namedPublisher
	onFail  FailureHook
	closed  bool
}

// NewBroadcastingPublisher builds a fan-out publisher. onFail defaults to
// logging to stderr when nil.
func NewBroadcastingPublisher(onFail FailureHook) *BroadcastingPublisher {
	if onFail == nil {
		onFail = defaultFailureHook
	}
	return &BroadcastingPublisher{onFail: onFail}
}

// Subscribe adds a named downstream publisher.
func (b *BroadcastingPublisher) Subscribe(name string, p Publisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, namedPublisher{name: name, pub: p})
}

// Publish fans e out to every subscriber in registration order; a
// subscriber's error is reported through onFail and does not stop the
// remaining subscribers from receiving e.
func (b *BroadcastingPublisher) Publish(e TestResultEvent) error {
	b.mu.Lock()
	subs := append([]namedPublisher{}, b.subs...)
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return fmt.Errorf("broadcasting publisher is closed")
	}
	for _, s := range subs {
		if err := s.pub.Publish(e); err != nil {
			b.onFail(s.name, err)
		}
	}
	return nil
}

// Close fans Close out to every subscriber the same way Publish does,
// isolating one subscriber's close failure from the rest.
func (b *BroadcastingPublisher) Close() error {
	b.mu.Lock()
	subs := append([]namedPublisher{}, b.subs...)
	b.closed = true
	b.mu.Unlock()
	for _, s := range subs {
		if err := s.pub.Close(); err != nil {
			b.onFail(s.name, err)
		}
	}
	return nil
}

// NDJSONFilePublisher appends one JSON line per TestResultEvent to a file,
// the persistent counterpart to the per-worker trace journal.
type NDJSONFilePublisher struct {
	mu   sync.Mutex
	file *os.File
}

// OpenNDJSONFilePublisher opens (creating if absent) path in append mode.
func OpenNDJSONFilePublisher(path string) (*NDJSONFilePublisher, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &NDJSONFilePublisher{file: f}, nil
}

func (p *NDJSONFilePublisher) Publish(e TestResultEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = p.file.Write(payload)
	return err
}

func (p *NDJSONFilePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file.Close()
}

// ChannelPublisher delivers each TestResultEvent onto a Go channel for an
// in-process subscriber (e.g. a live progress display), dropping events
// for a slow or absent reader rather than blocking the executor — the
// same slow-client tradeoff the teacher's Broadcaster makes for SSE
// clients.
type ChannelPublisher struct {
	mu     sync.Mutex
	ch     chan TestResultEvent
	closed bool
}

// NewChannelPublisher builds a ChannelPublisher with the given channel
// buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan TestResultEvent, buffer)}
}

// Events returns the read side of the channel.
func (p *ChannelPublisher) Events() <-chan TestResultEvent { return p.ch }

func (p *ChannelPublisher) Publish(e TestResultEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("channel publisher is closed")
	}
	select {
	case p.ch <- e:
	default:
		return fmt.Errorf("channel publisher subscriber is not keeping up, event dropped")
	}
	return nil
}

func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.ch)
	return nil
}
