package trace

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// hookRegistry tracks every open Sink so a process-wide shutdown signal can
// force-flush all of them, grounded on the teacher's server.go pattern
// (signal.Notify(sigCh, SIGINT, SIGTERM) followed by a graceful-shutdown
// call) generalized from "stop the HTTP server" to "flush every trace
// sink" — the nearest Go equivalent to the original's per-sink JVM
// shutdown hook.
var (
	hookMu    sync.Mutex
	hookSinks = map[*Sink]struct{}{}
)

func registerHook(s *Sink) {
	hookMu.Lock()
	defer hookMu.Unlock()
	hookSinks[s] = struct{}{}
}

func unregisterHook(s *Sink) {
	hookMu.Lock()
	defer hookMu.Unlock()
	delete(hookSinks, s)
}

// WatchShutdownSignals installs a SIGINT/SIGTERM handler that force-flushes
// every currently open Sink. The returned stop function deregisters the
// handler; callers should defer it once the run completes normally.
func WatchShutdownSignals() (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigCh:
			flushAll()
		case <-done:
		}
	}()

	return func() {
		close(done)
		signal.Stop(sigCh)
	}
}

func flushAll() {
	hookMu.Lock()
	sinks := make([]*Sink, 0, len(hookSinks))
	for s := range hookSinks {
		sinks = append(sinks, s)
	}
	hookMu.Unlock()
	for _, s := range sinks {
		s.ForceFlush()
	}
}
