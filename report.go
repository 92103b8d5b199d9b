package kontrakt

import (
	"log"
	"os"

	"github.com/kontrakt-go/kontrakt/internal/verdict"
)

// LoggingPublisher is the default Result Publisher: it writes one line per
// TestResultEvent through a *log.Logger, the same ambient logging
// convention the teacher's internal/server package uses
// (log.New(os.Stderr, "[kilroy-server] ", log.LstdFlags)) rather than a
// structured-logging dependency this pack never imports.
type LoggingPublisher struct {
	logger *log.Logger
}

// NewLoggingPublisher builds a LoggingPublisher. logger defaults to
// log.New(os.Stderr, "[kontrakt] ", log.LstdFlags) when nil.
func NewLoggingPublisher(logger *log.Logger) *LoggingPublisher {
	if logger == nil {
		logger = log.New(os.Stderr, "[kontrakt] ", log.LstdFlags)
	}
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(e verdict.TestResultEvent) error {
	p.logger.Printf("%s %s seed=%d worker=%d duration=%dms", e.Status.Kind, e.TestName, e.Seed, e.WorkerID, e.DurationMs)
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }
