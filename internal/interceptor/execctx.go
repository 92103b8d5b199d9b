package interceptor

import (
	"time"

	"github.com/kontrakt-go/kontrakt/internal/assertion"
	"github.com/kontrakt-go/kontrakt/internal/policyconfig"
	"github.com/kontrakt-go/kontrakt/internal/trace"
	"github.com/kontrakt-go/kontrakt/internal/verdict"
)

// ExecCtx is the per-invocation state threaded down the chain. It is built
// once by the Scenario Executor before Chain.Proceed is called and is
// mutated only through its own methods (never replaced mid-chain), so every
// link sees the same trace, clock, and policy.
type ExecCtx struct {
	RunID      string
	TestName   string
	WorkerID   int
	Seed       int64
	StartedAt  time.Time
	TraceRoot  string
	TraceOn    bool
	Policy     policyconfig.ExecutionPolicy
	Trace      *trace.ScenarioTrace
	Sink       *trace.Sink
	Publisher  verdict.Publisher
	Clock      func() time.Time

	// Run is the terminal scenario invocation: the mode-specific
	// sub-executor that actually calls user/target code and produces the
	// raw (pre-interceptor) ExecutionResult. ExecutorInterceptor calls
	// this; every other link only ever reaches it through next().
	Run func() (assertion.Result, error)
}

func (c *ExecCtx) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c *ExecCtx) nowMillis() int64 { return c.now().UnixMilli() }
