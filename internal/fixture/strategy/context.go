package strategy

import (
	"math/rand"
	"time"
)

// TraceRecorder is the narrow slice of the Scenario Trace a strategy needs:
// recording the "why" behind a generated value (boundary picked, candidate
// chosen, constructor selected) as a Design-Decision trace event, without the
// strategy package importing the full trace package.
type TraceRecorder interface {
	DesignDecision(subject, strategyName, detail string)
}

type noopRecorder struct{}

func (noopRecorder) DesignDecision(string, string, string) {}

// Context is the GenerationContext: the seeded randomness, the frozen clock,
// and the cycle-detection ancestry a Recursive strategy must thread through
// every nested Regenerator call.
type Context struct {
	Rand    *rand.Rand
	Clock   func() time.Time
	History []string
	Trace   TraceRecorder
}

// NewContext builds a GenerationContext from a seed, grounding its
// determinism requirement (§4.3 "same seed produces the same fixture") in
// math/rand's classic seeded Source rather than the unseedable global
// source.
func NewContext(seed int64, clock func() time.Time, trace TraceRecorder) *Context {
	if clock == nil {
		clock = time.Now
	}
	if trace == nil {
		trace = noopRecorder{}
	}
	return &Context{Rand: rand.New(rand.NewSource(seed)), Clock: clock, Trace: trace}
}

// Descend returns a Context for a nested generation, with id appended to the
// ancestry so a Structural strategy can detect a cycle before recursing
// into it again.
func (c *Context) Descend(id string) *Context {
	next := make([]string, len(c.History)+1)
	copy(next, c.History)
	next[len(c.History)] = id
	return &Context{Rand: c.Rand, Clock: c.Clock, History: next, Trace: c.Trace}
}

// Visited reports whether id already appears in the current ancestry chain.
func (c *Context) Visited(id string) bool {
	for _, h := range c.History {
		if h == id {
			return true
		}
	}
	return false
}

// Biased reports true with probability p (0..1), using the context's own
// Rand so the decision stays reproducible under a fixed seed.
func (c *Context) Biased(p float64) bool {
	return c.Rand.Float64() < p
}
