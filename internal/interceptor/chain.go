// Package interceptor implements the interceptor chain (§4.7, §9): a flat,
// ordered pipeline wrapping one scenario execution, where each link's only
// acceptable form of recursion is calling the next link via Chain.Proceed —
// no interceptor ever calls another interceptor directly. The standard chain
// is Result-Resolver (outermost) -> Auditing -> Executor (terminal),
// mirroring a try/catch/finally nest from the outside in.
package interceptor

import "github.com/kontrakt-go/kontrakt/internal/assertion"

// Handler is what one link in the chain invokes to run the rest of the
// pipeline. It is exactly Chain.Proceed bound to the next link's index.
type Handler func(ctx *ExecCtx) (assertion.Result, error)

// Interceptor is one link in the chain. next is never called more than
// once per invocation and is the only way to reach the links beneath it.
type Interceptor interface {
	Intercept(ctx *ExecCtx, next Handler) (assertion.Result, error)
}

// Chain threads a fixed interceptor list plus a cursor; Proceed advances
// the cursor by constructing the next chain and handing it to the current
// link as its next callback.
type Chain struct {
	interceptors []Interceptor
	index        int
}

// NewChain builds a chain from interceptors in execution order (outermost
// first). The last interceptor is expected to be a terminal one that never
// calls next — ordinarily an ExecutorInterceptor.
func NewChain(interceptors ...Interceptor) *Chain {
	return &Chain{interceptors: interceptors}
}

// Proceed runs the current link, or returns an empty passing result if the
// chain is exhausted (defensive default for a misconfigured chain missing
// a terminal link).
func (c *Chain) Proceed(ctx *ExecCtx) (assertion.Result, error) {
	if c == nil || c.index >= len(c.interceptors) {
		return assertion.Result{}, nil
	}
	current := c.interceptors[c.index]
	rest := &Chain{interceptors: c.interceptors, index: c.index + 1}
	return current.Intercept(ctx, rest.Proceed)
}
