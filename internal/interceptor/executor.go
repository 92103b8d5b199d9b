package interceptor

import "github.com/kontrakt-go/kontrakt/internal/assertion"

// ExecutorInterceptor is the terminal link: it runs the scenario itself and
// never calls next, since there is nothing left in the chain beneath it.
type ExecutorInterceptor struct{}

func (ExecutorInterceptor) Intercept(ctx *ExecCtx, _ Handler) (assertion.Result, error) {
	if ctx.Run == nil {
		return assertion.Result{}, nil
	}
	return ctx.Run()
}
