package nav

import "context"

// Middleware wraps every navigation attempt. It observes requests; it does
// not decide whether a navigation may proceed, and must always call next
// exactly once.
type Middleware interface {
	Handle(ctx context.Context, req *Request, next func(context.Context) error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ctx context.Context, req *Request, next func(context.Context) error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, req *Request, next func(context.Context) error) error {
	return f(ctx, req, next)
}

// compose builds a handler chain from middleware and a final handler.
// Middleware runs in order, first to last, with handler at the end.
func compose(mw []Middleware, req *Request, handler func(context.Context) error) func(context.Context) error {
	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func(ctx context.Context) error {
			return m.Handle(ctx, req, next)
		}
	}
	return chain
}

// Chain combines multiple middleware into one, preserving order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next func(context.Context) error) error {
		return compose(middleware, req, next)(ctx)
	})
}
