package nav

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/vango-dev/navcore/pkg/routes"
)

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLoader sets a loader that runs before each view is mounted.
func WithLoader(l Loader) Option {
	return func(r *Router) {
		r.loader = l
	}
}

// WithNotFoundView makes unresolvable paths mount view instead of failing.
// The requested path stays visible in the address bar.
func WithNotFoundView(view routes.ViewID) Option {
	return func(r *Router) {
		r.notFound = view
	}
}

// WithMiddleware adds navigation middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NavigateOptions configures a single navigation.
type NavigateOptions struct {
	// Replace overwrites the current history entry instead of pushing.
	Replace bool

	// Params are query parameters added to the location.
	Params map[string]any
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// Replace overwrites the current history entry instead of pushing.
func Replace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithParams adds query parameters to the navigation location.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		if o.Params == nil {
			o.Params = make(map[string]any, len(params))
		}
		for k, v := range params {
			o.Params[k] = v
		}
	}
}

// mergeQuery adds params to an existing raw query.
func mergeQuery(raw string, params map[string]any) (string, error) {
	if len(params) == 0 {
		return raw, nil
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return "", err
	}
	for k, v := range params {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	return q.Encode(), nil
}
