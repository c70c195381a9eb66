package routes

import (
	"fmt"

	navErrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// DefaultMaxRedirects bounds the number of redirect hops ResolveWithRedirects
// follows before giving up.
const DefaultMaxRedirects = 10

// Re-exported sentinels so callers do not need the internal package.
var (
	ErrNotFound      = navErrors.ErrNotFound
	ErrRedirectCycle = navErrors.ErrRedirectCycle
	ErrInvalidPath   = navErrors.ErrInvalidPath
)

// Table is an immutable, ordered set of routes.
type Table struct {
	routes       []Route
	byPath       map[string]int
	byName       map[string]int
	maxRedirects int
}

// Option configures a Table.
type Option func(*Table)

// WithMaxRedirects sets the maximum number of redirect hops.
// Values below one are ignored.
func WithMaxRedirects(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.maxRedirects = n
		}
	}
}

// New builds a table from route definitions.
//
// Paths must be canonical and unique, names must be unique, view routes need
// a view and redirect routes need a canonical target. A redirect target that
// is not itself registered is accepted here and reported by resolution.
func New(defs []Route, opts ...Option) (*Table, error) {
	t := &Table{
		routes:       make([]Route, 0, len(defs)),
		byPath:       make(map[string]int, len(defs)),
		byName:       make(map[string]int),
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(t)
	}

	for i, def := range defs {
		if err := validate(def); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}

		path := def.RoutePath()
		if _, dup := t.byPath[path]; dup {
			return nil, navErrors.New(navErrors.CodeDuplicatePath).WithPath(path)
		}
		if name := def.RouteName(); name != "" {
			if _, dup := t.byName[name]; dup {
				return nil, navErrors.New(navErrors.CodeDuplicateName).
					WithPath(path).
					WithDetail(fmt.Sprintf("route name %q is already used", name))
			}
			t.byName[name] = len(t.routes)
		}

		t.byPath[path] = len(t.routes)
		t.routes = append(t.routes, def)
	}

	return t, nil
}

// MustNew is like New but panics on an invalid definition.
// It is meant for tables written as literals in code.
func MustNew(defs []Route, opts ...Option) *Table {
	t, err := New(defs, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func validate(def Route) error {
	invalid := navErrors.New(navErrors.CodeInvalidRoute)

	if def == nil {
		return invalid.WithDetail("route is nil")
	}
	path := def.RoutePath()
	if !routepath.IsCanonical(path) {
		return invalid.WithPath(path).WithDetail("path must be canonical, e.g. /module1")
	}

	switch r := def.(type) {
	case View:
		if r.View == "" {
			return invalid.WithPath(path).WithDetail("view route has no view")
		}
	case Redirect:
		if r.Target == "" {
			return invalid.WithPath(path).WithDetail("redirect route has no target")
		}
		if !routepath.IsCanonical(r.Target) {
			return invalid.WithPath(path).WithDetail(fmt.Sprintf("redirect target %q must be canonical", r.Target))
		}
		if r.Target == path {
			return invalid.WithPath(path).WithDetail("route redirects to itself")
		}
	default:
		return invalid.WithPath(path).WithDetail(fmt.Sprintf("unsupported route type %T", def))
	}
	return nil
}

// Routes returns the table's routes in registration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// MaxRedirects returns the redirect hop bound.
func (t *Table) MaxRedirects() int {
	return t.maxRedirects
}

// Resolve returns the route registered for path.
// The path is canonicalized first, so "/module1/" finds "/module1".
func (t *Table) Resolve(path string) (Route, error) {
	canon, err := canonical(path)
	if err != nil {
		return nil, err
	}
	return t.lookup(canon)
}

// ByName returns the route with the given name.
func (t *Table) ByName(name string) (Route, error) {
	i, ok := t.byName[name]
	if !ok || name == "" {
		return nil, ErrNotFound.WithDetail(fmt.Sprintf("no route named %q", name))
	}
	return t.routes[i], nil
}

// ResolveWithRedirects follows redirects from path until a view route is
// reached.
func (t *Table) ResolveWithRedirects(path string) (*Resolution, error) {
	requested, err := canonical(path)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, 2)
	chain := make([]string, 0, 2)
	current := requested

	for hops := 0; ; {
		if _, loop := seen[current]; loop {
			chain = append(chain, current)
			return nil, ErrRedirectCycle.
				WithPath(requested).
				WithChain(chain).
				WithDetail(fmt.Sprintf("%s is visited twice", current))
		}
		seen[current] = struct{}{}
		chain = append(chain, current)

		r, err := t.lookup(current)
		if err != nil {
			if len(chain) > 1 {
				return nil, ErrNotFound.
					WithPath(requested).
					WithChain(chain).
					WithDetail(fmt.Sprintf("redirect target %s is not registered", current))
			}
			return nil, err
		}

		switch r := r.(type) {
		case View:
			return &Resolution{
				Requested: requested,
				Path:      current,
				Route:     r,
				Chain:     chain,
			}, nil
		case Redirect:
			if hops == t.maxRedirects {
				return nil, ErrRedirectCycle.
					WithPath(requested).
					WithChain(chain).
					WithDetail(fmt.Sprintf("more than %d redirects", t.maxRedirects))
			}
			hops++
			current = r.Target
		}
	}
}

func (t *Table) lookup(canon string) (Route, error) {
	i, ok := t.byPath[canon]
	if !ok {
		return nil, ErrNotFound.WithPath(canon)
	}
	return t.routes[i], nil
}

func canonical(path string) (string, error) {
	res, err := routepath.Canonicalize(path)
	if err != nil {
		return "", ErrInvalidPath.WithPath(path).Wrap(err)
	}
	return res.Path, nil
}
