package routes

// ViewID is an opaque reference to a renderable view.
type ViewID string

// Route is a single entry of a route table: either a View or a Redirect.
type Route interface {
	// RoutePath returns the literal path the route is registered under.
	RoutePath() string

	// RouteName returns the optional route name.
	RouteName() string

	route()
}

// View is a route that renders a view.
type View struct {
	Path string
	Name string
	View ViewID
}

// RoutePath implements Route.
func (v View) RoutePath() string { return v.Path }

// RouteName implements Route.
func (v View) RouteName() string { return v.Name }

func (View) route() {}

// Redirect is a route that forwards to another path.
type Redirect struct {
	Path   string
	Name   string
	Target string
}

// RoutePath implements Route.
func (r Redirect) RoutePath() string { return r.Path }

// RouteName implements Route.
func (r Redirect) RouteName() string { return r.Name }

func (Redirect) route() {}

// Resolution is the outcome of following a path to a view.
type Resolution struct {
	// Requested is the canonical form of the path that was asked for.
	Requested string

	// Path is the path of the view route that was reached.
	Path string

	// Route is the view route that was reached.
	Route View

	// Chain lists every path visited, starting with Requested and ending
	// with Path.
	Chain []string
}

// Redirected reports whether at least one redirect was followed.
func (r *Resolution) Redirected() bool {
	return len(r.Chain) > 1
}
