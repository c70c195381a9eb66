package nav

import (
	"context"

	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/routes"
)

// Renderer mounts views. It is the only way the router affects the UI.
type Renderer interface {
	Mount(ctx context.Context, view routes.ViewID) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, view routes.ViewID) error

// Mount implements Renderer.
func (f RendererFunc) Mount(ctx context.Context, view routes.ViewID) error {
	return f(ctx, view)
}

// Loader prepares a view before it is mounted, e.g. by fetching its code
// lazily. Load may block; it must return promptly once ctx is done.
type Loader interface {
	Load(ctx context.Context, view routes.ViewID) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, view routes.ViewID) error

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, view routes.ViewID) error {
	return f(ctx, view)
}

// Status is the router's position in the navigation state machine.
type Status int

const (
	StateIdle Status = iota
	StateResolving
	StateRedirecting
	StateFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateRedirecting:
		return "redirecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind describes where a navigation request came from.
type Kind int

const (
	// KindPush is a programmatic navigation that adds a history entry.
	KindPush Kind = iota
	// KindReplace is a programmatic navigation that overwrites the
	// current entry.
	KindReplace
	// KindPop is a response to the backend moving through existing
	// entries (back, forward, popstate).
	KindPop
	// KindInitial resolves the location the application started at.
	KindInitial
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPush:
		return "push"
	case KindReplace:
		return "replace"
	case KindPop:
		return "pop"
	case KindInitial:
		return "initial"
	default:
		return "unknown"
	}
}

// State is the router's navigation state.
// CurrentPath and ViewID always change together.
type State struct {
	// CurrentPath is the canonical path of the active location, without
	// the query string.
	CurrentPath string

	// Query is the active query string without the leading "?".
	Query string

	// Fragment is the active fragment without the leading "#".
	Fragment string

	// ViewID is the mounted view.
	ViewID routes.ViewID

	// HistoryIndex is the position of the active entry in the history.
	HistoryIndex int

	// Seq is the sequence number of the request that produced this state.
	Seq uint64
}

// Location returns CurrentPath with the query string and fragment appended.
func (s State) Location() string {
	return routepath.Join(s.CurrentPath, s.Query, s.Fragment)
}

// Event is delivered to subscribers after every committed navigation.
type Event struct {
	Kind Kind

	// From is the state before the navigation.
	From State

	// To is the state after the navigation.
	To State

	// Chain is the redirect chain that was followed, first to last.
	Chain []string

	// Fallback is set when the not-found view was mounted in place of an
	// unresolvable path.
	Fallback bool

	// Cause is the resolution error a fallback replaced.
	Cause error
}

// Redirected reports whether the navigation followed a redirect.
func (e Event) Redirected() bool {
	return len(e.Chain) > 1
}

// Failure is delivered to failure listeners when a request ends in
// StateFailed.
type Failure struct {
	Kind Kind
	Path string
	Seq  uint64
	Err  error
}

// Request describes one navigation attempt as seen by middleware.
// Result fields are filled in by the router before next returns.
type Request struct {
	// Path is the path as it was requested.
	Path string

	Kind Kind
	Seq  uint64

	// Resolved is the path that was committed, after redirects.
	Resolved string

	// View is the view that was mounted.
	View routes.ViewID

	// Redirects is the number of redirects that were followed.
	Redirects int

	// Fallback is set when the not-found view was used.
	Fallback bool

	// Duplicate is set when the request targeted the active location and
	// was accepted without changing anything.
	Duplicate bool
}
