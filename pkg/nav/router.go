package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	navErrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/routes"
)

// Navigation errors.
var (
	ErrNotFound       = navErrors.ErrNotFound
	ErrRedirectCycle  = navErrors.ErrRedirectCycle
	ErrViewLoadFailed = navErrors.ErrViewLoadFailed
	ErrSuperseded     = navErrors.ErrSuperseded
	ErrInvalidPath    = navErrors.ErrInvalidPath
	ErrClosed         = navErrors.ErrClosed
	ErrNotStarted     = navErrors.ErrNotStarted
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("nav: router already started")

// Router resolves locations against a route table, mounts the matching view
// and keeps a history backend in step with the mounted view.
type Router struct {
	table      *routes.Table
	backend    history.Backend
	renderer   Renderer
	loader     Loader
	notFound   routes.ViewID
	middleware []Middleware
	logger     *slog.Logger

	// seq is the number of the latest request.
	seq atomic.Uint64

	// commitMu serializes mounting, history writes and state updates.
	commitMu sync.Mutex

	mu          sync.Mutex
	state       State
	status      Status
	cancel      context.CancelFunc
	cancelSeq   uint64
	ctx         context.Context
	stop        context.CancelFunc
	unsubscribe func()
	started     bool
	closed      bool

	listeners        map[int]func(Event)
	failureListeners map[int]func(Failure)
	nextID           int
}

// New creates a router. It does not touch the backend until Start is
// called; Navigate and Go fail with ErrNotStarted before that.
func New(table *routes.Table, backend history.Backend, renderer Renderer, opts ...Option) *Router {
	r := &Router{
		table:            table,
		backend:          backend,
		renderer:         renderer,
		logger:           slog.Default(),
		status:           StateIdle,
		listeners:        make(map[int]func(Event)),
		failureListeners: make(map[int]func(Failure)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the router's route table.
func (r *Router) Table() *routes.Table {
	return r.table
}

// Start subscribes to backend location changes and resolves the initial
// location. If the initial location redirects or is not canonical, the
// current history entry is replaced with the resolved location.
//
// ctx bounds the router's lifetime: navigations triggered by the backend
// run under it.
func (r *Router) Start(ctx context.Context, initial string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.ctx, r.stop = context.WithCancel(ctx)
	r.mu.Unlock()

	index := 0
	if c, ok := r.backend.(history.Locator); ok {
		index = c.Current().Index
	}

	unsubscribe := r.backend.Subscribe(r.handleLocation)
	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.state.HistoryIndex = index
	r.mu.Unlock()

	return r.navigate(ctx, initial, KindInitial, index, NavigateOptions{})
}

// Navigate resolves path and, on success, mounts its view and pushes a
// history entry (or replaces the current one with Replace). A navigation
// to the active path, query and fragment changes nothing.
//
// An unmatched path is a normal outcome: the error is returned, failure
// listeners are called and the visible state does not change, unless a
// not-found view is configured.
func (r *Router) Navigate(ctx context.Context, path string, opts ...NavigateOption) error {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}
	kind := KindPush
	if o.Replace {
		kind = KindReplace
	}
	return r.navigate(ctx, path, kind, 0, o)
}

// NavigateByName navigates to the route with the given name.
func (r *Router) NavigateByName(ctx context.Context, name string, opts ...NavigateOption) error {
	route, err := r.table.ByName(name)
	if err != nil {
		return fmt.Errorf("navigate by name: %w", err)
	}
	return r.Navigate(ctx, route.RoutePath(), opts...)
}

// Back moves one history entry backwards.
func (r *Router) Back() error {
	return r.Go(-1)
}

// Forward moves one history entry forwards.
func (r *Router) Forward() error {
	return r.Go(1)
}

// Go moves delta history entries. The router reacts to the backend's
// notification; it never pushes a new entry for a traversal.
func (r *Router) Go(delta int) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.backend.Go(delta)
}

// State returns the current navigation state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Status returns the state machine position reached by the latest request.
func (r *Router) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Subscribe registers fn to be called after every committed navigation.
func (r *Router) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// OnFailure registers fn to be called whenever a request fails.
func (r *Router) OnFailure(fn func(Failure)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.failureListeners[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.failureListeners, id)
		r.mu.Unlock()
	}
}

// Close stops listening to the backend and cancels any in-flight request.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	unsubscribe, stop, cancel := r.unsubscribe, r.stop, r.cancel
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if stop != nil {
		stop()
	}
	if cancel != nil {
		cancel()
	}
}

// ready reports why the router cannot accept requests, if it cannot.
func (r *Router) ready() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return ErrClosed
	case !r.started:
		return ErrNotStarted
	}
	return nil
}

// handleLocation reacts to the backend moving to an existing entry.
func (r *Router) handleLocation(loc history.Location) {
	r.mu.Lock()
	ctx, closed := r.ctx, r.closed
	r.mu.Unlock()
	if closed || ctx == nil {
		return
	}
	// Failures are reported to listeners; there is no caller to return to.
	_ = r.navigate(ctx, loc.Path, KindPop, loc.Index, NavigateOptions{})
}

func (r *Router) navigate(ctx context.Context, raw string, kind Kind, index int, opts NavigateOptions) error {
	if err := r.ready(); err != nil {
		return err
	}

	seq := r.seq.Inc()
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.begin(seq, cancel, kind, raw)
	defer r.end(seq)

	req := &Request{Path: raw, Kind: kind, Seq: seq}
	return compose(r.middleware, req, func(ctx context.Context) error {
		return r.run(ctx, req, index, opts)
	})(attemptCtx)
}

// begin records seq as the latest request and cancels the previous one.
func (r *Router) begin(seq uint64, cancel context.CancelFunc, kind Kind, raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	r.cancelSeq = seq
	r.status = StateResolving
	r.logger.Debug("navigation started", "seq", seq, "kind", kind.String(), "path", raw)
}

func (r *Router) end(seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelSeq == seq {
		r.cancel = nil
	}
}

func (r *Router) stale(seq uint64) bool {
	return r.seq.Load() != seq
}

func (r *Router) setStatus(seq uint64, s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stale(seq) {
		r.status = s
	}
}

// target is a resolved request ready to be committed.
type target struct {
	path     string
	query    string
	fragment string
	full     string
	view     routes.ViewID
	chain    []string
	fallback bool
	cause    error
	index    int
}

func (r *Router) run(ctx context.Context, req *Request, index int, opts NavigateOptions) error {
	loc, err := r.parse(req)
	if err != nil {
		return r.fail(req, ErrInvalidPath.WithPath(req.Path).Wrap(err))
	}
	query, err := mergeQuery(loc.Query, opts.Params)
	if err != nil {
		return r.fail(req, ErrInvalidPath.WithPath(req.Path).Wrap(err))
	}

	t := target{path: loc.Path, query: query, fragment: loc.Fragment, index: index}

	res, err := r.table.ResolveWithRedirects(loc.Path)
	switch {
	case err == nil:
		if res.Redirected() {
			r.setStatus(req.Seq, StateRedirecting)
			r.logger.Debug("following redirects", "seq", req.Seq, "chain", res.Chain)
		}
		t.path, t.view, t.chain = res.Path, res.Route.View, res.Chain

	case r.notFound != "" && (errors.Is(err, ErrNotFound) || errors.Is(err, ErrRedirectCycle)):
		t.view, t.fallback, t.cause = r.notFound, true, err
		t.chain = []string{loc.Path}

	default:
		var ne *navErrors.NavError
		if errors.As(err, &ne) && len(ne.Chain) > 1 {
			r.setStatus(req.Seq, StateRedirecting)
		}
		return r.fail(req, err)
	}

	t.full = routepath.Join(t.path, t.query, t.fragment)
	req.Resolved = t.path
	req.View = t.view
	req.Fallback = t.fallback
	if len(t.chain) > 1 {
		req.Redirects = len(t.chain) - 1
	}

	if req.Kind == KindPush || req.Kind == KindReplace {
		if cur := r.State(); cur.ViewID != "" && cur.CurrentPath == t.path && cur.Query == t.query &&
			cur.Fragment == t.fragment && cur.ViewID == t.view {
			req.Duplicate = true
			r.setStatus(req.Seq, StateIdle)
			r.logger.Debug("navigation to current location ignored", "seq", req.Seq, "path", t.path)
			return nil
		}
	}

	if r.loader != nil {
		if err := r.loader.Load(ctx, t.view); err != nil {
			if r.stale(req.Seq) {
				r.logger.Debug("navigation superseded during load", "seq", req.Seq, "path", t.path)
				return ErrSuperseded.WithPath(req.Path)
			}
			return r.fail(req, ErrViewLoadFailed.WithPath(t.path).Wrap(err))
		}
	}

	ev, committed, err := r.commit(ctx, req, t)
	if !committed {
		if errors.Is(err, ErrViewLoadFailed) {
			return r.fail(req, err)
		}
		return err
	}
	r.notify(ev)
	return err
}

func (r *Router) parse(req *Request) (routepath.Result, error) {
	if req.Kind == KindPush || req.Kind == KindReplace {
		return routepath.CanonicalizeNav(req.Path)
	}
	return routepath.Canonicalize(req.Path)
}

// commit mounts the view, writes history and updates the state. It reports
// whether the state changed. A history write error is returned together
// with committed=true, since the view is already mounted.
func (r *Router) commit(ctx context.Context, req *Request, t target) (Event, bool, error) {
	r.commitMu.Lock()
	defer r.commitMu.Unlock()

	if r.stale(req.Seq) {
		r.logger.Debug("navigation superseded", "seq", req.Seq, "path", t.path)
		return Event{}, false, ErrSuperseded.WithPath(req.Path)
	}

	if err := r.renderer.Mount(ctx, t.view); err != nil {
		return Event{}, false, ErrViewLoadFailed.WithPath(t.path).Wrap(err)
	}

	from := r.State()
	index := from.HistoryIndex
	var herr error
	switch req.Kind {
	case KindPush:
		herr = r.backend.PushEntry(t.full)
		index++
	case KindReplace:
		herr = r.backend.ReplaceEntry(t.full)
	default:
		index = t.index
		if t.full != req.Path {
			herr = r.backend.ReplaceEntry(t.full)
		}
	}
	if herr != nil {
		r.logger.Error("history write failed", "seq", req.Seq, "path", t.full, "error", herr)
		herr = fmt.Errorf("nav: history write for %s: %w", t.full, herr)
	}

	to := State{
		CurrentPath:  t.path,
		Query:        t.query,
		Fragment:     t.fragment,
		ViewID:       t.view,
		HistoryIndex: index,
		Seq:          req.Seq,
	}

	r.mu.Lock()
	r.state = to
	if !r.stale(req.Seq) {
		r.status = StateIdle
	}
	r.mu.Unlock()

	r.logger.Debug("navigation committed",
		"seq", req.Seq,
		"kind", req.Kind.String(),
		"path", t.full,
		"view", string(t.view),
		"fallback", t.fallback,
	)

	return Event{
		Kind:     req.Kind,
		From:     from,
		To:       to,
		Chain:    t.chain,
		Fallback: t.fallback,
		Cause:    t.cause,
	}, true, herr
}

func (r *Router) notify(ev Event) {
	r.mu.Lock()
	fns := make([]func(Event), 0, len(r.listeners))
	for id := 0; id < r.nextID; id++ {
		if fn, ok := r.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// fail moves the latest request to StateFailed and reports it. A request
// that is no longer the latest reports ErrSuperseded instead.
func (r *Router) fail(req *Request, err error) error {
	r.mu.Lock()
	if r.stale(req.Seq) {
		r.mu.Unlock()
		return ErrSuperseded.WithPath(req.Path)
	}
	r.status = StateFailed
	fns := make([]func(Failure), 0, len(r.failureListeners))
	for id := 0; id < r.nextID; id++ {
		if fn, ok := r.failureListeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	r.mu.Unlock()

	r.logger.Warn("navigation failed", "seq", req.Seq, "kind", req.Kind.String(), "path", req.Path, "error", err)

	f := Failure{Kind: req.Kind, Path: req.Path, Seq: req.Seq, Err: err}
	for _, fn := range fns {
		fn(f)
	}
	return err
}
