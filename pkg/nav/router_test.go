package nav

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/routes"
)

type mountRecorder struct {
	mu     sync.Mutex
	mounts []routes.ViewID
	err    error
}

func (m *mountRecorder) Mount(_ context.Context, view routes.ViewID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.mounts = append(m.mounts, view)
	return nil
}

func (m *mountRecorder) views() []routes.ViewID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]routes.ViewID(nil), m.mounts...)
}

func (m *mountRecorder) fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, table *routes.Table, opts ...Option) (*Router, *history.Memory, *mountRecorder) {
	t.Helper()
	mem := history.NewMemory("/")
	rec := &mountRecorder{}
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	r := New(table, mem, rec, opts...)
	t.Cleanup(r.Close)
	return r, mem, rec
}

func startedRouter(t *testing.T, opts ...Option) (*Router, *history.Memory, *mountRecorder) {
	t.Helper()
	r, mem, rec := newTestRouter(t, routes.Default(), opts...)
	if err := r.Start(context.Background(), "/"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return r, mem, rec
}

func TestStartFollowsRootRedirect(t *testing.T) {
	r, mem, rec := startedRouter(t)

	want := State{CurrentPath: "/module1", ViewID: routes.ModuleOneView, HistoryIndex: 0, Seq: 1}
	if diff := cmp.Diff(want, r.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/module1"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]routes.ViewID{routes.ModuleOneView}, rec.views()); diff != "" {
		t.Errorf("mounts mismatch (-want +got):\n%s", diff)
	}
	if r.Status() != StateIdle {
		t.Errorf("Status = %v, want idle", r.Status())
	}
}

func TestStartCanonicalizesInitialEntry(t *testing.T) {
	mem := history.NewMemory("/module2/")
	rec := &mountRecorder{}
	r := New(routes.Default(), mem, rec, WithLogger(discardLogger()))
	defer r.Close()

	if err := r.Start(context.Background(), "/module2/"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := r.State().CurrentPath; got != "/module2" {
		t.Errorf("CurrentPath = %q, want /module2", got)
	}
	if diff := cmp.Diff([]string{"/module2"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestStartTwice(t *testing.T) {
	r, _, _ := startedRouter(t)
	if err := r.Start(context.Background(), "/"); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestNavigatePushes(t *testing.T) {
	r, mem, rec := startedRouter(t)

	if err := r.Navigate(context.Background(), "/module2"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	st := r.State()
	if st.CurrentPath != "/module2" || st.ViewID != routes.ModuleTwoView || st.HistoryIndex != 1 {
		t.Errorf("State = %+v", st)
	}
	if diff := cmp.Diff([]string{"/module1", "/module2"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]routes.ViewID{routes.ModuleOneView, routes.ModuleTwoView}, rec.views()); diff != "" {
		t.Errorf("mounts mismatch (-want +got):\n%s", diff)
	}
}

func TestNavigateNotFoundLeavesState(t *testing.T) {
	r, mem, rec := startedRouter(t)
	before := r.State()

	var failures []Failure
	r.OnFailure(func(f Failure) { failures = append(failures, f) })
	var events int
	r.Subscribe(func(Event) { events++ })

	err := r.Navigate(context.Background(), "/module4")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Navigate = %v, want ErrNotFound", err)
	}

	if diff := cmp.Diff(before, r.State()); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
	if r.Status() != StateFailed {
		t.Errorf("Status = %v, want failed", r.Status())
	}
	if len(mem.Entries()) != 1 || len(rec.views()) != 1 {
		t.Errorf("history or view changed: entries=%v mounts=%v", mem.Entries(), rec.views())
	}
	if events != 0 {
		t.Errorf("got %d events, want none", events)
	}
	if len(failures) != 1 || failures[0].Path != "/module4" || failures[0].Kind != KindPush {
		t.Errorf("failures = %+v", failures)
	}

	// A later navigation recovers.
	if err := r.Navigate(context.Background(), "/module3"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if r.Status() != StateIdle {
		t.Errorf("Status = %v, want idle", r.Status())
	}
}

func TestNavigateRejectsInvalidPaths(t *testing.T) {
	r, _, _ := startedRouter(t)

	for _, path := range []string{"module2", "//evil.example/x", "https://evil.example/", "/a\\b", "/../x"} {
		if err := r.Navigate(context.Background(), path); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Navigate(%q) = %v, want ErrInvalidPath", path, err)
		}
	}
	if got := r.State().CurrentPath; got != "/module1" {
		t.Errorf("CurrentPath = %q, want /module1", got)
	}
}

func TestBackAndForward(t *testing.T) {
	r, mem, rec := startedRouter(t)
	ctx := context.Background()

	for _, p := range []string{"/module2", "/module3"} {
		if err := r.Navigate(ctx, p); err != nil {
			t.Fatalf("Navigate(%s): %v", p, err)
		}
	}

	var kinds []Kind
	r.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	if err := r.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	st := r.State()
	if st.CurrentPath != "/module2" || st.ViewID != routes.ModuleTwoView || st.HistoryIndex != 1 {
		t.Errorf("after Back: %+v", st)
	}
	if mem.Len() != 3 {
		t.Errorf("Back must not add entries, got %v", mem.Entries())
	}

	if err := r.Forward(); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if got := r.State(); got.CurrentPath != "/module3" || got.HistoryIndex != 2 {
		t.Errorf("after Forward: %+v", got)
	}

	if diff := cmp.Diff([]Kind{KindPop, KindPop}, kinds); diff != "" {
		t.Errorf("event kinds mismatch (-want +got):\n%s", diff)
	}
	want := []routes.ViewID{routes.ModuleOneView, routes.ModuleTwoView, routes.ModuleThreeView, routes.ModuleTwoView, routes.ModuleThreeView}
	if diff := cmp.Diff(want, rec.views()); diff != "" {
		t.Errorf("mounts mismatch (-want +got):\n%s", diff)
	}
}

func TestBackPastStartIsNoop(t *testing.T) {
	r, _, rec := startedRouter(t)
	if err := r.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if got := r.State().CurrentPath; got != "/module1" {
		t.Errorf("CurrentPath = %q, want /module1", got)
	}
	if len(rec.views()) != 1 {
		t.Errorf("mounts = %v, want one", rec.views())
	}
}

func TestReplace(t *testing.T) {
	r, mem, _ := startedRouter(t)

	if err := r.Navigate(context.Background(), "/module2", Replace()); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if diff := cmp.Diff([]string{"/module2"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if got := r.State().HistoryIndex; got != 0 {
		t.Errorf("HistoryIndex = %d, want 0", got)
	}
}

func TestNavigateToCurrentIsNoop(t *testing.T) {
	var duplicate bool
	mw := MiddlewareFunc(func(ctx context.Context, req *Request, next func(context.Context) error) error {
		err := next(ctx)
		duplicate = req.Duplicate
		return err
	})
	r, mem, rec := startedRouter(t, WithMiddleware(mw))

	var events int
	r.Subscribe(func(Event) { events++ })

	for _, p := range []string{"/module1", "/module1/", "/"} {
		if err := r.Navigate(context.Background(), p); err != nil {
			t.Fatalf("Navigate(%q): %v", p, err)
		}
		if !duplicate {
			t.Errorf("Navigate(%q) was not treated as a duplicate", p)
		}
	}
	if events != 0 || len(rec.views()) != 1 || mem.Len() != 1 {
		t.Errorf("duplicate navigation changed something: events=%d mounts=%v entries=%v", events, rec.views(), mem.Entries())
	}
}

func TestQueryParams(t *testing.T) {
	r, mem, _ := startedRouter(t)

	err := r.Navigate(context.Background(), "/module2?a=1", WithParams(map[string]any{"tab": 2}))
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	st := r.State()
	if st.CurrentPath != "/module2" || st.Query != "a=1&tab=2" {
		t.Errorf("State = %+v", st)
	}
	if got := st.Location(); got != "/module2?a=1&tab=2" {
		t.Errorf("Location = %q", got)
	}
	if got := mem.Current().Path; got != "/module2?a=1&tab=2" {
		t.Errorf("history entry = %q", got)
	}

	// Same path with a different query is a real navigation.
	if err := r.Navigate(context.Background(), "/module2"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if mem.Len() != 3 {
		t.Errorf("entries = %v, want three", mem.Entries())
	}
}

func TestNotFoundView(t *testing.T) {
	const notFound routes.ViewID = "NotFoundView"
	r, mem, rec := startedRouter(t, WithNotFoundView(notFound))

	var got Event
	r.Subscribe(func(ev Event) { got = ev })

	if err := r.Navigate(context.Background(), "/module4"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if st := r.State(); st.CurrentPath != "/module4" || st.ViewID != notFound {
		t.Errorf("State = %+v", st)
	}
	if mem.Current().Path != "/module4" {
		t.Errorf("history entry = %q, want /module4", mem.Current().Path)
	}
	if !got.Fallback || !errors.Is(got.Cause, ErrNotFound) {
		t.Errorf("event = %+v, want fallback caused by not found", got)
	}
	if views := rec.views(); views[len(views)-1] != notFound {
		t.Errorf("mounts = %v", views)
	}
}

func TestRedirectCycleFails(t *testing.T) {
	table := routes.MustNew([]routes.Route{
		routes.Redirect{Path: "/a", Target: "/b"},
		routes.Redirect{Path: "/b", Target: "/a"},
		routes.View{Path: "/c", View: "C"},
	})
	r, _, rec := newTestRouter(t, table)
	if err := r.Start(context.Background(), "/c"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	err := r.Navigate(context.Background(), "/a")
	if !errors.Is(err, ErrRedirectCycle) {
		t.Fatalf("Navigate = %v, want ErrRedirectCycle", err)
	}
	if r.Status() != StateFailed {
		t.Errorf("Status = %v, want failed", r.Status())
	}
	if r.State().CurrentPath != "/c" || len(rec.views()) != 1 {
		t.Errorf("state changed: %+v", r.State())
	}
}

func TestRendererFailure(t *testing.T) {
	r, mem, rec := startedRouter(t)
	boom := errors.New("boom")
	rec.fail(boom)

	var failures []Failure
	r.OnFailure(func(f Failure) { failures = append(failures, f) })

	err := r.Navigate(context.Background(), "/module2")
	if !errors.Is(err, ErrViewLoadFailed) || !errors.Is(err, boom) {
		t.Fatalf("Navigate = %v, want ErrViewLoadFailed wrapping boom", err)
	}
	if r.State().CurrentPath != "/module1" || mem.Len() != 1 {
		t.Errorf("state or history changed: %+v %v", r.State(), mem.Entries())
	}
	if len(failures) != 1 {
		t.Errorf("got %d failures, want 1", len(failures))
	}
}

func TestLoaderFailure(t *testing.T) {
	boom := errors.New("chunk missing")
	loader := LoaderFunc(func(_ context.Context, view routes.ViewID) error {
		if view == routes.ModuleThreeView {
			return boom
		}
		return nil
	})
	r, _, rec := startedRouter(t, WithLoader(loader))

	err := r.Navigate(context.Background(), "/module3")
	if !errors.Is(err, ErrViewLoadFailed) || !errors.Is(err, boom) {
		t.Fatalf("Navigate = %v, want ErrViewLoadFailed wrapping loader error", err)
	}
	if len(rec.views()) != 1 {
		t.Errorf("view was mounted despite load failure: %v", rec.views())
	}
}

func TestNewerNavigationSupersedes(t *testing.T) {
	loading := make(chan struct{})
	loader := LoaderFunc(func(ctx context.Context, view routes.ViewID) error {
		if view != routes.ModuleTwoView {
			return nil
		}
		close(loading)
		<-ctx.Done()
		return ctx.Err()
	})
	r, mem, rec := startedRouter(t, WithLoader(loader))

	var failures int
	r.OnFailure(func(Failure) { failures++ })

	slow := make(chan error, 1)
	go func() {
		slow <- r.Navigate(context.Background(), "/module2")
	}()
	<-loading

	if err := r.Navigate(context.Background(), "/module3"); err != nil {
		t.Fatalf("Navigate(/module3): %v", err)
	}
	if err := <-slow; !errors.Is(err, ErrSuperseded) {
		t.Errorf("superseded Navigate = %v, want ErrSuperseded", err)
	}

	if got := r.State(); got.CurrentPath != "/module3" || got.Seq != 3 {
		t.Errorf("State = %+v, want /module3 from request 3", got)
	}
	if diff := cmp.Diff([]routes.ViewID{routes.ModuleOneView, routes.ModuleThreeView}, rec.views()); diff != "" {
		t.Errorf("mounts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/module1", "/module3"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if failures != 0 {
		t.Errorf("superseded request reported %d failures", failures)
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var calls []string
	var seen Request
	named := func(name string) Middleware {
		return MiddlewareFunc(func(ctx context.Context, req *Request, next func(context.Context) error) error {
			calls = append(calls, name+" before")
			err := next(ctx)
			calls = append(calls, name+" after")
			seen = *req
			return err
		})
	}

	_, _, _ = startedRouter(t, WithMiddleware(named("a"), named("b")))

	want := []string{"a before", "b before", "b after", "a after"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
	wantReq := Request{Path: "/", Kind: KindInitial, Seq: 1, Resolved: "/module1", View: routes.ModuleOneView, Redirects: 1}
	if diff := cmp.Diff(wantReq, seen); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestChainMiddleware(t *testing.T) {
	var calls []string
	mk := func(name string) Middleware {
		return MiddlewareFunc(func(ctx context.Context, req *Request, next func(context.Context) error) error {
			calls = append(calls, name)
			return next(ctx)
		})
	}
	_, _, _ = startedRouter(t, WithMiddleware(Chain(mk("1"), mk("2")), mk("3")))

	if diff := cmp.Diff([]string{"1", "2", "3"}, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestNavigateByName(t *testing.T) {
	r, _, _ := startedRouter(t)

	if err := r.NavigateByName(context.Background(), "Module3"); err != nil {
		t.Fatalf("NavigateByName: %v", err)
	}
	if got := r.State().ViewID; got != routes.ModuleThreeView {
		t.Errorf("ViewID = %q", got)
	}
	if err := r.NavigateByName(context.Background(), "Module9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("NavigateByName(unknown) = %v, want ErrNotFound", err)
	}
}

func TestEventCarriesTransition(t *testing.T) {
	r, _, _ := newTestRouter(t, routes.Default())

	var events []Event
	r.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := r.Start(context.Background(), "/"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Kind != KindInitial || !ev.Redirected() {
		t.Errorf("event = %+v", ev)
	}
	if diff := cmp.Diff([]string{"/", "/module1"}, ev.Chain); diff != "" {
		t.Errorf("chain mismatch (-want +got):\n%s", diff)
	}
	if ev.From.ViewID != "" || ev.To.ViewID != routes.ModuleOneView {
		t.Errorf("From=%+v To=%+v", ev.From, ev.To)
	}
}

func TestSubscriberMayNavigate(t *testing.T) {
	r, _, _ := startedRouter(t)

	once := false
	r.Subscribe(func(ev Event) {
		if !once && ev.To.CurrentPath == "/module2" {
			once = true
			if err := r.Navigate(context.Background(), "/module3"); err != nil {
				t.Errorf("nested Navigate: %v", err)
			}
		}
	})

	if err := r.Navigate(context.Background(), "/module2"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got := r.State().CurrentPath; got != "/module3" {
		t.Errorf("CurrentPath = %q, want /module3", got)
	}
}

func TestClosedRouter(t *testing.T) {
	r, mem, rec := startedRouter(t)
	r.Close()
	r.Close()

	if err := r.Navigate(context.Background(), "/module2"); !errors.Is(err, ErrClosed) {
		t.Errorf("Navigate after Close = %v, want ErrClosed", err)
	}
	if err := r.Back(); !errors.Is(err, ErrClosed) {
		t.Errorf("Back after Close = %v, want ErrClosed", err)
	}

	// Backend traversal no longer reaches the router.
	mem.PushEntry("/module2")
	mem.Back()
	if len(rec.views()) != 1 {
		t.Errorf("closed router mounted views: %v", rec.views())
	}
}

func TestWithBaseBackend(t *testing.T) {
	mem := history.NewMemory("/app/")
	rec := &mountRecorder{}
	r := New(routes.Default(), history.WithBase(mem, "/app"), rec, WithLogger(discardLogger()))
	defer r.Close()

	if err := r.Start(context.Background(), "/"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Navigate(context.Background(), "/module2"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if diff := cmp.Diff([]string{"/app/module1", "/app/module2"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if err := r.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if got := r.State().CurrentPath; got != "/module1" {
		t.Errorf("CurrentPath = %q, want /module1", got)
	}
}

func TestNavigateBeforeStart(t *testing.T) {
	r, mem, rec := newTestRouter(t, routes.Default())

	if err := r.Navigate(context.Background(), "/module2"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Navigate before Start = %v, want ErrNotStarted", err)
	}
	if err := r.Back(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Back before Start = %v, want ErrNotStarted", err)
	}
	if err := r.NavigateByName(context.Background(), "Module3"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("NavigateByName before Start = %v, want ErrNotStarted", err)
	}
	if diff := cmp.Diff([]string{"/"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if len(rec.views()) != 0 {
		t.Errorf("mounted views before Start: %v", rec.views())
	}

	// The router follows the backend once started.
	if err := r.Start(context.Background(), "/"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Navigate(context.Background(), "/module2"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if err := r.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if got, want := r.State().CurrentPath, mem.Current().Path; got != want {
		t.Errorf("CurrentPath = %q, backend at %q", got, want)
	}
}

func TestNavigateFragment(t *testing.T) {
	r, mem, _ := startedRouter(t)

	if err := r.Navigate(context.Background(), "/module1#section"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	st := r.State()
	if st.Fragment != "section" || st.Location() != "/module1#section" {
		t.Errorf("State = %+v", st)
	}

	// Same path, query and fragment is the active location.
	if err := r.Navigate(context.Background(), "/module1#section"); err != nil {
		t.Fatalf("Navigate again: %v", err)
	}
	if diff := cmp.Diff([]string{"/module1", "/module1#section"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

// gatedRenderer blocks mounting gate until release is closed.
type gatedRenderer struct {
	*mountRecorder
	gate    routes.ViewID
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRenderer) Mount(ctx context.Context, view routes.ViewID) error {
	if view == g.gate {
		close(g.entered)
		<-g.release
	}
	return g.mountRecorder.Mount(ctx, view)
}

func TestStaleCommitKeepsNewerStatus(t *testing.T) {
	g := &gatedRenderer{
		mountRecorder: &mountRecorder{},
		gate:          routes.ModuleTwoView,
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	loadEntered := make(chan struct{})
	loadRelease := make(chan struct{})
	loader := LoaderFunc(func(_ context.Context, view routes.ViewID) error {
		if view == routes.ModuleThreeView {
			close(loadEntered)
			<-loadRelease
		}
		return nil
	})

	mem := history.NewMemory("/")
	r := New(routes.Default(), mem, g, WithLoader(loader), WithLogger(discardLogger()))
	defer r.Close()
	if err := r.Start(context.Background(), "/"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	slow := make(chan error, 1)
	go func() { slow <- r.Navigate(context.Background(), "/module2") }()
	<-g.entered

	newer := make(chan error, 1)
	go func() { newer <- r.Navigate(context.Background(), "/module3") }()
	<-loadEntered

	// The older request finishes mounting while the newer one is loading.
	close(g.release)
	if err := <-slow; err != nil {
		t.Fatalf("Navigate(/module2): %v", err)
	}
	if got := r.Status(); got != StateResolving {
		t.Errorf("Status after stale commit = %v, want resolving", got)
	}

	close(loadRelease)
	if err := <-newer; err != nil {
		t.Fatalf("Navigate(/module3): %v", err)
	}
	if got := r.Status(); got != StateIdle {
		t.Errorf("Status = %v, want idle", got)
	}
	if got := r.State().CurrentPath; got != "/module3" {
		t.Errorf("CurrentPath = %q, want /module3", got)
	}
}
