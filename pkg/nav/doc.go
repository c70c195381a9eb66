// Package nav implements the navigation router of a single-page application.
//
// A Router ties three collaborators together:
//   - a routes.Table that maps literal paths to views and redirects
//   - a history.Backend that owns the visible address and the back/forward stack
//   - a Renderer that mounts the view for the active route
//
// # Lifecycle
//
//	table := routes.Default()
//	backend := history.NewMemory("/")
//	r := nav.New(table, backend, renderer, nav.WithLogger(logger))
//
//	if err := r.Start(ctx, "/"); err != nil {
//	    // the initial location could not be resolved
//	}
//	// "/" redirects to "/module1": the entry is replaced and ModuleOneView mounted
//
//	r.Navigate(ctx, "/module2") // pushes /module2
//	r.Back()                    // backend pops, router re-resolves /module1
//
// # States
//
// Each request moves the router from Idle to Resolving, possibly through
// Redirecting, and ends in Idle or Failed. Failed only describes the last
// request; the router keeps accepting new ones.
//
// # Ordering
//
// Every request is tagged with a sequence number. When a Loader is
// configured, view loading happens outside the router's commit lock and the
// request's context is cancelled as soon as a newer request starts. A
// request that is no longer the latest when it is ready to commit returns
// ErrSuperseded and changes nothing.
//
// Renderer.Mount is called while the commit lock is held, so a renderer
// must not call Navigate, Back or Forward synchronously.
package nav
