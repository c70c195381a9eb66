// Package routes implements the static route table of an application.
//
// A table is an ordered list of literal paths. Each path either renders a
// view or redirects to another path:
//
//	table, err := routes.New([]routes.Route{
//	    routes.Redirect{Path: "/", Target: "/module1"},
//	    routes.View{Path: "/module1", Name: "Module1", View: "ModuleOneView"},
//	    routes.View{Path: "/module2", Name: "Module2", View: "ModuleTwoView"},
//	})
//
// Tables are immutable once built and safe to share between goroutines.
//
// # Resolution
//
// Resolve performs an exact lookup. ResolveWithRedirects follows redirect
// targets until a view route is reached:
//
//	res, err := table.ResolveWithRedirects("/")
//	// res.Path == "/module1", res.Route.View == "ModuleOneView"
//	// res.Chain == []string{"/", "/module1"}
//
// A chain that revisits a path, or that needs more than MaxRedirects hops,
// fails with ErrRedirectCycle. A path or redirect target that is not in the
// table fails with ErrNotFound.
package routes
