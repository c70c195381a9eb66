package routes

// Views of the default table.
const (
	ModuleOneView   ViewID = "ModuleOneView"
	ModuleTwoView   ViewID = "ModuleTwoView"
	ModuleThreeView ViewID = "ModuleThreeView"
)

// DefaultRoutes returns the application's built-in route list: the root
// redirects to the first module and each module path renders its own view.
func DefaultRoutes() []Route {
	return []Route{
		Redirect{Path: "/", Target: "/module1"},
		View{Path: "/module1", Name: "Module1", View: ModuleOneView},
		View{Path: "/module2", Name: "Module2", View: ModuleTwoView},
		View{Path: "/module3", Name: "Module3", View: ModuleThreeView},
	}
}

// Default returns a table built from DefaultRoutes.
func Default() *Table {
	return MustNew(DefaultRoutes())
}
