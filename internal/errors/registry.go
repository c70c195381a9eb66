package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// Registered codes.
const (
	CodeNotFound       = "N001"
	CodeRedirectCycle  = "N002"
	CodeViewLoadFailed = "N003"
	CodeSuperseded     = "N004"
	CodeInvalidPath    = "N005"
	CodeClosed         = "N006"
	CodeDuplicatePath  = "N007"
	CodeDuplicateName  = "N008"
	CodeInvalidRoute   = "N009"
	CodeNotStarted     = "N010"

	CodeConfigNotFound = "C001"
	CodeConfigParse    = "C002"
	CodeConfigInvalid  = "C003"
	CodeConfigRemote   = "C004"

	CodeInvalidMessage = "P001"
	CodeUpgradeFailed  = "P002"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Route Table (N001-N099)
	// ============================================

	CodeNotFound: {
		Category: CategoryRoute,
		Message:  "No route matches path",
		Detail:   "The path is not registered in the route table and no redirect leads to a view.",
	},
	CodeRedirectCycle: {
		Category: CategoryRoute,
		Message:  "Redirect chain does not terminate",
		Detail:   "The redirect chain revisits a path or exceeds the maximum number of hops.",
	},
	CodeViewLoadFailed: {
		Category: CategoryView,
		Message:  "View failed to load",
		Detail:   "The view collaborator could not produce the view for a resolved route.",
	},
	CodeSuperseded: {
		Category: CategoryNavigation,
		Message:  "Navigation superseded",
		Detail:   "A newer navigation request started before this one committed; its result was discarded.",
	},
	CodeInvalidPath: {
		Category: CategoryNavigation,
		Message:  "Invalid navigation path",
		Detail:   "Navigation paths must be relative, start with a slash and must not escape the root.",
	},
	CodeClosed: {
		Category: CategoryNavigation,
		Message:  "Router is closed",
		Detail:   "The router was closed and no longer accepts navigation requests.",
	},
	CodeDuplicatePath: {
		Category: CategoryRoute,
		Message:  "Duplicate route path",
		Detail:   "Route paths must be unique within a table.",
	},
	CodeDuplicateName: {
		Category: CategoryRoute,
		Message:  "Duplicate route name",
		Detail:   "Route names must be unique within a table.",
	},
	CodeInvalidRoute: {
		Category: CategoryRoute,
		Message:  "Invalid route definition",
		Detail:   "A route must have a canonical path and either a view or a redirect target.",
	},
	CodeNotStarted: {
		Category: CategoryNavigation,
		Message:  "Router is not started",
		Detail:   "Call Start before navigating so the router follows the history backend.",
	},

	// ============================================
	// Config (C001-C099)
	// ============================================

	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "Neither navcore.json nor navcore.toml exists in the given directory.",
	},
	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Configuration could not be parsed",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Configuration is invalid",
	},
	CodeConfigRemote: {
		Category: CategoryConfig,
		Message:  "Remote configuration could not be fetched",
	},

	// ============================================
	// Protocol (P001-P099)
	// ============================================

	CodeInvalidMessage: {
		Category: CategoryProtocol,
		Message:  "Invalid client message",
	},
	CodeUpgradeFailed: {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
	},
}

// Sentinels for errors.Is matching.
var (
	ErrNotFound       = New(CodeNotFound)
	ErrRedirectCycle  = New(CodeRedirectCycle)
	ErrViewLoadFailed = New(CodeViewLoadFailed)
	ErrSuperseded     = New(CodeSuperseded)
	ErrInvalidPath    = New(CodeInvalidPath)
	ErrClosed         = New(CodeClosed)
	ErrNotStarted     = New(CodeNotStarted)
)

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
