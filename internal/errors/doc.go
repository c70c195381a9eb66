// Package errors provides coded, structured errors for navcore.
//
// Every failure the route table, router, configuration loader or server can
// report has a registered code. A NavError carries that code together with
// the path being navigated, the redirect chain that led to the failure and
// an optional wrapped cause.
//
// # Error Categories
//
//   - route: route table construction and lookup (unknown path, redirect loops)
//   - navigation: router lifecycle (superseded requests, closed router)
//   - view: view loading and mounting
//   - config: configuration loading and validation
//   - protocol: websocket message handling
//
// # Matching
//
// NavError implements Is by comparing codes, so the package-level sentinels
// work with the standard library:
//
//	if errors.Is(err, navErrors.ErrNotFound) {
//	    // render a not-found page
//	}
//
// Sentinels are shared values. Builders such as WithPath return a copy and
// never modify the receiver.
package errors
