// Package middleware provides observability middleware for the navigation
// router.
//
// # Prometheus Metrics
//
// Prometheus returns a collector that counts navigations by kind and
// outcome, times them, and tracks connected sessions:
//
//   - navcore_navigations_total: navigations by kind and outcome
//   - navcore_navigation_duration_seconds: navigation duration histogram
//   - navcore_redirects_total: redirect hops followed
//   - navcore_active_sessions: connected sessions
//   - navcore_protocol_errors_total: rejected client messages by type
//
// Register it as router middleware and expose the registry:
//
//	metrics := middleware.Prometheus(middleware.WithNamespace("myapp"))
//	router := nav.New(table, backend, renderer, nav.WithMiddleware(metrics))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// OpenTelemetry starts a span for every navigation. The span context is
// passed down to the loader and renderer, so work they do is recorded as
// part of the navigation:
//
//	nav.WithMiddleware(
//	    middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-app"),
//	        middleware.WithFilter(func(req *nav.Request) bool {
//	            return req.Kind != nav.KindPop
//	        }),
//	    ),
//	)
package middleware
