package middleware

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/navcore/pkg/nav"
)

// Default tracer name.
const defaultTracerName = "navcore"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "navcore").
	TracerName string

	// TracerProvider supplies the tracer. Defaults to the global provider.
	TracerProvider trace.TracerProvider

	// Filter determines which requests to trace.
	// If nil, all requests are traced.
	Filter func(req *nav.Request) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(req *nav.Request) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithFilter sets a filter function for requests.
func WithFilter(filter func(req *nav.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req *nav.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every navigation.
//
// The span is started before resolution and ended after the commit. It
// carries the requested path up front and the resolved path, view and
// redirect count once the router has filled them in. Superseded requests
// are marked with an event rather than an error status.
func OpenTelemetry(opts ...OTelOption) nav.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return nav.MiddlewareFunc(func(ctx context.Context, req *nav.Request, next func(context.Context) error) error {
		if config.Filter != nil && !config.Filter(req) {
			return next(ctx)
		}

		attrs := []attribute.KeyValue{
			attribute.String("nav.path", req.Path),
			attribute.String("nav.kind", req.Kind.String()),
			attribute.Int64("nav.seq", int64(req.Seq)),
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(req)...)
		}

		spanCtx, span := tracer.Start(ctx, fmt.Sprintf("nav.%s", req.Kind),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next(spanCtx)

		span.SetAttributes(
			attribute.String("nav.resolved", req.Resolved),
			attribute.String("nav.view", string(req.View)),
			attribute.Int("nav.redirects", req.Redirects),
			attribute.Bool("nav.fallback", req.Fallback),
			attribute.Bool("nav.duplicate", req.Duplicate),
		)

		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(err, nav.ErrSuperseded):
			span.AddEvent("superseded")
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}
