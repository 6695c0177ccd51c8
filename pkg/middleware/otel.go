package middleware

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/outlet/pkg/navigation"
)

const defaultTracerName = "outlet"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "outlet").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// Filter determines which navigations to trace. If nil, all are traced.
	Filter func(ev *navigation.Event) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ev *navigation.Event) []attribute.KeyValue
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

// WithEventFilter sets a filter function for navigations.
func WithEventFilter(filter func(ev *navigation.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev *navigation.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every navigation.
//
// The span is installed in the navigation context, so loaders and actions
// that start their own spans nest under it. Thrown boundaries are recorded
// as span events; only navigation failures set the error status.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given.
func OpenTelemetry(opts ...OTelOption) navigation.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return navigation.MiddlewareFunc(func(ev *navigation.Event, next func() error) error {
		if config.Filter != nil && !config.Filter(ev) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("outlet.path", ev.Path()),
			attribute.String("outlet.navigation_id", ev.ID),
			attribute.String("outlet.kind", ev.Kind.String()),
		}
		if ev.Request != nil && ev.Request.Method != "" {
			attrs = append(attrs, attribute.String("outlet.method", ev.Request.Method))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ev)...)
		}

		spanCtx, span := tracer.Start(
			ev.Context(),
			fmt.Sprintf("outlet.%s %s", ev.Kind, ev.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()
		ev.SetContext(spanCtx)

		err := next()

		switch {
		case errors.Is(err, navigation.ErrSuperseded):
			span.AddEvent("superseded")
			span.SetStatus(codes.Unset, "")
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		default:
			if p := ev.Plan; p != nil {
				span.SetAttributes(
					attribute.Int("outlet.status", p.Status),
					attribute.Int("outlet.matches", len(p.Matches)),
				)
				if p.HasError() {
					span.AddEvent("boundary", trace.WithAttributes(
						attribute.String("outlet.boundary", p.BoundaryID()),
						attribute.String("outlet.error", p.Error.Error()),
					))
				}
			}
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}
