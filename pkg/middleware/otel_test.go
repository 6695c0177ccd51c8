package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/outlet/pkg/navigation"
	"github.com/vango-dev/outlet/pkg/route"
)

func remoteParent(t *testing.T) (context.Context, trace.SpanContext) {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithRemoteSpanContext(context.Background(), sc), sc
}

func TestOpenTelemetryLoadersShareTrace(t *testing.T) {
	drainLoaderCtx()
	ctx, parent := remoteParent(t)

	var extracted bool
	nav := testNavigator(t, OpenTelemetry(
		WithTracerName("test"),
		WithAttributeExtractor(func(ev *navigation.Event) []attribute.KeyValue {
			extracted = true
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))

	plan, err := nav.Document(ctx, &route.Request{Path: "/ok"})
	require.NoError(t, err)
	assert.Equal(t, 200, plan.Status)
	assert.True(t, extracted)

	got := <-loaderCtx
	assert.Equal(t, parent.TraceID(), trace.SpanContextFromContext(got).TraceID())
}

func TestOpenTelemetryInstallsSpanContext(t *testing.T) {
	ctx, _ := remoteParent(t)
	mw := OpenTelemetry(WithTracerProvider(noop.NewTracerProvider()))

	ev := &navigation.Event{Kind: navigation.KindTransition, Request: &route.Request{Path: "/x"}}
	ev.SetContext(ctx)

	var inner context.Context
	err := mw.Handle(ev, func() error {
		inner = ev.Context()
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, inner)
	assert.NotEqual(t, ctx, inner, "the span context replaces the navigation context")
}

func TestOpenTelemetryErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	ev := &navigation.Event{Kind: navigation.KindTransition}
	ev.SetContext(context.Background())

	err := OpenTelemetry().Handle(ev, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	err = OpenTelemetry().Handle(ev, func() error { return navigation.ErrSuperseded })
	assert.ErrorIs(t, err, navigation.ErrSuperseded)
}

func TestOpenTelemetryFilterSkipsTracing(t *testing.T) {
	ev := &navigation.Event{Kind: navigation.KindDocument, Request: &route.Request{Path: "/healthz"}}
	base := context.Background()
	ev.SetContext(base)

	nextCalled := false
	err := OpenTelemetry(
		WithEventFilter(func(ev *navigation.Event) bool { return ev.Path() != "/healthz" }),
	).Handle(ev, func() error {
		nextCalled = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, nextCalled)
	assert.Equal(t, base, ev.Context(), "filtered navigations keep their context")
}

func TestOpenTelemetryBoundaryNavigation(t *testing.T) {
	nav := testNavigator(t, OpenTelemetry())

	plan, err := nav.Document(context.Background(), &route.Request{Path: "/denied"})
	require.NoError(t, err)
	assert.Equal(t, 401, plan.Status)
	assert.Equal(t, "root", plan.BoundaryID())
}
