package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func tracedRouter(status int) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test"}),
		TracingAttributeInjector(), SpanErrorMarker())
	router.GET("/products/:id", func(c *gin.Context) {
		c.Status(status)
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func attrValue(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_SpanPerRoute(t *testing.T) {
	sr := setupTestTracer(t)

	testutil.Do(t, tracedRouter(http.StatusOK), testutil.Request{
		Path:    "/products/42",
		Headers: map[string]string{RequestIDHeader: "req-7"},
	})

	span := findSpan(t, sr, "GET /products/:id")
	v, ok := attrValue(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-7", v.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_ProbesAreNotTraced(t *testing.T) {
	sr := setupTestTracer(t)
	testutil.Do(t, tracedRouter(http.StatusOK), testutil.Request{Path: "/health"})
	assert.Empty(t, sr.Ended())
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, testutil.Do(t, router, testutil.Request{Path: "/x"}).Code)
	assert.Empty(t, sr.Ended())
}

func TestSpanErrorMarker(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			sr := setupTestTracer(t)
			testutil.Do(t, tracedRouter(status), testutil.Request{Path: "/products/1"})

			span := findSpan(t, sr, "GET /products/:id")
			assert.Equal(t, codes.Error, span.Status().Code)
		})
	}
}

func TestProfilingLabels_PassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(ProfilingLabels())
	router.GET("/products/:id", func(c *gin.Context) {
		assert.NotNil(t, c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := testutil.Do(t, router, testutil.Request{Path: "/products/1"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = testutil.Do(t, router, testutil.Request{Path: "/missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
