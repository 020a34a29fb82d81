package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func tracedRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Tracing("ledger-test", true), Actor(), SpanAnnotator())
	r.GET("/distributions", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/broken", func(c *gin.Context) { c.String(http.StatusInternalServerError, "boom") })
	r.GET("/missing", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })
	return r
}

func endedSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func attrValue(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing(t *testing.T) {
	t.Run("annotates the server span", func(t *testing.T) {
		sr := setupTestTracer(t)
		serve(tracedRouter(), "GET", "/distributions", map[string]string{
			HeaderRequestID: "req-7",
			HeaderActorID:   "alice",
		})

		span := endedSpan(t, sr)
		assert.Equal(t, "GET /distributions", span.Name())

		id, ok := attrValue(span, "request_id")
		require.True(t, ok)
		assert.Equal(t, "req-7", id.AsString())

		actor, ok := attrValue(span, "actor_id")
		require.True(t, ok)
		assert.Equal(t, "alice", actor.AsString())
	})

	t.Run("5xx marks the span failed", func(t *testing.T) {
		sr := setupTestTracer(t)
		serve(tracedRouter(), "GET", "/broken", nil)

		assert.Equal(t, codes.Error, endedSpan(t, sr).Status().Code)
	})

	t.Run("4xx leaves the span unset", func(t *testing.T) {
		sr := setupTestTracer(t)
		serve(tracedRouter(), "GET", "/missing", nil)

		assert.NotEqual(t, codes.Error, endedSpan(t, sr).Status().Code)
	})

	t.Run("disabled records nothing", func(t *testing.T) {
		sr := setupTestTracer(t)
		r := gin.New()
		r.Use(Tracing("ledger-test", false), SpanAnnotator())
		r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		assert.Equal(t, http.StatusOK, serve(r, "GET", "/test", nil).Code)
		assert.Empty(t, sr.Ended())
	})
}
