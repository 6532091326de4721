package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields_DoesNotShareBackingArray(t *testing.T) {
	base := WithFields(context.Background(), Field{"call_id", "c1"})

	a := WithFields(base, Field{"room", "a"})
	b := WithFields(base, Field{"room", "b"})

	assert.Equal(t, []Field{{"call_id", "c1"}, {"room", "a"}}, getObservabilityFields(a))
	assert.Equal(t, []Field{{"call_id", "c1"}, {"room", "b"}}, getObservabilityFields(b))
}

func TestLogger_IncludesContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core))

	ctx := WithFields(context.Background(), Field{"call_id", "c1"}, Field{"phone_number", "+15550100"})
	logger.WarnWithError(ctx, "Error hanging up call", errors.New("room not found"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "c1", fields["call_id"])
	assert.Equal(t, "+15550100", fields["phone_number"])
	assert.Equal(t, "room not found", fields["error"])
}

func TestMiddleware_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, _ := observer.New(zapcore.InfoLevel)
	logger := NewLoggerFromZap(zap.New(core))

	r := gin.New()
	r.Use(Middleware(logger))
	var seen []Field
	r.GET("/ping", func(c *gin.Context) {
		seen = getObservabilityFields(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	require.NotEmpty(t, seen)
	assert.Equal(t, "request_id", seen[0].Key)
}

func TestMiddleware_KeepsCallerRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(NewLoggerFromZap(zap.NewNop())))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-fixed")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-fixed", w.Header().Get("X-Request-ID"))
}
