package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"user-management-service/pkg/logger"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": logger.GetRequestID(c.Request.Context())})
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func doGet(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	t.Run("Generated", func(t *testing.T) {
		w := doGet(r, "/ping", nil)

		id := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.JSONEq(t, `{"request_id":"`+id+`"}`, w.Body.String())
	})

	t.Run("Propagated", func(t *testing.T) {
		w := doGet(r, "/ping", http.Header{RequestIDHeader: []string{"abc-123"}})

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.JSONEq(t, `{"request_id":"abc-123"}`, w.Body.String())
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newEngine(RequestID(), Logger(zap.New(core)))

	doGet(r, "/ping", http.Header{RequestIDHeader: []string{"req-1"}})
	doGet(r, "/missing", nil)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "/ping", first["path"])
	assert.Equal(t, int64(http.StatusOK), first["status"])
	assert.Equal(t, "req-1", first["request_id"])

	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := newEngine(Recovery(zap.New(core)))

	w := doGet(r, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error","message":"An internal error occurred"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstCapacity:     10,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Handler())

	for i := 0; i < 5; i++ {
		w := doGet(r, "/ping", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_ExceedLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 0.01,
		BurstCapacity:     2,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Handler())

	assert.Equal(t, http.StatusOK, doGet(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/ping", nil).Code)

	w := doGet(r, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimiter_Refill(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Handler())

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mr.SetTime(base)
	assert.Equal(t, http.StatusOK, doGet(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "/ping", nil).Code)

	mr.SetTime(base.Add(2 * time.Second))
	assert.Equal(t, http.StatusOK, doGet(r, "/ping", nil).Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 0.01,
		BurstCapacity:     1,
		Enabled:           false,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Handler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(r, "/ping", nil).Code)
	}
}

func TestRateLimiter_NilClient(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimiterConfig{Enabled: true}, zaptest.NewLogger(t))
	r := newEngine(rl.Handler())

	assert.Equal(t, http.StatusOK, doGet(r, "/ping", nil).Code)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 0.01,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Handler())
	mr.Close()

	assert.Equal(t, http.StatusOK, doGet(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/ping", nil).Code)
}
