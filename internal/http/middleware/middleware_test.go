package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task_tracker/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := newMemoryLimiter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("1.1.1.1", 2, time.Minute))
	assert.True(t, l.allow("1.1.1.1", 2, time.Minute))
	assert.False(t, l.allow("1.1.1.1", 2, time.Minute))

	// other clients have their own window
	assert.True(t, l.allow("2.2.2.2", 2, time.Minute))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.allow("1.1.1.1", 2, time.Minute))
}

func TestSimpleRateLimit_Blocks(t *testing.T) {
	r := gin.New()
	r.GET("/limited", SimpleRateLimit(2, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	blockedBefore := testutil.ToFloat64(RLBlocked.WithLabelValues("/limited"))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, blockedBefore+1, testutil.ToFloat64(RLBlocked.WithLabelValues("/limited")))
}

func TestRateLimit_FallsBackWithoutRedis(t *testing.T) {
	assert.False(t, InitRedisRateLimiter("", "", 0))

	r := gin.New()
	r.GET("/api", RateLimit(1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) {
		_, ok := logger.FromContext(c.Request.Context())
		assert.True(t, ok, "request logger attached")
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	require.Equal(t, http.StatusOK, w.Code)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestMetrics_ObservesRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/things/:id", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	before := sampleCount(t, "GET", "/things/:id", "202")
	unmatchedBefore := sampleCount(t, "GET", "unmatched", "404")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/7", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, before+1, sampleCount(t, "GET", "/things/:id", "202"))
	assert.Equal(t, unmatchedBefore+1, sampleCount(t, "GET", "unmatched", "404"))
}

func sampleCount(t *testing.T, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, HTTPDuration.WithLabelValues(labels...).(prometheus.Metric).Write(m))
	return m.GetHistogram().GetSampleCount()
}
