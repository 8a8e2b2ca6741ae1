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
	"go.uber.org/zap/zaptest"
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

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setupRouter(t *testing.T, client redis.Scripter, cfg RateLimitConfig) (*gin.Engine, *clock) {
	gin.SetMode(gin.TestMode)
	clk := &clock{t: time.Unix(1_700_000_000, 0)}

	rl := NewRateLimiter(client, cfg, zaptest.NewLogger(t))
	rl.now = clk.now

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, clk
}

func doRequest(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_WithinBurst(t *testing.T) {
	client, _ := setupTestRedis(t)
	r, _ := setupRouter(t, client, RateLimitConfig{Enabled: true, RequestsPerSecond: 10, Burst: 10})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
	}
}

func TestRateLimiter_ExceedBurstThenRefill(t *testing.T) {
	client, _ := setupTestRedis(t)
	r, clk := setupRouter(t, client, RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1"))

	clk.t = clk.t.Add(time.Second)
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1"))
}

func TestRateLimiter_SeparateBucketsPerIP(t *testing.T) {
	client, _ := setupTestRedis(t)
	r, _ := setupRouter(t, client, RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1})

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.2"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)
	r, _ := setupRouter(t, client, RateLimitConfig{Enabled: false, RequestsPerSecond: 1, Burst: 1})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	r, _ := setupRouter(t, client, RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1})
	mr.Close()

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
}

func TestRateLimiter_NilClient(t *testing.T) {
	r, _ := setupRouter(t, nil, RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1})

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1"))
}
