package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimitMiddleware_FixedWindow(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	g := gin.New()
	// allowed = floor(0*60)+1 = one request per 60s window
	g.GET("/", RedisRateLimitMiddleware(client, 0, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	rw = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusTooManyRequests, rw.Code)
	require.Equal(t, "60", rw.Header().Get("Retry-After"))
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	g := gin.New()
	g.GET("/", RedisRateLimitMiddleware(nil, 0.001, 1, time.Second), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.10:1234"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
}
