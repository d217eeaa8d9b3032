package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware_RejectsBeyondBurst(t *testing.T) {
	g := gin.New()
	// rps low enough that the bucket does not refill during the test
	g.GET("/", RateLimitMiddleware(0.001, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := []int{}
	for i := 0; i < 3; i++ {
		rw := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		g.ServeHTTP(rw, req)
		codes = append(codes, rw.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_KeysByClient(t *testing.T) {
	g := gin.New()
	g.GET("/", RateLimitMiddleware(0.001, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// exhaust one client's bucket
	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:1000"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	rw = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:1000"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusTooManyRequests, rw.Code)

	// a different client is unaffected
	rw = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.2:1000"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
}
