package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 2)
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	assert.True(t, l.Allow("10.0.0.2"), "other IPs keep their own bucket")
	assert.Same(t, l.GetLimiter("10.0.0.1"), l.GetLimiter("10.0.0.1"))
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(10), 1)
	defer l.Stop()

	l.Allow("10.0.0.1")
	l.GetLimiter("10.0.0.2")

	removed, active := l.sweep(time.Now())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, active)

	removed, active = l.sweep(time.Now().Add(time.Second))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, active)
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewIPRateLimiter(rate.Limit(0.001), 1)
	defer l.Stop()

	router := gin.New()
	router.Use(l.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":429`)
}
