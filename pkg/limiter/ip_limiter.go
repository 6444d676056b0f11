// Package limiter throttles clients per IP address with token buckets.
package limiter

import (
	"sync"
	"time"

	"connectsphere/pkg/logger"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const cleanupInterval = 3 * time.Minute

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	r      rate.Limit
	b      int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter allows r requests per second with bursts of b, and starts
// a sweeper that forgets idle IPs until Stop is called.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	l := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
		stop:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// GetLimiter returns the bucket of ip, creating it on first use.
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limits[ip]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.limits[ip]; !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limits[ip] = limiter
	}
	return limiter
}

// Allow takes one token from ip's bucket.
func (l *IPRateLimiter) Allow(ip string) bool {
	if ip == "" {
		ip = "unknown_ip"
	}
	return l.GetLimiter(ip).Allow()
}

// Stop ends the sweeper goroutine.
func (l *IPRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			removed, active := l.sweep(now)
			logger.Debug("rate limiter sweep", zap.Int("removed", removed), zap.Int("active", active))
		}
	}
}

// sweep forgets every IP whose bucket has refilled completely.
func (l *IPRateLimiter) sweep(now time.Time) (removed, active int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, limiter := range l.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(l.limits, ip)
			removed++
		}
	}
	return removed, len(l.limits)
}

// Middleware answers 429 once the client IP runs out of tokens.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			logger.Warn("rate limit exceeded", zap.String("ip", c.ClientIP()), zap.String("path", c.Request.URL.Path))
			response.TooManyRequests(c, "too many requests, please try again later")
			return
		}
		c.Next()
	}
}
