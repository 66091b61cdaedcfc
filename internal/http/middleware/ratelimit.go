package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

// memoryLimiter is a per-process fixed window keyed by client IP
type memoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{clients: make(map[string]*clientInfo), now: time.Now}
}

// allow counts one request for ip and reports whether it is within maxRequests
func (l *memoryLimiter) allow(ip string, maxRequests int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[ip]
	if !ok || now.Sub(ci.last) > window {
		l.clients[ip] = &clientInfo{last: now, count: 1}
		l.sweep(now, window)
		return 1 <= maxRequests
	}

	ci.count++
	return ci.count <= maxRequests
}

// sweep drops expired windows once the map grows
func (l *memoryLimiter) sweep(now time.Time, window time.Duration) {
	if len(l.clients) < 1024 {
		return
	}
	for ip, ci := range l.clients {
		if now.Sub(ci.last) > window {
			delete(l.clients, ip)
		}
	}
}

// SimpleRateLimit blocks clients that send more than maxRequests per window.
// State is local to the returned handler.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return simpleRateLimit(newMemoryLimiter(), maxRequests, window)
}

func simpleRateLimit(l *memoryLimiter, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP(), maxRequests, window) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
