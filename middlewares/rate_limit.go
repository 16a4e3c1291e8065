package middlewares

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter hands out one token bucket per client IP. A bucket holds limit
// tokens and refills fully over window.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

func newIPLimiter(window time.Duration, limit int) *ipLimiter {
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idle:     window,
		now:      time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors idle for longer than a full window; their buckets
// would be full again anyway.
func (l *ipLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
}

// RateLimit allows limit requests per client IP over window.
func RateLimit(window time.Duration, limit int) gin.HandlerFunc {
	l := newIPLimiter(window, limit)
	var calls atomic.Uint64

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests from this IP, please try again later.",
			})
			return
		}

		if calls.Add(1)%1000 == 0 {
			l.sweep()
		}
		c.Next()
	}
}
