package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IdleTTL is how long a client's limiter survives without requests
const IdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter stores rate limiters per IP address. Limiters idle for longer
// than the ttl are evicted, so the map holds at most the clients seen in
// the last ttl.
type RateLimiter struct {
	limiters  map[string]*clientLimiter
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows perSecond requests per client with bursts of burst
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*clientLimiter),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		ttl:       IdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// getLimiter returns the rate limiter for the given IP, creating one if needed
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.ttl {
		rl.sweep(now)
	}

	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops limiters idle for at least ttl; callers hold mu
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) >= rl.ttl {
			delete(rl.limiters, ip)
		}
	}
	rl.lastSweep = now
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Middleware rejects clients that exceed their limit with 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = c.RemoteIP()
		}

		if !rl.getLimiter(ip).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
