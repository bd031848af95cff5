package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/inmemorystore"
)

// requestLogger puts logger into every request context and logs the request
// once it has been served.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), logger))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"remote_addr", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request failed.", attrs...)
		case c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics":
			logger.Debug("HTTP request served.", attrs...)
		default:
			logger.Info("HTTP request served.", attrs...)
		}
	}
}

// limiterIdleTTL is how long a client address may stay silent before its
// limiter is forgotten.
const limiterIdleTTL = 10 * time.Minute

// rateLimit allows perSecond requests per client address with the given
// burst. A non-positive perSecond disables limiting.
func rateLimit(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := newLimiterSet(perSecond, burst, limiterIdleTTL)

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP(), time.Now()) {
			ctxlog.FromContext(c.Request.Context()).Warn("Rate limit exceeded.", "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// limiterSet keeps one token bucket per client address and drops the ones
// idle for longer than ttl. Sweeps run inline, at most once per ttl.
type limiterSet struct {
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	clients   *inmemorystore.Store[string, *clientLimiter]
	lastSweep atomic.Int64
}

func newLimiterSet(perSecond float64, burst int, ttl time.Duration) *limiterSet {
	if burst <= 0 {
		burst = 1
	}
	return &limiterSet{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		ttl:     ttl,
		clients: inmemorystore.New[string, *clientLimiter](),
	}
}

func (l *limiterSet) allow(addr string, now time.Time) bool {
	l.sweep(now)
	cl, ok := l.clients.Load(addr)
	if !ok {
		cl, _ = l.clients.LoadOrStore(addr, &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)})
	}
	cl.lastSeen.Store(now.UnixNano())
	return cl.limiter.AllowN(now, 1)
}

func (l *limiterSet) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if last == 0 {
		l.lastSweep.CompareAndSwap(0, now.UnixNano())
		return
	}
	if now.UnixNano()-last < int64(l.ttl) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-l.ttl).UnixNano()
	l.clients.Range(func(addr string, cl *clientLimiter) bool {
		if cl.lastSeen.Load() < cutoff {
			l.clients.Delete(addr)
		}
		return true
	})
}

// size reports the number of tracked addresses.
func (l *limiterSet) size() int {
	return l.clients.Len()
}
