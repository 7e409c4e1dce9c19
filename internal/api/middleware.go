package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/metrics"
	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the gin context key holding the request id.
const requestIDKey = "request_id"

// requestIDMiddleware reuses an upstream X-Request-ID or generates one.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware provides request logging and request metrics. Successful
// GETs are logged at DEBUG since raters poll the page continuously.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, endpoint, strconv.Itoa(status), latency)

		line := "%s - [%s] \"%s %s %s %d %s \"%s\" %s\""
		args := []any{
			c.ClientIP(),
			c.GetString(requestIDKey),
			c.Request.Method,
			c.Request.URL.Path,
			c.Request.Proto,
			status,
			latency,
			c.Request.UserAgent(),
			c.Errors.ByType(gin.ErrorTypePrivate).String(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logging.Error(line, args...)
		case status >= http.StatusBadRequest:
			logging.Warn(line, args...)
		case c.Request.Method == http.MethodGet:
			logging.Debug(line, args...)
		default:
			logging.Info(line, args...)
		}
	}
}

// corsMiddleware provides CORS headers
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Content-Type, Range, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Range, X-Request-ID")
		c.Header("Access-Control-Max-Age", "300")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// rateLimitMiddleware rejects clients exceeding their token bucket with 429.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			data, _ := protocol.Marshal(protocol.ErrorResponse{Error: "rate limit exceeded"})
			c.Header("Retry-After", "1")
			c.Data(http.StatusTooManyRequests, "application/json; charset=utf-8", data)
			c.Abort()
			return
		}
		c.Next()
	}
}

// limiterIdleTTL is how long an idle client's bucket is kept.
const limiterIdleTTL = 10 * time.Minute

// clientLimiter keeps one token bucket per client IP. Idle buckets are
// dropped lazily during Allow.
type clientLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		limiters:  make(map[string]*limiterEntry),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether the client may make another request now.
func (l *clientLimiter) Allow(client string) bool {
	l.mu.Lock()
	now := l.now()

	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for ip, entry := range l.limiters {
			if now.Sub(entry.lastAccess) > limiterIdleTTL {
				delete(l.limiters, ip)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[client]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[client] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// size returns the number of tracked clients.
func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
