package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"legalmitra-backend/logger"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

func loggingMiddleware(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("HTTP Request",
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"user_agent", c.Request.UserAgent(),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// clientLimiter hands out one token bucket per client IP. Buckets of idle
// clients expire so the map does not grow without bound.
type clientLimiter struct {
	limiters *cache.Cache
	interval time.Duration
	burst    int
}

// newClientLimiter allows limit requests per window for each client
func newClientLimiter(limit int, window time.Duration) *clientLimiter {
	idle := 2 * window
	if idle < time.Minute {
		idle = time.Minute
	}
	return &clientLimiter{
		limiters: cache.New(idle, idle),
		interval: window / time.Duration(limit),
		burst:    limit,
	}
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.limiters.SetDefault(key, lim)
		return lim
	}

	lim := rate.NewLimiter(rate.Every(l.interval), l.burst)
	// Add fails if another request created the bucket first
	if err := l.limiters.Add(key, lim, cache.DefaultExpiration); err != nil {
		if v, ok := l.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func rateLimitMiddleware(l *clientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := l.get(c.ClientIP())
		if lim.Allow() {
			c.Next()
			return
		}

		// whole seconds until one token is available again
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(l.interval.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RATE_LIMITED",
				"message": "Too many requests, please slow down",
			},
		})
	}
}
