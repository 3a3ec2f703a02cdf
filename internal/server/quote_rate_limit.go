package server

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/marketplace/internal/observability/logger"
	"go.uber.org/zap"
)

// QuoteRateLimit throttles quotes per client IP. Limiter failures fail open:
// pricing is read-only and checkout must keep working when Redis is down.
func (s *Server) QuoteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.quoteLimiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)

		res, err := s.quoteLimiter.Allow(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("quote rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		if res.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
		}
		if !res.Allowed {
			denyQuoteRateLimit(c, endpoint, res.RetryAfter, s)
			return
		}
		c.Next()
	}
}

func denyQuoteRateLimit(c *gin.Context, endpoint string, retryAfter time.Duration, s *Server) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("quote rate limit exceeded",
		zap.String("endpoint", endpoint),
		zap.Duration("retry_after", retryAfter),
	)
	s.obsMetrics.RecordRateLimited(ctx, endpoint)

	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
	AbortWithError(c, ErrRateLimited)
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
