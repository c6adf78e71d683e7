package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/workhub/internal/observability/logger"
	"go.uber.org/zap"
)

const rateLimitReasonPrincipalRate = "principal-rate"

// PricingRateLimit throttles checkout price and coupon lookups per caller so
// coupon codes cannot be enumerated.
func (s *Server) PricingRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.billingLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := c.ClientIP()
		if actor, ok := actorFromContext(c); ok {
			key = actor.ID.String()
		}

		result, err := s.billingLimiter.AllowPricing(ctx, key)
		if err != nil {
			logger.FromContext(ctx).Warn("pricing rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if result.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		if !result.Allowed {
			endpoint := normalizeRateLimitEndpoint(c)
			logger.FromContext(ctx).Warn("pricing rate limit exceeded",
				zap.String("reason", rateLimitReasonPrincipalRate),
				zap.String("endpoint", endpoint),
			)
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonPrincipalRate)

			retry := int(result.RetryAfter.Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.Header("X-Rate-Limited-Reason", rateLimitReasonPrincipalRate)
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
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
