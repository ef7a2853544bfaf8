package middleware

import (
	"math"
	"strconv"
	"strings"
	"time"

	"safewatch/internal/utils"
	"safewatch/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// APIRateLimitConfig caps general API traffic per client IP. The SOS route
// has its own stricter limiter inside the alert pipeline.
type APIRateLimitConfig struct {
	PerMinute int
	SkipPaths []string
	Store     limiter.Store
}

// APIRateLimit rejects clients that exceed PerMinute requests. A nil Store
// uses process memory. Store errors let the request through.
func APIRateLimit(cfg APIRateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	store := cfg.Store
	if store == nil {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          "api_rate",
			CleanUpInterval: time.Minute,
		})
	}
	lim := limiter.New(store, limiter.Rate{Period: time.Minute, Limit: int64(cfg.PerMinute)})

	return func(c *gin.Context) {
		if cfg.PerMinute <= 0 || pathSkipped(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, err := lim.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithContext(c.Request.Context()).WithError(err).Warn("API rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			SetRetryAfter(c, time.Until(time.Unix(ctx.Reset, 0)))
			log.WithContext(c.Request.Context()).LogSecurityEvent("api_rate_limited", "low", map[string]interface{}{
				"client_ip": c.ClientIP(),
				"path":      c.Request.URL.Path,
			})
			utils.TooManyRequestsResponse(c, "Too many requests, please slow down")
			c.Abort()
			return
		}

		c.Next()
	}
}

// SetRetryAfter writes the Retry-After header in whole seconds, at least 1.
func SetRetryAfter(c *gin.Context, d time.Duration) {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
}

func pathSkipped(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
