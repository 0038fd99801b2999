package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orthodoxrecords/site/internal/infrastructure/ratelimit"
	"github.com/orthodoxrecords/site/pkg/response"
)

// RateLimit enforces per-IP and per-token throttles. Limiter failures let the
// request through. Requests whose path is in exempt are never counted.
func RateLimit(ipLimiter, tokenLimiter ratelimit.Limiter, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		if ipLimiter != nil {
			decision, err := ipLimiter.Allow(ctx, "ip:"+c.ClientIP())
			if err == nil {
				setHeaders(c, decision)
				if !decision.Allowed {
					response.TooManyRequests(c, decision.Reset)
					c.Abort()
					return
				}
			}
		}
		if token := ExtractToken(c); tokenLimiter != nil && token != "" {
			decision, err := tokenLimiter.Allow(ctx, ratelimit.TokenKey(token))
			if err == nil {
				setHeaders(c, decision)
				if !decision.Allowed {
					response.TooManyRequests(c, decision.Reset)
					c.Abort()
					return
				}
			}
		}
		c.Next()
	}
}

func setHeaders(c *gin.Context, d ratelimit.Decision) {
	c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
	if !d.Allowed {
		reset := time.Until(d.Reset)
		if reset < 0 {
			reset = 0
		}
		c.Writer.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())))
	}
}
