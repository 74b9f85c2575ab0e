package middleware

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/infrastructure/ratelimit"
)

// RateLimit limits requests per client IP. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, message string, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			key := clientIP(ctx)
			decision, err := limiter.Allow(context.Background(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				next(ctx)
				return
			}

			ctx.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			ctx.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				ctx.Response.Header.Set("Retry-After", strconv.Itoa(seconds))
				deny(ctx, fasthttp.StatusTooManyRequests, domain.ErrCodeRateLimited, message)
				return
			}
			next(ctx)
		}
	}
}

func clientIP(ctx *fasthttp.RequestCtx) string {
	if forwarded := string(ctx.Request.Header.Peek("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return ctx.RemoteIP().String()
}
