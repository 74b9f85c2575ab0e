package middleware

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/pkg/httpcontext"
	authUC "github.com/fastygo/taskdesk/usecase/auth"
)

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Authenticator resolves a bearer token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authUC.Principal, error)
}

// UserLookup loads the caller's current record for role checks.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// JWTAuth rejects requests without a valid token for a live session and stores the caller on the request.
func JWTAuth(auth Authenticator, adapter *httpcontext.Adapter, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				deny(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "authentication required")
				return
			}

			stdCtx, cancel := attach(adapter, ctx)
			principal, err := auth.Authenticate(stdCtx, tokenString)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Debug("rejected token", zap.Error(err))
					deny(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, err.Error())
					return
				}
				logger.Error("token verification failed", zap.Error(err))
				deny(ctx, fasthttp.StatusInternalServerError, domain.ErrCodeInternal, "internal server error")
				return
			}

			httpcontext.SetActor(ctx, httpcontext.Actor{UserID: principal.UserID, SessionID: principal.SessionID})
			next(ctx)
		}
	}
}

// RequireRole admits callers whose stored role is one of roles. It must run after JWTAuth.
func RequireRole(users UserLookup, adapter *httpcontext.Adapter, logger *zap.Logger, roles ...domain.Role) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			actor, ok := httpcontext.ActorFrom(ctx)
			if !ok {
				deny(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "authentication required")
				return
			}

			stdCtx, cancel := attach(adapter, ctx)
			user, err := users.GetByID(stdCtx, actor.UserID)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeNotFound) {
					deny(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "account no longer exists")
					return
				}
				logger.Error("role lookup failed", zap.String("user_id", actor.UserID), zap.Error(err))
				deny(ctx, fasthttp.StatusInternalServerError, domain.ErrCodeInternal, "internal server error")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next(ctx)
					return
				}
			}
			logger.Warn("role gate denied request",
				zap.String("user_id", user.ID),
				zap.String("role", string(user.Role)),
				zap.ByteString("path", ctx.Path()))
			deny(ctx, fasthttp.StatusForbidden, domain.ErrCodeForbidden, domain.ErrForbidden.Message)
		}
	}
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func attach(adapter *httpcontext.Adapter, ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if adapter != nil {
		return adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func deny(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	body, _ := json.Marshal(transport.NewError(string(code), message))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return header
}
