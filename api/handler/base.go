package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/pkg/httpcontext"
	"github.com/fastygo/taskdesk/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data))
}

func (h baseHandler) respondPage(ctx *fasthttp.RequestCtx, data interface{}, pagination domain.Pagination) {
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(data, pagination))
}

func (h baseHandler) respondMessage(ctx *fasthttp.RequestCtx, status int, message string, data interface{}) {
	h.respondJSON(ctx, status, transport.NewMessage(message, data))
}

// respondError maps err to a status. Unexpected faults are logged and reported with a generic message.
func (h baseHandler) respondError(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log := logger.WithRequestID(stdCtx, h.logger)
		if actorID := httpcontext.ActorID(stdCtx); actorID != "" {
			log = log.With(zap.String("actor_id", actorID))
		}
		log.Error("request failed",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
		message = "internal server error"
	} else if dErr, ok := asDomainError(err); ok {
		message = dErr.Message
	}
	h.respondJSON(ctx, status, transport.NewError(code, message))
}

// actor returns the authenticated caller or writes a 401.
func (h baseHandler) actor(ctx *fasthttp.RequestCtx) (httpcontext.Actor, bool) {
	actor, ok := httpcontext.ActorFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "authentication required"))
	}
	return actor, ok
}

// decode reads and validates the JSON body into dst or writes a 400.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := transport.Decode(ctx.PostBody(), dst); err != nil {
		status, code := mapError(err)
		message := err.Error()
		if dErr, ok := asDomainError(err); ok {
			message = dErr.Message
		}
		h.respondJSON(ctx, status, transport.NewError(code, message))
		return false
	}
	return true
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	value, _ := ctx.UserValue(name).(string)
	return value
}

func queryString(ctx *fasthttp.RequestCtx, name string) string {
	return string(ctx.QueryArgs().Peek(name))
}

// queryInt returns fallback when the parameter is absent. Non-numeric values are rejected as an invalid page.
func queryInt(ctx *fasthttp.RequestCtx, name string, fallback int) (int, error) {
	raw := ctx.QueryArgs().Peek(name)
	if len(raw) == 0 {
		return fallback, nil
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, domain.ErrInvalidPage
	}
	return v, nil
}

func pageParams(ctx *fasthttp.RequestCtx, defaultLimit int) (int, int, error) {
	page, err := queryInt(ctx, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(ctx, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeInvalidOperation):
		return http.StatusBadRequest, string(domain.ErrCodeInvalidOperation)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

func asDomainError(err error) (*domain.Error, bool) {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return dErr, true
	}
	return nil, false
}
