package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/infrastructure/monitor"
	"github.com/fastygo/taskdesk/pkg/httpcontext"
)

// HealthReporter exposes the latest dependency status.
type HealthReporter interface {
	GetStatus() monitor.Status
	IsOnline() bool
}

type HealthHandler struct {
	baseHandler
	monitor HealthReporter
}

func NewHealthHandler(mon HealthReporter, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"lastCheck":  status.LastCheck,
		"services":   status.Components,
		"outboxSize": status.OutboxSize,
	}

	if h.monitor.IsOnline() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.Envelope{
		Success: false,
		Code:    string(domain.ErrCodeInternal),
		Error:   "dependencies unhealthy",
		Data:    payload,
	})
}
