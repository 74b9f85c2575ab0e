package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/pkg/httpcontext"
	preferencesUC "github.com/fastygo/taskdesk/usecase/preferences"
)

type PreferencesHandler struct {
	baseHandler
	uc *preferencesUC.UseCase
}

func NewPreferencesHandler(uc *preferencesUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get preferences
// @Tags preferences
// @Router /api/preferences [get]
func (h *PreferencesHandler) Get(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	prefs, err := h.uc.Get(stdCtx, actor.UserID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, prefs)
}

// @Summary Update preferences
// @Tags preferences
// @Router /api/preferences [put]
func (h *PreferencesHandler) Update(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.PreferencesRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	prefs, err := h.uc.Update(stdCtx, actor.UserID, req.Patch())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondMessage(ctx, http.StatusOK, "Preferences updated successfully", prefs)
}

// @Summary Reset preferences to defaults
// @Tags preferences
// @Router /api/preferences/reset [post]
func (h *PreferencesHandler) Reset(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	prefs, err := h.uc.Reset(stdCtx, actor.UserID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondMessage(ctx, http.StatusOK, "Preferences reset to defaults", prefs)
}
