package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/pkg/httpcontext"
	adminUC "github.com/fastygo/taskdesk/usecase/admin"
)

const (
	defaultAdminUserPageSize = 20
	defaultAdminTaskPageSize = 50
)

// AdminHandler serves /api/admin. Routes are expected behind the admin role gate.
type AdminHandler struct {
	baseHandler
	uc *adminUC.UseCase
}

func NewAdminHandler(uc *adminUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List users
// @Tags admin
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, limit, err := pageParams(ctx, defaultAdminUserPageSize)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	list, err := h.uc.ListUsers(stdCtx, adminUC.UserQuery{
		Role:   queryString(ctx, "role"),
		Search: queryString(ctx, "search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondPage(ctx, list.Users, list.Pagination)
}

// @Summary Get user with task stats
// @Tags admin
// @Router /api/admin/users/{id} [get]
func (h *AdminHandler) GetUser(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	details, err := h.uc.GetUser(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, details)
}

// @Summary Change a user's role
// @Tags admin
// @Router /api/admin/users/{id}/role [put]
func (h *AdminHandler) ChangeRole(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.RoleRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	change, err := h.uc.ChangeRole(stdCtx, actor.UserID, pathParam(ctx, "id"), req.Role)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondMessage(ctx, http.StatusOK, "User role updated successfully", change)
}

// @Summary Delete a user and their tasks
// @Tags admin
// @Router /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deletion, err := h.uc.DeleteUser(stdCtx, actor.UserID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondMessage(ctx, http.StatusOK, "User and associated tasks deleted successfully", deletion)
}

// @Summary List all tasks with owners
// @Tags admin
// @Router /api/admin/tasks [get]
func (h *AdminHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, limit, err := pageParams(ctx, defaultAdminTaskPageSize)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	list, err := h.uc.ListTasks(stdCtx, adminUC.TaskQuery{
		Status:   queryString(ctx, "status"),
		Priority: queryString(ctx, "priority"),
		UserID:   queryString(ctx, "userId"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondPage(ctx, list.Tasks, list.Pagination)
}

// @Summary Delete any task
// @Tags admin
// @Router /api/admin/tasks/{id} [delete]
func (h *AdminHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deletion, err := h.uc.DeleteTask(stdCtx, actor.UserID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondMessage(ctx, http.StatusOK, "Task deleted successfully", deletion)
}

// @Summary System statistics
// @Tags admin
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.SystemStats(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}
