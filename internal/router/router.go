package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskdesk/api/handler"
	"github.com/fastygo/taskdesk/internal/middleware"
)

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	Admin       *apiHandler.AdminHandler
	Preferences *apiHandler.PreferencesHandler
	Task        *apiHandler.TaskHandler
	Health      *apiHandler.HealthHandler
}

// Gates are the middlewares applied per route group. Nil rate limits are skipped.
type Gates struct {
	Authenticated middleware.Middleware
	Admin         middleware.Middleware
	AuthLimit     middleware.Middleware
	AdminLimit    middleware.Middleware
}

func New(handlers Handlers, gates Gates) *router.Router {
	r := router.New()

	public := func(h fasthttp.RequestHandler, mws ...middleware.Middleware) fasthttp.RequestHandler {
		return middleware.Chain(h, compact(mws)...)
	}
	protected := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return middleware.Chain(h, compact([]middleware.Middleware{gates.Authenticated})...)
	}
	admin := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return middleware.Chain(h, compact([]middleware.Middleware{gates.AdminLimit, gates.Authenticated, gates.Admin})...)
	}

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/auth/register", public(handlers.Auth.Register, gates.AuthLimit))
	r.POST("/api/auth/login", public(handlers.Auth.Login, gates.AuthLimit))
	r.POST("/api/auth/logout", protected(handlers.Auth.Logout))
	r.POST("/api/auth/refresh", protected(handlers.Auth.Refresh))

	r.GET("/api/tasks", protected(handlers.Task.List))
	r.POST("/api/tasks", protected(handlers.Task.Create))
	r.GET("/api/tasks/{id}", protected(handlers.Task.Get))
	r.PUT("/api/tasks/{id}", protected(handlers.Task.Update))
	r.DELETE("/api/tasks/{id}", protected(handlers.Task.Delete))
	r.GET("/api/tasks/{id}/comments", protected(handlers.Task.ListComments))
	r.POST("/api/tasks/{id}/comments", protected(handlers.Task.AddComment))

	r.GET("/api/preferences", protected(handlers.Preferences.Get))
	r.PUT("/api/preferences", protected(handlers.Preferences.Update))
	r.POST("/api/preferences/reset", protected(handlers.Preferences.Reset))

	// Admin routes
	r.GET("/api/admin/users", admin(handlers.Admin.ListUsers))
	r.GET("/api/admin/users/{id}", admin(handlers.Admin.GetUser))
	r.PUT("/api/admin/users/{id}/role", admin(handlers.Admin.ChangeRole))
	r.DELETE("/api/admin/users/{id}", admin(handlers.Admin.DeleteUser))
	r.GET("/api/admin/tasks", admin(handlers.Admin.ListTasks))
	r.DELETE("/api/admin/tasks/{id}", admin(handlers.Admin.DeleteTask))
	r.GET("/api/admin/stats", admin(handlers.Admin.Stats))

	return r
}

func compact(mws []middleware.Middleware) []middleware.Middleware {
	out := mws[:0:0]
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
