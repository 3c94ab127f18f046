package router

import (
	"github.com/cortecaja/backend/internal/domain/identity"
	"github.com/cortecaja/backend/internal/interfaces/http/handler"
	"github.com/cortecaja/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the endpoint implementations mounted under the API prefix
type Handlers struct {
	Auth           *handler.AuthHandler
	Session        *handler.SessionHandler
	Reconciliation *handler.ReconciliationHandler
	User           *handler.UserHandler
	Notification   *handler.NotificationHandler
	Outbox         *handler.OutboxHandler
}

// Guards are the middleware protecting the API
type Guards struct {
	// Auth validates the bearer token; required on everything but login and refresh
	Auth gin.HandlerFunc
	// LoginLimit throttles credential endpoints; optional
	LoginLimit gin.HandlerFunc
}

var (
	operators = []identity.Role{identity.RoleCashier, identity.RoleManager, identity.RoleAdmin}
	managers  = []identity.Role{identity.RoleManager, identity.RoleAdmin}
	admins    = []identity.Role{identity.RoleAdmin}
)

// APIGroups builds the domain groups of the cash-session API
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	auth := NewDomainGroup("auth", "/auth")
	public := auth.Group("public", "")
	if g.LoginLimit != nil {
		public.Use(g.LoginLimit)
	}
	public.POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh)
	auth.Group("session", "").Use(g.Auth).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	operate := middleware.RequireRoles(operators...)
	manage := middleware.RequireRoles(managers...)

	sessions := NewDomainGroup("sessions", "/sessions").Use(g.Auth)
	sessions.POST("", operate, h.Session.Open).
		POST("/closed", operate, h.Session.CreateClosed).
		GET("", h.Session.List).
		GET("/:id", h.Session.Get).
		POST("/:id/close", operate, h.Session.Close).
		DELETE("/:id", manage, h.Session.Delete).
		POST("/:id/movements", operate, h.Session.RecordMovement).
		GET("/:id/movements", h.Session.ListMovements)

	reconciliations := NewDomainGroup("reconciliations", "/reconciliations").Use(g.Auth, manage)
	reconciliations.POST("", h.Reconciliation.Generate).
		GET("", h.Reconciliation.List).
		GET("/:id", h.Reconciliation.Get)

	users := NewDomainGroup("users", "/users").Use(g.Auth, middleware.RequireRoles(admins...))
	users.GET("", h.User.List).
		POST("", h.User.Create).
		DELETE("/:id", h.User.Delete)

	notifications := NewDomainGroup("notifications", "/notifications").Use(g.Auth)
	notifications.GET("", h.Notification.List)

	outbox := NewDomainGroup("outbox", "/system/outbox").Use(g.Auth, middleware.RequireRoles(admins...))
	outbox.GET("/dead", h.Outbox.GetDeadLetterEntries).
		POST("/dead/retry-all", h.Outbox.RetryAllDeadEntries).
		GET("/stats", h.Outbox.GetStats).
		GET("/:id", h.Outbox.GetEntry).
		POST("/:id/retry", h.Outbox.RetryDeadEntry)

	return []*DomainGroup{auth, sessions, reconciliations, users, notifications, outbox}
}

// RegisterHealth mounts the probes outside the versioned prefix
func RegisterHealth(engine *gin.Engine, h *handler.HealthHandler) {
	engine.GET("/health", h.Ready)
	engine.GET("/health/live", h.Live)
	engine.GET("/health/ready", h.Ready)
}
