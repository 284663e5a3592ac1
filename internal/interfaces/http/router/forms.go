package router

import (
	"github.com/workforce/backend/internal/infrastructure/auth"
	"github.com/workforce/backend/internal/interfaces/http/handler"
	"github.com/workforce/backend/internal/interfaces/http/middleware"
)

// FormsRoutes builds the /forms tree. Deciding a submission needs
// forms:approve. Changing a template or editing a submitted form needs forms:admin.
func FormsRoutes(templates *handler.TemplateHandler, submissions *handler.SubmissionHandler) *DomainGroup {
	admin := middleware.RequirePermission(auth.PermissionAdmin)

	forms := NewDomainGroup("forms", "/forms")
	forms.GET("/field-types", templates.FieldTypes)

	forms.Group("templates", "/templates").
		POST("", admin, templates.Create).
		GET("", templates.List).
		GET("/:id", templates.GetByID).
		PUT("/:id", admin, templates.Update).
		POST("/:id/archive", admin, templates.Archive).
		POST("/:id/activate", admin, templates.Activate).
		DELETE("/:id", admin, templates.Delete)

	forms.Group("submissions", "/submissions").
		POST("", submissions.CreateDraft).
		GET("", submissions.List).
		GET("/:id", submissions.GetByID).
		PUT("/:id/draft", submissions.SaveDraft).
		POST("/:id/submit", submissions.Submit).
		POST("/:id/approve", middleware.RequirePermission(auth.PermissionApprove), submissions.Approve).
		PUT("/:id", admin, submissions.AdminUpdate).
		DELETE("/:id", submissions.Delete).
		GET("/:id/history", submissions.History)

	return forms
}

// SystemRoutes builds the /system tree
func SystemRoutes(system *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", system.GetSystemInfo)
}

// OutboxRoutes builds the dead letter admin tree, all behind forms:admin
func OutboxRoutes(outbox *handler.OutboxHandler) *DomainGroup {
	return NewDomainGroup("form-events", "/forms/admin/events").
		Use(middleware.RequirePermission(auth.PermissionAdmin)).
		GET("/stats", outbox.Stats).
		GET("/dead", outbox.ListDead).
		POST("/requeue", outbox.RequeueAll).
		POST("/:id/requeue", outbox.Requeue)
}
