package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/handlers"
	"github.com/Mathew1327/Construction-tracker/internal/middleware"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
)

type projectRouteDeps struct {
	Projects  *handlers.ProjectHandler
	Phases    *handlers.PhaseHandler
	Documents *handlers.DocumentHandler
	Dashboard *handlers.DashboardHandler
}

func registerProjectRoutes(api *gin.RouterGroup, deps projectRouteDeps, checker middleware.PermissionChecker) {
	view := middleware.RequirePermission(checker, permissions.ViewProjectStatus)

	projects := api.Group("/projects")
	{
		projects.GET("", view, deps.Projects.List)
		projects.POST("", middleware.RequirePermission(checker, permissions.AddProject), deps.Projects.Create)
		projects.GET("/:id", view, deps.Projects.Get)
		projects.PUT("/:id", middleware.RequirePermission(checker, permissions.EditProject), deps.Projects.Update)
	}

	phases := api.Group("/phases")
	{
		phases.GET("", view, deps.Phases.List)
		phases.POST("", middleware.RequirePermission(checker, permissions.EditProject), deps.Phases.Create)
		phases.GET("/:id", view, deps.Phases.Get)
		phases.PUT("/:id", middleware.RequirePermission(checker, permissions.UpdateProgress), deps.Phases.Update)
		phases.DELETE("/:id", middleware.RequirePermission(checker, permissions.DeleteProject), deps.Phases.Delete)
	}

	documents := api.Group("/documents")
	{
		documents.GET("", view, deps.Documents.List)
		documents.GET("/categories", view, deps.Documents.Categories)
		documents.POST("", middleware.RequirePermission(checker, permissions.UploadSiteUpdates), deps.Documents.Upload)
		documents.GET("/:id", view, deps.Documents.Get)
		documents.GET("/:id/download", view, deps.Documents.Download)
		documents.PATCH("/:id/status", middleware.RequirePermission(checker, permissions.EditProject), deps.Documents.SetStatus)
	}

	dashboard := api.Group("/dashboard")
	dashboard.Use(view)
	{
		dashboard.GET("/stats", deps.Dashboard.Stats)
		dashboard.GET("/activities", deps.Dashboard.Activities)
	}
}
