package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/handlers"
	"github.com/Mathew1327/Construction-tracker/internal/middleware"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
)

func registerRoleRoutes(api *gin.RouterGroup, handler *handlers.RoleHandler, checker middleware.PermissionChecker) {
	manage := middleware.RequirePermission(checker, permissions.ManageRoles)

	roles := api.Group("/roles")
	{
		// Active roles feed the user assignment form.
		roles.GET("", middleware.RequirePermission(checker, permissions.ManageUsers), handler.ListActive)
		roles.GET("/all", manage, handler.ListAll)
		roles.POST("", manage, handler.Create)
		roles.GET("/:id", manage, handler.Get)
		roles.PATCH("/:id", manage, handler.Update)
		roles.POST("/:id/deactivate", manage, handler.Deactivate)
		roles.GET("/:id/permissions", manage, handler.Permissions)
		roles.POST("/:id/permissions", manage, handler.AssignPermission)
		roles.DELETE("/:id/permissions/:name", manage, handler.RemovePermission)
	}
}

func registerPermissionRoutes(api *gin.RouterGroup, handler *handlers.PermissionHandler, checker middleware.PermissionChecker) {
	perms := api.Group("/permissions")
	{
		perms.GET("", middleware.RequirePermission(checker, permissions.ManageRoles), handler.List)
		perms.GET("/my", handler.MyPermissions)
	}
}
