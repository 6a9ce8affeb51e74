package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/handlers"
	"github.com/Mathew1327/Construction-tracker/internal/middleware"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
)

func registerAuditRoutes(api *gin.RouterGroup, handler *handlers.AuditHandler, checker middleware.PermissionChecker) {
	api.GET("/audit", middleware.RequirePermission(checker, permissions.ManageRoles), handler.List)
}
