package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

type PermissionHandler struct {
	perms *services.PermissionService
	users *services.UserService
}

func NewPermissionHandler(perms *services.PermissionService, users *services.UserService) *PermissionHandler {
	return &PermissionHandler{perms: perms, users: users}
}

// GET /api/permissions
func (h *PermissionHandler) List(c *gin.Context) {
	perms, err := h.perms.ListPermissions(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}

// GET /api/permissions/my
func (h *PermissionHandler) MyPermissions(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	perms, err := h.users.ResolveEffectivePermissions(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}
