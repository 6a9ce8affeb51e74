package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

// RoleHandler exposes role management and per-role permission assignment.
type RoleHandler struct {
	roles *services.RoleService
	perms *services.PermissionService
}

func NewRoleHandler(roles *services.RoleService, perms *services.PermissionService) *RoleHandler {
	return &RoleHandler{roles: roles, perms: perms}
}

type createRoleRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=128"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type updateRoleRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=128"`
	Description *string `json:"description"`
}

type deactivateRoleRequest struct {
	Fallback         string `json:"fallback" validate:"omitempty,oneof=unassign reassign"`
	ReassignToRoleID string `json:"reassign_to_role_id"`
}

type rolePermissionRequest struct {
	Permission string `json:"permission" validate:"required,notblank"`
}

// GET /api/roles
func (h *RoleHandler) ListActive(c *gin.Context) {
	roles, err := h.roles.ListActiveRoles(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GET /api/roles/all
func (h *RoleHandler) ListAll(c *gin.Context) {
	roles, err := h.roles.ListRoles(requestContext(c), services.ListRolesOptions{
		IncludeInactive: true,
		OrderBy:         c.Query("order"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GET /api/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roles.GetRole(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req createRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.roles.CreateRole(actorContext(c), services.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// PATCH /api/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	var req updateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := actorContext(c)
	current, err := h.roles.GetRole(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	input := services.UpdateRoleInput{Name: current.Name, Description: current.Description}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Description != nil {
		input.Description = *req.Description
	}

	role, err := h.roles.UpdateRole(ctx, current.ID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/roles/:id/deactivate
func (h *RoleHandler) Deactivate(c *gin.Context) {
	var req deactivateRoleRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}

	if err := h.roles.DeactivateRole(actorContext(c), c.Param("id"), services.DeactivateRoleInput{
		Fallback:         services.RoleFallback(req.Fallback),
		ReassignToRoleID: req.ReassignToRoleID,
	}); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}

// GET /api/roles/:id/permissions
func (h *RoleHandler) Permissions(c *gin.Context) {
	names, err := h.perms.EffectivePermissions(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, names)
}

// POST /api/roles/:id/permissions
func (h *RoleHandler) AssignPermission(c *gin.Context) {
	var req rolePermissionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	h.changePermission(c, h.perms.AssignPermission, req.Permission)
}

// DELETE /api/roles/:id/permissions/:name
func (h *RoleHandler) RemovePermission(c *gin.Context) {
	h.changePermission(c, h.perms.RemovePermission, c.Param("name"))
}

func (h *RoleHandler) changePermission(c *gin.Context, change func(context.Context, string, string) error, name string) {
	roleID := c.Param("id")
	if err := change(actorContext(c), roleID, strings.TrimSpace(name)); err != nil {
		response.Error(c, err)
		return
	}

	names, err := h.perms.EffectivePermissions(requestContext(c), roleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"role_id": roleID, "permissions": names})
}
