package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	FullName  string  `json:"full_name" validate:"required,notblank,max=255"`
	Email     string  `json:"email" validate:"required,email"`
	RoleID    string  `json:"role_id" validate:"required"`
	ProjectID *string `json:"project_id"`
}

type updateUserRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,notblank,max=255"`
	Email     *string `json:"email" validate:"omitempty,email"`
	RoleID    *string `json:"role_id"`
	ProjectID *string `json:"project_id"`
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.ListUsers(requestContext(c), services.ListUsersOptions{
		RoleName:        strings.TrimSpace(c.Query("role")),
		IncludeInactive: c.Query("include_inactive") == "true",
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{Total: len(users)})
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.GetView(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	created, err := h.service.CreateUser(actorContext(c), services.CreateUserInput{
		FullName:  req.FullName,
		Email:     req.Email,
		RoleID:    req.RoleID,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	id := c.Param("id")
	if _, err := h.service.UpdateUser(actorContext(c), id, services.UpdateUserInput{
		FullName:  req.FullName,
		Email:     req.Email,
		RoleID:    req.RoleID,
		ProjectID: req.ProjectID,
	}); err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.service.GetView(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/users/:id/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.service.DeactivateUser(actorContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}
