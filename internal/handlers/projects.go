package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type projectRequest struct {
	Name      string  `json:"name" validate:"required,notblank,max=255"`
	Type      string  `json:"type" validate:"required"`
	Location  string  `json:"location" validate:"max=255"`
	ManagerID *string `json:"manager_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

func (r projectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Name:      r.Name,
		Type:      r.Type,
		Location:  r.Location,
		ManagerID: r.ManagerID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(requestContext(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, projects)
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, project)
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Create(actorContext(c), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, project)
}

// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req projectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Update(actorContext(c), c.Param("id"), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, project)
}
