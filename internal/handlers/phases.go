package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

type PhaseHandler struct {
	phases *services.PhaseService
}

func NewPhaseHandler(phases *services.PhaseService) *PhaseHandler {
	return &PhaseHandler{phases: phases}
}

type phaseRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	Name      string `json:"name" validate:"required,notblank,max=255"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

func (r phaseRequest) input() services.PhaseInput {
	return services.PhaseInput{
		ProjectID: r.ProjectID,
		Name:      r.Name,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Status:    r.Status,
	}
}

// GET /api/phases
func (h *PhaseHandler) List(c *gin.Context) {
	phases, err := h.phases.List(requestContext(c), c.Query("project_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, phases)
}

// GET /api/phases/:id
func (h *PhaseHandler) Get(c *gin.Context) {
	phase, err := h.phases.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, phase)
}

// POST /api/phases
func (h *PhaseHandler) Create(c *gin.Context) {
	var req phaseRequest
	if !bindAndValidate(c, &req) {
		return
	}

	phase, err := h.phases.Create(actorContext(c), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, phase)
}

// PUT /api/phases/:id
func (h *PhaseHandler) Update(c *gin.Context) {
	var req phaseRequest
	if !bindAndValidate(c, &req) {
		return
	}

	phase, err := h.phases.Update(actorContext(c), c.Param("id"), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, phase)
}

// DELETE /api/phases/:id
func (h *PhaseHandler) Delete(c *gin.Context) {
	if err := h.phases.Delete(actorContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
