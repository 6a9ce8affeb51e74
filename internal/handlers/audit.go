package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

type AuditHandler struct {
	svc *services.AuditService
}

func NewAuditHandler(svc *services.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 50)
	if page < 1 {
		page = 1
	}
	if per < 1 || per > 200 {
		per = 50
	}

	filters := services.AuditFilters{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Result:   c.Query("result"),
		Resource: c.Query("resource"),
	}
	var err error
	if filters.Since, err = parseTimeQuery(c, "since"); err != nil {
		response.Error(c, err)
		return
	}
	if filters.Until, err = parseTimeQuery(c, "until"); err != nil {
		response.Error(c, err)
		return
	}

	logs, total, err := h.svc.List(requestContext(c), services.AuditListOptions{Page: page, PageSize: per, Filters: filters})
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := int((total + int64(per) - 1) / int64(per))
	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{
		Page:       page,
		PerPage:    per,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.NewValidation(key + " must be an RFC3339 timestamp")
	}
	return &t, nil
}
