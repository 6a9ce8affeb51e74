package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GET /api/reports/expenses
func (h *ReportHandler) Expenses(c *gin.Context) {
	report, err := h.reports.ExpenseReport(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// GET /api/reports/expenses/export
func (h *ReportHandler) ExportExpenses(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reports.WriteExpenseCSV(requestContext(c), &buf); err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("expense-report-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
