package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/monitoring"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

// Health evaluates the readiness probes. Any failing probe yields 503 with the
// report as payload.
func Health(probes ...monitoring.Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := monitoring.Evaluate(requestContext(c), probes...)
		if !report.Healthy() {
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Success: false,
				Data:    report,
				Error: &response.ErrorInfo{
					Code:    "UNAVAILABLE",
					Message: "Service unavailable",
				},
			})
			return
		}
		response.Success(c, http.StatusOK, report)
	}
}
