package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/metrics"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

// PermissionChecker decides whether a user holds a named permission.
type PermissionChecker interface {
	Check(ctx context.Context, userID, permission string) (bool, error)
}

// RequirePermission aborts with 403 unless the authenticated user holds permission.
// A nil checker only requires authentication.
func RequirePermission(checker PermissionChecker, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserIDKey)
		if userID == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if checker == nil {
			c.Next()
			return
		}

		allowed, err := checker.Check(c.Request.Context(), userID, permission)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues(permission, "error").Inc()
			response.Error(c, errors.ErrInternalServer.WithInternal(err))
			c.Abort()
			return
		}
		if !allowed {
			metrics.PermissionChecks.WithLabelValues(permission, "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		metrics.PermissionChecks.WithLabelValues(permission, "allowed").Inc()
		c.Next()
	}
}
