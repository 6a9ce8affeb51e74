package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/middleware"
	"github.com/Mathew1327/Construction-tracker/internal/services"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

func currentUserID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(middleware.CtxUserIDKey)
}

// actorContext attributes audit entries written during the request to the
// authenticated user.
func actorContext(c *gin.Context) context.Context {
	ctx := requestContext(c)
	if userID := currentUserID(c); userID != "" {
		return services.WithActor(ctx, userID)
	}
	return ctx
}
