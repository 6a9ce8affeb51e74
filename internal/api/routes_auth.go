package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/handlers"
)

func registerPublicAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.Refresh)
	}
}

func registerAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler) {
	api.GET("/auth/me", handler.Me)
	api.POST("/auth/logout", handler.Logout)
}
