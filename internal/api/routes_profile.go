package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/handlers"
)

func registerProfileRoutes(api *gin.RouterGroup, handler *handlers.ProfileHandler) {
	profile := api.Group("/profile")
	{
		profile.GET("", handler.Get)
		profile.PATCH("", handler.Update)
		profile.POST("/password", handler.ChangePassword)
	}
}
