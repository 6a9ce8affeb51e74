package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/handlers"
	"github.com/Mathew1327/Construction-tracker/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, db *gorm.DB, deps Dependencies) {
	if !deps.Config.Monitoring.Health.Enabled {
		return
	}

	probes := []monitoring.Probe{monitoring.DatabaseProbe(db)}
	if deps.Cache != nil {
		probes = append(probes, monitoring.CacheProbe(deps.Cache))
	}

	health := handlers.Health(probes...)
	r.GET("/health", health)
	r.GET("/api/health", health)
}
