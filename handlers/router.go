package handlers

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the repair API under /api/v1
func NewRouter(h *RepairHandler, allowOrigins []string) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	if len(allowOrigins) == 0 || slices.Contains(allowOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowOrigins
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	config.ExposeHeaders = []string{"Content-Disposition", "X-Fixwav-Status", "X-Fixwav-Layout", "X-Fixwav-Riff-Length", "X-Fixwav-Data-Length", "X-Fixwav-Frames"}
	router.Use(cors.New(config))

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/inspect", h.Inspect)
		api.POST("/repair", h.Repair)
	}

	return router
}
