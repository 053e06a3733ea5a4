package device

import (
	"marketflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	dev := r.Group("/attendance/device")
	dev.Use(middleware.AuthMiddleware())
	{
		dev.POST("/position", middleware.RateLimitByUser(2, 5), handler.ReportPosition)
		dev.POST("/frame", middleware.RateLimitByUser(2, 5), handler.ReportFrame)
	}
}
