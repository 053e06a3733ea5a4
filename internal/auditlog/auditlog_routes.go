package auditlog

import (
	"marketflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	audit := r.Group("/audit")
	audit.Use(middleware.AuthMiddleware())
	{
		audit.GET("/attendance", middleware.RoleMiddleware("superadmin"), h.GetAttendanceLog)
		audit.GET("/content", h.GetContentLog)
		audit.POST("/content", h.AppendContentEntry)
	}
}
