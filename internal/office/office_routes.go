package office

import (
	"marketflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	cfg := r.Group("/office-config")
	cfg.Use(middleware.AuthMiddleware())
	{
		cfg.GET("", h.Get)
		cfg.PUT("", middleware.RoleMiddleware("superadmin"), h.Update)
	}
}
