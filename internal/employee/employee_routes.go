package employee

import (
	"marketflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RoleMiddleware("superadmin"),
			handler.GetAll,
		)

		employees.GET("/options",
			middleware.RateLimitByUser(5, 20),
			handler.GetOptions,
		)

		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RoleMiddleware("superadmin"),
			handler.GetById,
		)

		employees.POST("",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RoleMiddleware("superadmin"),
			handler.Create,
		)

		employees.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RoleMiddleware("superadmin"),
			handler.Update,
		)

		employees.PUT("/:id/password",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RoleMiddleware("superadmin"),
			handler.ResetPassword,
		)

		employees.DELETE("/:id",
			middleware.RateLimitByUser(0.05, 1),
			middleware.RoleMiddleware("superadmin"),
			handler.Delete,
		)
	}
}
