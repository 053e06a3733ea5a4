package leave

import (
	"marketflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Idempotency(rdb),
			handler.Submit,
		)
		leaves.GET("/me", middleware.RateLimitByUser(3, 10), handler.GetMine)
		leaves.POST("/:id/cancel", middleware.RateLimitByUser(1, 3), handler.Cancel)

		leaves.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RoleMiddleware("superadmin"),
			handler.GetAll,
		)
		leaves.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RoleMiddleware("superadmin"),
			handler.GetByID,
		)
		leaves.POST("/:id/approve",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("superadmin"),
			middleware.Idempotency(rdb),
			handler.Approve,
		)
		leaves.POST("/:id/reject",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("superadmin"),
			middleware.Idempotency(rdb),
			handler.Reject,
		)
		leaves.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RoleMiddleware("superadmin"),
			handler.AdminEdit,
		)
	}
}
