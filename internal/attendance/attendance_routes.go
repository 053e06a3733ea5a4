package attendance

import (
	"marketflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	att := r.Group("/attendance")
	att.Use(middleware.AuthMiddleware())
	{
		att.POST("/check-in",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Idempotency(rdb),
			handler.CheckIn,
		)
		att.POST("/check-out",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Idempotency(rdb),
			handler.CheckOut,
		)
		att.POST("/manual",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("superadmin"),
			handler.SaveManual,
		)

		att.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RoleMiddleware("superadmin"),
			handler.GetAll,
		)
		att.GET("/me", middleware.RateLimitByUser(3, 10), handler.GetMine)
		att.GET("/summary/today",
			middleware.RateLimitByUser(3, 10),
			middleware.RoleMiddleware("superadmin"),
			handler.TodaySummary,
		)

		session := att.Group("/session")
		{
			session.POST("/start", middleware.RateLimitByUser(1, 3), handler.StartSession)
			session.POST("/capture", handler.CaptureSession)
			session.POST("/discard", handler.DiscardSession)
			session.POST("/submit", middleware.Idempotency(rdb), handler.SubmitSession)
			session.POST("/cancel", handler.CancelSession)
		}
	}
}
