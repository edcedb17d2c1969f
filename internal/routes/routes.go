package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskdeck/internal/handlers"
	"taskdeck/internal/middleware"
)

// SetupRoutes mounts the API under /api.
func SetupRoutes(
	r *gin.Engine,
	tokens *middleware.TokenManager,
	revoker middleware.Revoker,
	authHandler *handlers.AuthHandler,
	todoHandler *handlers.TodoHandler,
	userHandler *handlers.UserHandler,
	telegramHandler *handlers.TelegramHandler,
) *gin.Engine {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// ---- public
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/telegram/webhook", telegramHandler.Webhook)

	// ---- protected
	protected := api.Group("", middleware.AuthMiddleware(tokens, revoker))

	protected.POST("/auth/logout", authHandler.Logout)

	todos := protected.Group("/todos")
	{
		todos.GET("", todoHandler.GetAll)
		todos.POST("", todoHandler.Create)
		todos.GET("/:id", todoHandler.GetByID)
		todos.PUT("/:id", todoHandler.Update)
		todos.DELETE("/:id", todoHandler.Delete)
	}

	users := protected.Group("/users")
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.GET("/profile/report", userHandler.Report)
		users.PUT("/change-password", userHandler.ChangePassword)
	}

	tg := protected.Group("/telegram")
	{
		tg.GET("/status", telegramHandler.Status)
		tg.POST("/link", telegramHandler.Link)
		tg.POST("/unlink", telegramHandler.Unlink)
	}

	return r
}
