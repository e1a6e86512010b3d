package routes

import (
	"github.com/gin-gonic/gin"

	"bloghive/internal/handlers"
	"bloghive/internal/middleware"
	"bloghive/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	tokens services.TokenService,
	accounts middleware.AccountLookup,
	authHandler *handlers.AuthHandler,
	blogHandler *handlers.BlogHandler,
	adminHandler *handlers.AdminHandler,
	notificationHandler *handlers.NotificationHandler,
	healthHandler *handlers.HealthHandler, // может быть nil
) *gin.Engine {
	if healthHandler != nil {
		r.GET("/healthz", healthHandler.Healthz)
	}

	api := r.Group("/api")
	requireAuth := middleware.AuthMiddleware(tokens, accounts)

	// ---- auth: один эндпоинт, действие в теле; не-POST отдаёт 405 внутри хендлера
	api.Any("/auth", authHandler.Handle)
	api.POST("/auth/refresh", authHandler.Refresh)

	// ---- blogs
	blogs := api.Group("/blogs")
	{
		blogs.GET("", blogHandler.List)
		blogs.GET("/:id", blogHandler.Get)
		blogs.GET("/:id/stats", blogHandler.Stats)
		blogs.GET("/:id/comments", blogHandler.Comments)
		blogs.GET("/:id/like-status", blogHandler.LikeStatus)
		blogs.GET("/:id/pdf", blogHandler.PDF)
		blogs.POST("/:id/view", blogHandler.RecordView)

		authed := blogs.Group("", requireAuth)
		authed.POST("", blogHandler.Create)
		authed.PUT("/:id", blogHandler.Update)
		authed.DELETE("/:id", blogHandler.Delete)
		authed.POST("/:id/like", blogHandler.ToggleLike)
		authed.POST("/:id/comment", blogHandler.AddComment)
	}

	// ---- admin
	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:userId", adminHandler.SetBan)
		admin.DELETE("/blogs/:blogId", adminHandler.DeleteBlog)
		admin.POST("/notifications/send", adminHandler.SendNotification)
	}

	// ---- current user
	user := api.Group("/user", requireAuth)
	{
		user.GET("/notifications", notificationHandler.List)
		user.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	}

	return r
}
