package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/api/handlers"
	"github.com/tasklane/backend/internal/api/middleware"
	"github.com/tasklane/backend/internal/config"
	"github.com/tasklane/backend/internal/database"
	"github.com/tasklane/backend/internal/models"
	"github.com/tasklane/backend/internal/services"
)

// Register wires up API routes and performs automatic migrations. When
// gatherer is non-nil its metrics are served on /metrics.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, gatherer prometheus.Gatherer) error {
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")

	healthHandler := handlers.NewHealthHandler(db)
	api.GET("/health", healthHandler.Check)

	// Auth routes
	authService := services.NewAuthService(db, cfg)
	authHandler := handlers.NewAuthHandler(authService)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)

	notificationService := services.NewNotificationService(db)
	preferenceService := services.NewPreferenceService(db)
	emailLogService := services.NewEmailLogService(db)
	notifier := services.NewNotifier(db, notificationService, preferenceService, emailLogService)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.GET("/auth/me", authHandler.Me)

		// Notifications
		notificationHandler := handlers.NewNotificationHandler(notificationService)
		inbox := protected.Group("/workspaces/:workspace_id/notifications")
		inbox.GET("", notificationHandler.List)
		inbox.GET("/unread-count", notificationHandler.UnreadCount)
		inbox.POST("/read-all", notificationHandler.MarkAllRead)
		inbox.GET("/:id", notificationHandler.Get)
		inbox.POST("/:id/read", notificationHandler.MarkRead)
		inbox.DELETE("/:id/read", notificationHandler.MarkUnread)
		inbox.POST("/:id/archive", notificationHandler.Archive)
		inbox.DELETE("/:id/archive", notificationHandler.Unarchive)
		inbox.POST("/:id/snooze", notificationHandler.Snooze)
		inbox.DELETE("/:id/snooze", notificationHandler.Unsnooze)

		// Preferences
		preferenceHandler := handlers.NewPreferenceHandler(preferenceService)
		protected.GET("/users/me/notification-preferences", preferenceHandler.Get)
		protected.PATCH("/users/me/notification-preferences", preferenceHandler.Update)
		protected.PUT("/users/me/notification-preferences/workspaces/:workspace_id", preferenceHandler.SetWorkspace)

		// Email log
		emailLogHandler := handlers.NewEmailLogHandler(emailLogService)
		protected.GET("/users/me/email-notifications", emailLogHandler.ListMine)

		// Activity events
		eventHandler := handlers.NewEventHandler(notifier)
		protected.POST("/notifications/events", middleware.RequireRole(models.RoleAdmin), eventHandler.Publish)
	}

	return nil
}
