package routes

import (
	"safewatch/internal/handlers"
	"safewatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes mounts the admin panel API under /admin.
func SetupAdminRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, adminHandler *handlers.AdminHandler) {
	admin := r.Group("/admin")
	admin.Use(auth, middleware.AdminRequired())
	{
		admin.GET("/check-status", adminHandler.CheckStatus)
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/user/:userId", adminHandler.GetUser)
		admin.PUT("/user/:userId/update", adminHandler.UpdateUser)
		admin.PUT("/user/:userId/toggle-status", adminHandler.ToggleStatus)
		admin.GET("/user/:userId/audit-log", adminHandler.GetAuditTrail)
	}
}
