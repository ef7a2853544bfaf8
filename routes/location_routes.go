package routes

import (
	"safewatch/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupLocationRoutes mounts location, SOS and contact routes under
// /location. auth guards the routes that act on the caller's own account.
func SetupLocationRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, locationHandler *handlers.LocationHandler, sosHandler *handlers.SOSHandler, contactHandler *handlers.ContactHandler) {
	location := r.Group("/location")
	{
		// Public routes
		location.POST("/update", locationHandler.UpdateLocation)
		location.GET("/last-location/:userId", locationHandler.GetLastLocation)
		location.POST("/sos", sosHandler.TriggerSOS)
		location.DELETE("/remove-contact/:userId/:contactId", contactHandler.RemoveContact)

		// Protected routes
		location.POST("/add-contact", auth, contactHandler.AddContact)
		location.GET("/contacts", auth, contactHandler.ListContacts)
	}
}
