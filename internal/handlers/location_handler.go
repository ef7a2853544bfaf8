package handlers

import (
	"time"

	"safewatch/internal/services"
	"safewatch/internal/utils"
	"safewatch/internal/validators"
	"safewatch/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LocationHandler struct {
	locationService services.LocationService
	logger          *logger.Logger
}

func NewLocationHandler(locationService services.LocationService, logger *logger.Logger) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		logger:          logger,
	}
}

// lastLocationView keeps the keys present with null values when the user
// never reported a position.
type lastLocationView struct {
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Timestamp *time.Time `json:"timestamp"`
}

// UpdateLocation overwrites the user's last known position
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	var req validators.LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateLocationUpdate(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Map())
		return
	}

	snapshot, err := h.locationService.RecordLocation(c.Request.Context(), req.ObjectID(), *req.Latitude, *req.Longitude)
	if err != nil {
		respondError(c, h.logger, err, "Location update")
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", snapshot)
}

// GetLastLocation returns the stored snapshot
func (h *LocationHandler) GetLastLocation(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	loc, err := h.locationService.GetLastLocation(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Get last location")
		return
	}

	view := lastLocationView{}
	if loc != nil {
		view.Latitude = &loc.Latitude
		view.Longitude = &loc.Longitude
		view.Timestamp = &loc.Timestamp
	}
	utils.SuccessResponse(c, "Last location retrieved successfully", view)
}
