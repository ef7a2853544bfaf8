package handlers

import (
	"safewatch/internal/services"
	"safewatch/internal/utils"
	"safewatch/internal/validators"
	"safewatch/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SOSHandler struct {
	sosService services.SOSService
	logger     *logger.Logger
}

func NewSOSHandler(sosService services.SOSService, logger *logger.Logger) *SOSHandler {
	return &SOSHandler{
		sosService: sosService,
		logger:     logger,
	}
}

// TriggerSOS alerts every emergency contact of the user identified by email
// and phone. The route is unauthenticated, so the response carries counts
// only.
func (h *SOSHandler) TriggerSOS(c *gin.Context) {
	var req validators.SOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateSOSRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Map())
		return
	}

	result, err := h.sosService.Trigger(c.Request.Context(), req.Trigger(c.ClientIP()))
	if err != nil {
		respondError(c, h.logger, err, "SOS")
		return
	}

	utils.SuccessResponse(c, "SOS alerts sent successfully", result.Summary())
}
