package handlers

import (
	"errors"
	"net/http"

	"safewatch/internal/middleware"
	"safewatch/internal/models"
	"safewatch/internal/utils"
	"safewatch/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the response envelope. Anything
// unrecognised is logged and reported as a 500 without details.
func respondError(c *gin.Context, log *logger.Logger, err error, action string) {
	var rle *models.RateLimitError
	switch {
	case errors.As(err, &rle):
		middleware.SetRetryAfter(c, rle.RetryAfter)
		utils.TooManyRequestsResponse(c, models.ErrRateLimited.Error())
	case errors.Is(err, models.ErrRateLimited):
		utils.TooManyRequestsResponse(c, models.ErrRateLimited.Error())
	case errors.Is(err, models.ErrUserNotFound):
		utils.NotFoundResponse(c, "User")
	case errors.Is(err, models.ErrNoContacts):
		utils.ErrorResponse(c, http.StatusBadRequest, utils.CodeNoContacts, models.ErrNoContacts.Error())
	case errors.Is(err, models.ErrEmailTaken):
		utils.ConflictResponse(c, models.ErrEmailTaken.Error())
	case errors.Is(err, models.ErrUnauthorized):
		utils.UnauthorizedResponse(c)
	default:
		log.WithContext(c.Request.Context()).WithError(err).Error(action + " failed")
		utils.InternalServerErrorResponse(c)
	}
}
