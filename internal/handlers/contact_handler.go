package handlers

import (
	"safewatch/internal/middleware"
	"safewatch/internal/services"
	"safewatch/internal/utils"
	"safewatch/internal/validators"
	"safewatch/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContactHandler struct {
	contactService services.ContactService
	logger         *logger.Logger
}

func NewContactHandler(contactService services.ContactService, logger *logger.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// AddContact appends an emergency contact for the authenticated user
func (h *ContactHandler) AddContact(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req validators.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateContactRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Map())
		return
	}

	contact, err := h.contactService.AddContact(c.Request.Context(), userID, req.Model())
	if err != nil {
		respondError(c, h.logger, err, "Add contact")
		return
	}

	utils.SuccessResponse(c, "Emergency contact added successfully", contact)
}

// RemoveContact deletes a contact by id. Unknown contact ids succeed.
func (h *ContactHandler) RemoveContact(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	if err := h.contactService.RemoveContact(c.Request.Context(), userID, c.Param("contactId")); err != nil {
		respondError(c, h.logger, err, "Remove contact")
		return
	}

	utils.SuccessResponse(c, "Emergency contact removed successfully", nil)
}

// ListContacts returns the authenticated user's contacts in insertion order
func (h *ContactHandler) ListContacts(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	contacts, err := h.contactService.ListContacts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "List contacts")
		return
	}

	utils.SuccessResponse(c, "Emergency contacts retrieved successfully", contacts)
}
