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

type AdminHandler struct {
	adminService services.AdminService
	logger       *logger.Logger
}

func NewAdminHandler(adminService services.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// ListUsers returns a page of users, newest first by default
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.adminService.ListUsers(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err, "List users")
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(users),
	}
	utils.SuccessResponseWithMeta(c, "Users retrieved successfully", users, meta)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}

	user, err := h.adminService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Get user")
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", user)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	adminID, _ := middleware.CurrentUserID(c)

	var req validators.AdminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateAdminUserUpdate(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Map())
		return
	}

	user, err := h.adminService.UpdateUser(c.Request.Context(), adminID, userID, req.Model())
	if err != nil {
		respondError(c, h.logger, err, "Update user")
		return
	}

	utils.SuccessResponse(c, "User updated successfully", user)
}

func (h *AdminHandler) ToggleStatus(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	adminID, _ := middleware.CurrentUserID(c)

	user, err := h.adminService.ToggleStatus(c.Request.Context(), adminID, userID)
	if err != nil {
		respondError(c, h.logger, err, "Toggle user status")
		return
	}

	utils.SuccessResponse(c, "User status updated to "+string(user.Status), user)
}

func (h *AdminHandler) GetAuditTrail(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	entries, total, err := h.adminService.AuditTrail(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, h.logger, err, "Get audit trail")
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(entries),
	}
	utils.SuccessResponseWithMeta(c, "Audit trail retrieved successfully", entries, meta)
}

// CheckStatus lets the admin UI confirm its token still carries admin rights.
func (h *AdminHandler) CheckStatus(c *gin.Context) {
	adminID, _ := middleware.CurrentUserID(c)
	utils.SuccessResponse(c, "Admin access confirmed", gin.H{
		"is_admin": true,
		"user_id":  adminID.Hex(),
	})
}

func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
