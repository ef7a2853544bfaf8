package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"safewatch/internal/models"
	"safewatch/internal/repositories/interfaces"
	"safewatch/internal/utils"
	"safewatch/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminService interface {
	ListUsers(ctx context.Context, params *utils.PaginationParams) ([]models.AdminUserSummary, int64, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*models.AdminUserDetail, error)
	// UpdateUser applies the non-empty fields of update. Changing the email
	// to one owned by another user returns models.ErrEmailTaken.
	UpdateUser(ctx context.Context, adminID, userID primitive.ObjectID, update *models.AdminUserUpdate) (*models.AdminUserDetail, error)
	// ToggleStatus flips active to inactive and anything else to active.
	ToggleStatus(ctx context.Context, adminID, userID primitive.ObjectID) (*models.AdminUserDetail, error)
	AuditTrail(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}

type adminService struct {
	userRepo  interfaces.UserRepository
	auditRepo interfaces.AuditLogRepository
	logger    *logger.Logger
	audit     *logger.AuditLogger
	now       func() time.Time
}

// NewAdminService builds the admin service. auditRepo may be nil, in which
// case admin actions only reach the audit log stream.
func NewAdminService(userRepo interfaces.UserRepository, auditRepo interfaces.AuditLogRepository, logger *logger.Logger) AdminService {
	return &adminService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		logger:    logger,
		audit:     logger.Audit(),
		now:       time.Now,
	}
}

func (s *adminService) ListUsers(ctx context.Context, params *utils.PaginationParams) ([]models.AdminUserSummary, int64, error) {
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to list users")
		return nil, 0, err
	}

	summaries := make([]models.AdminUserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, models.NewAdminUserSummary(u))
	}
	return summaries, total, nil
}

func (s *adminService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.AdminUserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	detail := models.NewAdminUserDetail(user)
	return &detail, nil
}

func (s *adminService) UpdateUser(ctx context.Context, adminID, userID primitive.ObjectID, update *models.AdminUserUpdate) (*models.AdminUserDetail, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name := strings.TrimSpace(update.Name); name != "" {
		updates["name"] = name
	}
	if phone := strings.TrimSpace(update.Phone); phone != "" {
		updates["phone"] = phone
	}
	if address := strings.TrimSpace(update.Address); address != "" {
		updates["address"] = address
	}
	if email := utils.NormalizeEmail(update.Email); email != "" {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != userID:
			return nil, models.ErrEmailTaken
		case err != nil && !errors.Is(err, models.ErrUserNotFound):
			return nil, err
		}
		updates["email"] = email
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}

	fields := make([]string, 0, len(updates))
	for k := range updates {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	s.record(ctx, adminID, userID, models.AuditActionUserUpdate, map[string]interface{}{
		"fields": fields,
	})

	return s.GetUser(ctx, userID)
}

func (s *adminService) ToggleStatus(ctx context.Context, adminID, userID primitive.ObjectID) (*models.AdminUserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := models.UserStatusActive
	if user.Status == models.UserStatusActive {
		next = models.UserStatusInactive
	}

	if err := s.userRepo.SetStatus(ctx, userID, next); err != nil {
		return nil, err
	}

	s.record(ctx, adminID, userID, models.AuditActionStatusToggle, map[string]interface{}{
		"from": string(user.Status),
		"to":   string(next),
	})

	user.Status = next
	detail := models.NewAdminUserDetail(user)
	return &detail, nil
}

func (s *adminService) AuditTrail(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	if s.auditRepo == nil {
		return []*models.AuditLog{}, 0, nil
	}

	logs, total, err := s.auditRepo.GetByTarget(ctx, userID, params)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithUserID(userID).Error("Failed to load audit trail")
		return nil, 0, err
	}
	return logs, total, nil
}

// record writes the action to the audit stream and, when configured, to the
// audit_logs collection. A failed insert never fails the admin action.
func (s *adminService) record(ctx context.Context, adminID, userID primitive.ObjectID, action models.AuditAction, details map[string]interface{}) {
	streamed := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		streamed[k] = v
	}
	streamed["target_user_id"] = userID.Hex()
	s.audit.LogAction(string(action), "user", &adminID, streamed)

	if s.auditRepo == nil {
		return
	}
	entry := &models.AuditLog{
		ActorID:   adminID,
		Action:    action,
		Resource:  "user",
		TargetID:  userID,
		Details:   details,
		CreatedAt: s.now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithUserID(userID).Warn("Failed to persist audit log entry")
	}
}
