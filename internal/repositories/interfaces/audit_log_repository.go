package interfaces

import (
	"context"

	"safewatch/internal/models"
	"safewatch/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error
	// GetByTarget lists entries about one user, newest first.
	GetByTarget(ctx context.Context, targetID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}
