package mongodb

import (
	"context"
	"fmt"
	"time"

	"safewatch/internal/models"
	"safewatch/internal/repositories/interfaces"
	"safewatch/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type auditLogRepository struct {
	collection *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) interfaces.AuditLogRepository {
	return &auditLogRepository{
		collection: db.Collection("audit_logs"),
	}
}

func (r *auditLogRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	auditLog.ID = primitive.NewObjectID()
	if auditLog.CreatedAt.IsZero() {
		auditLog.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, auditLog); err != nil {
		return fmt.Errorf("failed to create audit log: %w: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *auditLogRepository) GetByTarget(ctx context.Context, targetID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	filter := bson.M{"target_id": targetID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w: %v", models.ErrPersistence, err)
	}

	opts := params.GetSortOptions()
	// Audit history always reads newest first.
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find audit logs: %w: %v", models.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	logs := make([]*models.AuditLog, 0, params.GetLimit())
	for cursor.Next(ctx) {
		var log models.AuditLog
		if err := cursor.Decode(&log); err != nil {
			return nil, 0, fmt.Errorf("failed to decode audit log: %w: %v", models.ErrPersistence, err)
		}
		logs = append(logs, &log)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit logs: %w: %v", models.ErrPersistence, err)
	}

	return logs, total, nil
}
