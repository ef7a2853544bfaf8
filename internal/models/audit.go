package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionUserUpdate   AuditAction = "user_update"
	AuditActionStatusToggle AuditAction = "user_status_toggle"
)

// AuditLog records one admin mutation of a user account.
type AuditLog struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	ActorID   primitive.ObjectID     `json:"actor_id" bson:"actor_id"`
	Action    AuditAction            `json:"action" bson:"action"`
	Resource  string                 `json:"resource" bson:"resource"`
	TargetID  primitive.ObjectID     `json:"target_id" bson:"target_id"`
	Details   map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}
