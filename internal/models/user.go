package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string
type ActivityType string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"

	ActivityLogin          ActivityType = "login"
	ActivityProfileUpdate  ActivityType = "profile_update"
	ActivityPasswordChange ActivityType = "password_change"
	ActivitySOSAlert       ActivityType = "sos_alert"
)

type User struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name"`
	Email             string             `json:"email" bson:"email"`
	Password          string             `json:"-" bson:"password"`
	Phone             string             `json:"phone" bson:"phone"`
	Avatar            string             `json:"avatar" bson:"avatar"`
	Address           string             `json:"address" bson:"address"`
	Status            UserStatus         `json:"status" bson:"status"`
	LastActiveAt      *time.Time         `json:"last_active_at" bson:"last_active_at"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts" bson:"emergency_contacts"`
	LastLocation      *LastLocation      `json:"last_location" bson:"last_location"`
	RecentActivity    []Activity         `json:"recent_activity" bson:"recent_activity"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// Activity is one entry of the append-only per-user activity log.
type Activity struct {
	Type      ActivityType `json:"type" bson:"type"`
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
	Details   string       `json:"details" bson:"details"`
}

func (u *User) HasContacts() bool {
	return len(u.EmergencyContacts) > 0
}
