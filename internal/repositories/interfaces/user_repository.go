package interfaces

import (
	"context"

	"safewatch/internal/models"
	"safewatch/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is the persistence boundary for users and the contacts and
// location snapshot embedded in them. Lookups that miss return an error
// wrapping models.ErrUserNotFound; store failures wrap models.ErrPersistence.
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Identity lookups
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmailAndPhone(ctx context.Context, email, phone string) (*models.User, error)

	// Location and activity
	UpdateLastLocation(ctx context.Context, id primitive.ObjectID, location models.LastLocation) error
	UpdateLastActive(ctx context.Context, id primitive.ObjectID) error
	AppendActivity(ctx context.Context, id primitive.ObjectID, activity models.Activity) error

	// Emergency contacts
	AddContact(ctx context.Context, id primitive.ObjectID, contact models.EmergencyContact) error
	RemoveContact(ctx context.Context, id, contactID primitive.ObjectID) error

	// Admin
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) error
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
}
