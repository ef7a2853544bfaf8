package validators

import (
	"strings"

	"safewatch/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SOSRequest coordinates are pointers so that a missing field is
// distinguishable from 0. Values are not range checked.
type SOSRequest struct {
	Email     string   `json:"email" validate:"required,not_blank"`
	Phone     string   `json:"phone" validate:"required,not_blank"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

func ValidateSOSRequest(req *SOSRequest) ValidationErrors {
	return ValidateStruct(req)
}

// Trigger converts a validated request into the orchestrator's input.
func (r *SOSRequest) Trigger(origin string) *models.SOSTrigger {
	return &models.SOSTrigger{
		Email:      strings.TrimSpace(r.Email),
		Phone:      strings.TrimSpace(r.Phone),
		Coordinate: models.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude},
		Origin:     origin,
	}
}

type LocationUpdateRequest struct {
	UserID    string   `json:"userId" validate:"required,object_id"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

func ValidateLocationUpdate(req *LocationUpdateRequest) ValidationErrors {
	return ValidateStruct(req)
}

func (r *LocationUpdateRequest) ObjectID() primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(r.UserID)
	return id
}

// ContactRequest needs a name and at least one way to reach the contact.
// The email is stored as given.
type ContactRequest struct {
	Name         string `json:"contactName" validate:"required,not_blank,max=100"`
	Phone        string `json:"contactPhone" validate:"required_without=Email,max=32"`
	Email        string `json:"contactEmail" validate:"required_without=Phone,max=254"`
	Relationship string `json:"relationship" validate:"max=50"`
}

func ValidateContactRequest(req *ContactRequest) ValidationErrors {
	return ValidateStruct(req)
}

func (r *ContactRequest) Model() *models.AddContactRequest {
	return &models.AddContactRequest{
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Relationship: r.Relationship,
	}
}
