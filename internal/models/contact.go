package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmergencyContact is owned by its User and only ever stored embedded in the
// user document. Email is not validated on add; a bad address fails at send time.
type EmergencyContact struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Name         string             `json:"name" bson:"name"`
	Phone        string             `json:"phone" bson:"phone"`
	Relationship string             `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Email        string             `json:"email" bson:"email"`
}

type AddContactRequest struct {
	Name         string `json:"contactName"`
	Phone        string `json:"contactPhone"`
	Email        string `json:"contactEmail"`
	Relationship string `json:"relationship"`
}
