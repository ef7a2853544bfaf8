package services

import (
	"context"
	"strings"

	"safewatch/internal/models"
	"safewatch/internal/repositories/interfaces"
	"safewatch/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContactService interface {
	AddContact(ctx context.Context, userID primitive.ObjectID, req *models.AddContactRequest) (*models.EmergencyContact, error)
	// RemoveContact succeeds when the contact is absent, including when
	// contactID is not a valid object id. The user must exist.
	RemoveContact(ctx context.Context, userID primitive.ObjectID, contactID string) error
	ListContacts(ctx context.Context, userID primitive.ObjectID) ([]models.EmergencyContact, error)
}

type contactService struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

func NewContactService(userRepo interfaces.UserRepository, logger *logger.Logger) ContactService {
	return &contactService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *contactService) AddContact(ctx context.Context, userID primitive.ObjectID, req *models.AddContactRequest) (*models.EmergencyContact, error) {
	contact := models.EmergencyContact{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		Relationship: strings.TrimSpace(req.Relationship),
	}

	if err := s.userRepo.AddContact(ctx, userID, contact); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithUserID(userID).WithField("contact_id", contact.ID.Hex()).Info("Emergency contact added")
	return &contact, nil
}

func (s *contactService) RemoveContact(ctx context.Context, userID primitive.ObjectID, contactID string) error {
	oid, err := primitive.ObjectIDFromHex(contactID)
	if err != nil {
		// Nothing can match a malformed id; only confirm the user is real.
		_, err := s.userRepo.GetByID(ctx, userID)
		return err
	}

	if err := s.userRepo.RemoveContact(ctx, userID, oid); err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithUserID(userID).WithField("contact_id", contactID).Info("Emergency contact removed")
	return nil
}

func (s *contactService) ListContacts(ctx context.Context, userID primitive.ObjectID) ([]models.EmergencyContact, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.EmergencyContacts == nil {
		return []models.EmergencyContact{}, nil
	}
	return user.EmergencyContacts, nil
}
