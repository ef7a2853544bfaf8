package services

import (
	"context"
	"errors"
	"time"

	"safewatch/internal/models"
	"safewatch/internal/repositories/interfaces"
	"safewatch/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LocationService interface {
	// RecordLocation overwrites the user's last known position with the
	// given coordinate stamped with the server clock.
	RecordLocation(ctx context.Context, userID primitive.ObjectID, lat, lng float64) (*models.LastLocation, error)
	// GetLastLocation returns nil without error when the user never reported one.
	GetLastLocation(ctx context.Context, userID primitive.ObjectID) (*models.LastLocation, error)
}

type locationService struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
	now      func() time.Time
}

func NewLocationService(userRepo interfaces.UserRepository, logger *logger.Logger) LocationService {
	return &locationService{
		userRepo: userRepo,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *locationService) RecordLocation(ctx context.Context, userID primitive.ObjectID, lat, lng float64) (*models.LastLocation, error) {
	snapshot := models.LastLocation{
		Latitude:  lat,
		Longitude: lng,
		Timestamp: s.now().UTC(),
	}

	if err := s.userRepo.UpdateLastLocation(ctx, userID, snapshot); err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			s.logger.WithContext(ctx).WithError(err).WithUserID(userID).Error("Failed to save last location")
		}
		return nil, err
	}

	return &snapshot, nil
}

func (s *locationService) GetLastLocation(ctx context.Context, userID primitive.ObjectID) (*models.LastLocation, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.LastLocation, nil
}
