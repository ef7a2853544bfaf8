package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"safewatch/internal/config"
	"safewatch/internal/models"
	"safewatch/internal/ratelimit"
	"safewatch/internal/repositories/interfaces"
	"safewatch/internal/utils"
	"safewatch/pkg/logger"
	"safewatch/pkg/maps"
	"safewatch/pkg/metrics"

	"github.com/google/uuid"
)

type SOSService interface {
	// Trigger runs one SOS alert end to end. It returns models.ErrRateLimited
	// (as *models.RateLimitError), models.ErrUserNotFound or
	// models.ErrNoContacts before any side effect. Once contacts are known
	// the result is always Completed, however many sends failed.
	Trigger(ctx context.Context, trigger *models.SOSTrigger) (*models.SOSResult, error)
}

type sosService struct {
	limiter        ratelimit.Limiter
	userRepo       interfaces.UserRepository
	locations      LocationService
	notifier       NotificationService
	geocoder       maps.Geocoder
	geocodeTimeout time.Duration
	metrics        *metrics.Metrics
	logger         *logger.Logger
	now            func() time.Time
}

// NewSOSService wires the alert pipeline. geocoder may be nil.
func NewSOSService(
	limiter ratelimit.Limiter,
	userRepo interfaces.UserRepository,
	locations LocationService,
	notifier NotificationService,
	geocoder maps.Geocoder,
	cfg *config.SOSConfig,
	m *metrics.Metrics,
	logger *logger.Logger,
) SOSService {
	return &sosService{
		limiter:        limiter,
		userRepo:       userRepo,
		locations:      locations,
		notifier:       notifier,
		geocoder:       geocoder,
		geocodeTimeout: cfg.GeocodeTimeout,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *sosService) Trigger(ctx context.Context, trigger *models.SOSTrigger) (*models.SOSResult, error) {
	eventID := uuid.NewString()
	log := s.logger.WithContext(ctx)

	if err := s.admit(ctx, eventID, trigger.Origin); err != nil {
		s.fail(log, eventID, "rate_limited", err)
		return nil, err
	}

	user, err := s.userRepo.GetByEmailAndPhone(ctx, utils.NormalizeEmail(trigger.Email), trigger.Phone)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.fail(log, eventID, "user_not_found", err)
			return nil, models.ErrUserNotFound
		}
		s.fail(log, eventID, "error", err)
		return nil, err
	}
	log = log.WithUserID(user.ID)
	log.LogSOSEvent(eventID, string(models.SOSStateUserResolved), nil)

	if !user.HasContacts() {
		s.fail(log, eventID, "no_contacts", models.ErrNoContacts)
		return nil, models.ErrNoContacts
	}
	log.LogSOSEvent(eventID, string(models.SOSStateContactsValidated), map[string]interface{}{
		"contacts": len(user.EmergencyContacts),
	})

	// The caller may hang up once the request is accepted; the alert must
	// still go out.
	ctx = context.WithoutCancel(ctx)

	result := &models.SOSResult{
		EventID:       eventID,
		UserID:        user.ID,
		TriggeredAt:   s.now().UTC(),
		LocationSaved: true,
	}

	lat, lng := trigger.Coordinate.Latitude, trigger.Coordinate.Longitude
	if _, err := s.locations.RecordLocation(ctx, user.ID, lat, lng); err != nil {
		log.WithError(err).WithField("event_id", eventID).Error("Failed to save SOS location, dispatching anyway")
		result.LocationSaved = false
		result.LocationError = "location could not be saved"
	} else {
		log.LogSOSEvent(eventID, string(models.SOSStateLocationPersisted), nil)
	}

	event := &models.SOSEvent{
		ID:         eventID,
		UserID:     user.ID,
		UserName:   user.Name,
		UserPhone:  user.Phone,
		Coordinate: trigger.Coordinate,
		Address:    s.lookupAddress(ctx, lat, lng),
		ReportedAt: result.TriggeredAt,
		Contacts:   append([]models.EmergencyContact(nil), user.EmergencyContacts...),
	}

	log.LogSOSEvent(eventID, string(models.SOSStateDispatching), nil)
	result.Outcomes = s.notifier.Dispatch(ctx, event)
	result.State = models.SOSStateCompleted

	activity := models.Activity{
		Type:      models.ActivitySOSAlert,
		Timestamp: result.TriggeredAt,
		Details:   fmt.Sprintf("SOS alert sent to %d of %d emergency contacts", result.Notified(), len(result.Outcomes)),
	}
	if err := s.userRepo.AppendActivity(ctx, user.ID, activity); err != nil {
		log.WithError(err).WithField("event_id", eventID).Warn("Failed to record SOS activity")
	}

	log.LogSOSEvent(eventID, string(models.SOSStateCompleted), map[string]interface{}{
		"notified":       result.Notified(),
		"failed":         result.Failed(),
		"location_saved": result.LocationSaved,
	})
	if s.metrics != nil {
		s.metrics.ObserveSOS(string(models.SOSStateCompleted))
	}
	return result, nil
}

// admit fails open when the limiter store is unreachable.
func (s *sosService) admit(ctx context.Context, eventID, origin string) error {
	decision, err := s.limiter.Admit(ctx, utils.SOSRateLimitPrefix+origin)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("event_id", eventID).Warn("SOS rate limiter unavailable, admitting request")
		return nil
	}
	if s.metrics != nil {
		s.metrics.ObserveRateLimit(decision.Allowed)
	}
	if decision.Allowed {
		return nil
	}

	s.logger.WithContext(ctx).LogSecurityEvent("sos_rate_limited", "medium", map[string]interface{}{
		"event_id": eventID,
		"origin":   origin,
		"count":    decision.Count,
		"limit":    decision.Limit,
	})
	return &models.RateLimitError{RetryAfter: decision.RetryAfter(s.now())}
}

func (s *sosService) lookupAddress(ctx context.Context, lat, lng float64) string {
	if s.geocoder == nil {
		return ""
	}
	if s.geocodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.geocodeTimeout)
		defer cancel()
	}
	resp, err := s.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Debug("Reverse geocoding failed")
		return ""
	}
	return resp.BestAddress()
}

func (s *sosService) fail(log *logger.Logger, eventID, reason string, err error) {
	log.WithError(err).LogSOSEvent(eventID, string(models.SOSStateFailed), map[string]interface{}{
		"reason": reason,
	})
	if s.metrics != nil {
		s.metrics.ObserveSOS(reason)
	}
}
