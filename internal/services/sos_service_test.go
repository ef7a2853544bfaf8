package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"safewatch/internal/config"
	"safewatch/internal/models"
	"safewatch/pkg/logger"
	"safewatch/pkg/maps"
	"safewatch/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sosFixture struct {
	repo    *fakeUserRepo
	limiter *fakeLimiter
	email   *fakeSender
	metrics *metrics.Metrics
	svc     SOSService
}

func newSOSFixture(t *testing.T, geocoder maps.Geocoder, users ...*models.User) *sosFixture {
	t.Helper()
	f := &sosFixture{
		repo:    newFakeUserRepo(users...),
		limiter: &fakeLimiter{},
		email:   newFakeSender(),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	log := logger.NewNop()
	notifier := NewNotificationService(f.email, nil, testOptions(), f.metrics, log)
	f.svc = NewSOSService(
		f.limiter,
		f.repo,
		NewLocationService(f.repo, log),
		notifier,
		geocoder,
		&config.SOSConfig{GeocodeTimeout: time.Second},
		f.metrics,
		log,
	)
	return f
}

func janeWith(contacts ...models.EmergencyContact) *models.User {
	return &models.User{
		Name:              "Jane Doe",
		Email:             "jane@x.com",
		Phone:             "+15550001111",
		Status:            models.UserStatusActive,
		EmergencyContacts: contacts,
	}
}

func janeTrigger() *models.SOSTrigger {
	return &models.SOSTrigger{
		Email:      "jane@x.com",
		Phone:      "+15550001111",
		Coordinate: models.Coordinate{Latitude: 40.7128, Longitude: -74.006},
		Origin:     "203.0.113.7",
	}
}

func TestTrigger_Completed(t *testing.T) {
	user := janeWith(contact("Bob", "bob@x.com", ""))
	f := newSOSFixture(t, nil, user)

	result, err := f.svc.Trigger(context.Background(), janeTrigger())
	require.NoError(t, err)

	assert.Equal(t, models.SOSStateCompleted, result.State)
	assert.NotEmpty(t, result.EventID)
	assert.Equal(t, user.ID, result.UserID)
	assert.True(t, result.LocationSaved)
	assert.Equal(t, 1, result.Notified())
	assert.Equal(t, []string{"sos:203.0.113.7"}, f.limiter.calls)

	require.NotNil(t, user.LastLocation)
	assert.Equal(t, 40.7128, user.LastLocation.Latitude)
	assert.Equal(t, -74.006, user.LastLocation.Longitude)

	require.Len(t, user.RecentActivity, 1)
	assert.Equal(t, models.ActivitySOSAlert, user.RecentActivity[0].Type)
	assert.Equal(t, "SOS alert sent to 1 of 1 emergency contacts", user.RecentActivity[0].Details)

	assert.Contains(t, gatherText(t, f.metrics), `safewatch_sos_triggers_total{outcome="completed"} 1`)
}

func TestTrigger_RateLimitedHasNoSideEffects(t *testing.T) {
	user := janeWith(contact("Bob", "bob@x.com", ""))
	f := newSOSFixture(t, nil, user)
	f.limiter.deny = true

	result, err := f.svc.Trigger(context.Background(), janeTrigger())

	assert.Nil(t, result)
	require.ErrorIs(t, err, models.ErrRateLimited)
	var rle *models.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Greater(t, rle.RetryAfter, time.Duration(0))

	assert.Zero(t, f.repo.locationWrites)
	assert.Zero(t, f.repo.activityWrites)
	assert.Empty(t, f.email.recipients())
}

func TestTrigger_LimiterErrorFailsOpen(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(contact("Bob", "bob@x.com", "")))
	f.limiter.err = errStoreDown

	result, err := f.svc.Trigger(context.Background(), janeTrigger())
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateCompleted, result.State)
}

func TestTrigger_UserNotFound(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(contact("Bob", "bob@x.com", "")))
	trigger := janeTrigger()
	trigger.Phone = "+19999999999"

	_, err := f.svc.Trigger(context.Background(), trigger)

	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.Zero(t, f.repo.locationWrites)
	assert.Empty(t, f.email.recipients())
}

func TestTrigger_LookupFailureIsPropagated(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(contact("Bob", "bob@x.com", "")))
	f.repo.lookupErr = errStoreDown

	_, err := f.svc.Trigger(context.Background(), janeTrigger())

	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, models.ErrUserNotFound)
}

func TestTrigger_EmailIsNormalized(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(contact("Bob", "bob@x.com", "")))
	trigger := janeTrigger()
	trigger.Email = "  Jane@X.com "

	_, err := f.svc.Trigger(context.Background(), trigger)
	assert.NoError(t, err)
}

func TestTrigger_NoContacts(t *testing.T) {
	user := janeWith()
	f := newSOSFixture(t, nil, user)

	_, err := f.svc.Trigger(context.Background(), janeTrigger())

	assert.ErrorIs(t, err, models.ErrNoContacts)
	assert.Zero(t, f.repo.locationWrites)
	assert.Nil(t, user.LastLocation)
	assert.Empty(t, f.email.recipients())
}

func TestTrigger_LocationFailureStillDispatches(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(contact("Bob", "bob@x.com", "")))
	f.repo.locationErr = errStoreDown

	result, err := f.svc.Trigger(context.Background(), janeTrigger())
	require.NoError(t, err)

	assert.Equal(t, models.SOSStateCompleted, result.State)
	assert.False(t, result.LocationSaved)
	assert.NotEmpty(t, result.LocationError)
	assert.Equal(t, []string{"bob@x.com"}, f.email.recipients())
	assert.False(t, result.Summary().LocationSaved)
}

func TestTrigger_PartialFailureStillCompletes(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(
		contact("A", "a@x.com", ""),
		contact("B", "b@x.com", ""),
	))
	f.email.failFor["a@x.com"] = errors.New("mailbox full")

	result, err := f.svc.Trigger(context.Background(), janeTrigger())
	require.NoError(t, err)

	assert.Equal(t, models.SOSStateCompleted, result.State)
	assert.Equal(t, 1, result.Notified())
	assert.Equal(t, 1, result.Failed())
	require.Len(t, result.FailedContacts(), 1)
	assert.Equal(t, "a@x.com", result.FailedContacts()[0].Email)
}

func TestTrigger_AllFailuresStillComplete(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(
		contact("A", "a@x.com", ""),
		contact("B", "b@x.com", ""),
	))
	f.email.failFor["a@x.com"] = errors.New("down")
	f.email.failFor["b@x.com"] = errors.New("down")

	result, err := f.svc.Trigger(context.Background(), janeTrigger())
	require.NoError(t, err)

	assert.Equal(t, models.SOSStateCompleted, result.State)
	assert.Equal(t, 0, result.Notified())
	assert.Equal(t, 2, result.Summary().Failed)
}

func TestTrigger_ActivityFailureIsIgnored(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(contact("Bob", "bob@x.com", "")))
	f.repo.activityErr = errStoreDown

	result, err := f.svc.Trigger(context.Background(), janeTrigger())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified())
	assert.Equal(t, 1, f.repo.activityWrites)
}

func TestTrigger_GeocodedAddressInEmail(t *testing.T) {
	f := newSOSFixture(t, &fakeGeocoder{address: "350 5th Ave, New York"}, janeWith(contact("Bob", "bob@x.com", "")))

	_, err := f.svc.Trigger(context.Background(), janeTrigger())
	require.NoError(t, err)

	require.Len(t, f.email.sent, 1)
	assert.Contains(t, f.email.sent[0].Body, "350 5th Ave, New York")
}

func TestTrigger_GeocoderErrorOmitsAddress(t *testing.T) {
	f := newSOSFixture(t, &fakeGeocoder{err: errors.New("quota")}, janeWith(contact("Bob", "bob@x.com", "")))

	result, err := f.svc.Trigger(context.Background(), janeTrigger())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Notified())
	assert.False(t, strings.Contains(f.email.sent[0].Body, "Near:"))
}

func TestTrigger_CallerCancellationDoesNotStopDispatch(t *testing.T) {
	f := newSOSFixture(t, nil, janeWith(contact("Bob", "bob@x.com", "")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.svc.Trigger(ctx, janeTrigger())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified())
}
