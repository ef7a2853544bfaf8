package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"safewatch/internal/models"
	"safewatch/internal/ratelimit"
	"safewatch/internal/utils"
	"safewatch/pkg/maps"
	"safewatch/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store down")

// fakeUserRepo keeps users in memory and counts writes so tests can assert
// that a path had no side effects.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	locationErr error
	activityErr error
	lookupErr   error

	locationWrites int
	activityWrites int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) get(id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", id.Hex(), models.ErrUserNotFound)
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	cp.EmergencyContacts = append([]models.EmergencyContact(nil), u.EmergencyContacts...)
	return &cp, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	for k, v := range updates {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "address":
			u.Address = v.(string)
		}
	}
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmailAndPhone(_ context.Context, email, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, u := range r.users {
		if u.Email == email && u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateLastLocation(_ context.Context, id primitive.ObjectID, location models.LastLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locationWrites++
	if r.locationErr != nil {
		return r.locationErr
	}
	u, err := r.get(id)
	if err != nil {
		return err
	}
	u.LastLocation = &location
	return nil
}

func (r *fakeUserRepo) UpdateLastActive(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	now := time.Now()
	u.LastActiveAt = &now
	return nil
}

func (r *fakeUserRepo) AppendActivity(_ context.Context, id primitive.ObjectID, activity models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activityWrites++
	if r.activityErr != nil {
		return r.activityErr
	}
	u, err := r.get(id)
	if err != nil {
		return err
	}
	u.RecentActivity = append(u.RecentActivity, activity)
	return nil
}

func (r *fakeUserRepo) AddContact(_ context.Context, id primitive.ObjectID, contact models.EmergencyContact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	u.EmergencyContacts = append(u.EmergencyContacts, contact)
	return nil
}

func (r *fakeUserRepo) RemoveContact(_ context.Context, id, contactID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	kept := u.EmergencyContacts[:0]
	for _, c := range u.EmergencyContacts {
		if c.ID != contactID {
			kept = append(kept, c)
		}
	}
	u.EmergencyContacts = kept
	return nil
}

func (r *fakeUserRepo) SetStatus(_ context.Context, id primitive.ObjectID, status models.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	u.Status = status
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

// fakeSender records every send and fails for recipients listed in failFor.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]error
	delay   time.Duration
	panicOn string
}

func newFakeSender() *fakeSender {
	return &fakeSender{failFor: make(map[string]error)}
}

func (f *fakeSender) deliver(ctx context.Context, to, subject, body string) error {
	if to == f.panicOn && to != "" {
		panic("sender exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	return f.deliver(ctx, to, subject, htmlBody)
}

func (f *fakeSender) SendSMS(ctx context.Context, to, body string) error {
	return f.deliver(ctx, to, "", body)
}

func (f *fakeSender) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

type fakeLimiter struct {
	mu    sync.Mutex
	deny  bool
	err   error
	calls []string
}

func (l *fakeLimiter) Admit(_ context.Context, key string) (ratelimit.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, key)
	if l.err != nil {
		return ratelimit.Decision{}, l.err
	}
	if l.deny {
		return ratelimit.Decision{Allowed: false, Count: 4, Limit: 3, ResetAt: time.Now().Add(10 * time.Minute)}, nil
	}
	return ratelimit.Decision{Allowed: true, Count: 1, Limit: 3}, nil
}

type fakeGeocoder struct {
	address string
	err     error
}

func (g *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (*maps.GeocodeResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &maps.GeocodeResponse{Results: []maps.GeocodeResult{{Address: g.address}}}, nil
}

func contact(name, email, phone string) models.EmergencyContact {
	return models.EmergencyContact{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Email: email,
		Phone: phone,
	}
}

func gatherText(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}
