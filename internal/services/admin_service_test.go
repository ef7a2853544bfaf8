package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"safewatch/internal/models"
	"safewatch/internal/utils"
	"safewatch/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListUsers_AppliesDefaults(t *testing.T) {
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{Email: "x@x.com", Password: "hash", CreatedAt: created}
	svc := NewAdminService(newFakeUserRepo(user), nil, logger.NewNop())

	users, total, err := svc.ListUsers(context.Background(), &utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)

	got := users[0]
	assert.Equal(t, "N/A", got.Name)
	assert.Equal(t, "N/A", got.Phone)
	assert.Equal(t, models.UserStatusInactive, got.Status)
	assert.Equal(t, created, got.LastActiveAt)
	assert.NotNil(t, got.EmergencyContacts)
}

func TestGetUser_Detail(t *testing.T) {
	user := &models.User{
		Name:              "Jane",
		Address:           "1 Main St",
		EmergencyContacts: []models.EmergencyContact{contact("Bob", "bob@x.com", "")},
		RecentActivity:    []models.Activity{{Type: models.ActivitySOSAlert, Details: "SOS"}},
	}
	svc := NewAdminService(newFakeUserRepo(user), nil, logger.NewNop())

	detail, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", detail.Address)
	assert.Len(t, detail.EmergencyContacts, 1)
	assert.Len(t, detail.RecentActivity, 1)

	_, err = svc.GetUser(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	var buf bytes.Buffer
	user := &models.User{Name: "Jane", Email: "jane@x.com", Phone: "+1"}
	svc := NewAdminService(newFakeUserRepo(user), nil, logger.NewWithWriter(&buf, logger.InfoLevel))
	admin := primitive.NewObjectID()

	detail, err := svc.UpdateUser(context.Background(), admin, user.ID, &models.AdminUserUpdate{
		Name:  "Jane Roe",
		Email: " Jane.Roe@X.com ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Roe", detail.Name)
	assert.Equal(t, "jane.roe@x.com", detail.Email)
	assert.Equal(t, "+1", detail.Phone, "empty fields are left alone")
	assert.Contains(t, buf.String(), "user_update")
	assert.Contains(t, buf.String(), admin.Hex())
}

func TestUpdateUser_EmailTaken(t *testing.T) {
	jane := &models.User{Name: "Jane", Email: "jane@x.com"}
	bob := &models.User{Name: "Bob", Email: "bob@x.com"}
	svc := NewAdminService(newFakeUserRepo(jane, bob), nil, logger.NewNop())

	_, err := svc.UpdateUser(context.Background(), primitive.NewObjectID(), jane.ID, &models.AdminUserUpdate{Email: "bob@x.com"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	assert.Equal(t, "jane@x.com", jane.Email)

	// Re-submitting one's own address is fine.
	_, err = svc.UpdateUser(context.Background(), primitive.NewObjectID(), jane.ID, &models.AdminUserUpdate{Email: "jane@x.com"})
	assert.NoError(t, err)
}

func TestToggleStatus(t *testing.T) {
	user := &models.User{Name: "Jane", Status: models.UserStatusActive}
	svc := NewAdminService(newFakeUserRepo(user), nil, logger.NewNop())
	ctx := context.Background()
	admin := primitive.NewObjectID()

	detail, err := svc.ToggleStatus(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusInactive, detail.Status)

	detail, err = svc.ToggleStatus(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, detail.Status)
}

func TestToggleStatus_UnsetBecomesActive(t *testing.T) {
	user := &models.User{Name: "Jane"}
	svc := NewAdminService(newFakeUserRepo(user), nil, logger.NewNop())

	detail, err := svc.ToggleStatus(context.Background(), primitive.NewObjectID(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, detail.Status)
	assert.Equal(t, models.UserStatusActive, user.Status)
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	err     error
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *models.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) GetByTarget(_ context.Context, targetID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AuditLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].TargetID == targetID {
			out = append(out, r.entries[i])
		}
	}
	return out, int64(len(out)), nil
}

func TestAdminActions_PersistAuditTrail(t *testing.T) {
	user := &models.User{Name: "Jane", Email: "jane@x.com", Status: models.UserStatusActive}
	audit := &fakeAuditRepo{}
	svc := NewAdminService(newFakeUserRepo(user), audit, logger.NewNop())
	ctx := context.Background()
	admin := primitive.NewObjectID()

	_, err := svc.UpdateUser(ctx, admin, user.ID, &models.AdminUserUpdate{Name: "Jane Roe", Phone: "+15550100"})
	require.NoError(t, err)
	_, err = svc.ToggleStatus(ctx, admin, user.ID)
	require.NoError(t, err)

	trail, total, err := svc.AuditTrail(ctx, user.ID, &utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, trail, 2)

	assert.Equal(t, models.AuditActionStatusToggle, trail[0].Action)
	assert.Equal(t, "active", trail[0].Details["from"])
	assert.Equal(t, "inactive", trail[0].Details["to"])

	assert.Equal(t, models.AuditActionUserUpdate, trail[1].Action)
	assert.Equal(t, []string{"name", "phone"}, trail[1].Details["fields"])
	assert.Equal(t, admin, trail[1].ActorID)
	assert.Equal(t, "user", trail[1].Resource)
}

func TestAdminActions_AuditFailureIsNotFatal(t *testing.T) {
	var buf bytes.Buffer
	user := &models.User{Name: "Jane", Status: models.UserStatusActive}
	svc := NewAdminService(newFakeUserRepo(user), &fakeAuditRepo{err: errStoreDown}, logger.NewWithWriter(&buf, logger.InfoLevel))

	detail, err := svc.ToggleStatus(context.Background(), primitive.NewObjectID(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusInactive, detail.Status)
	assert.Contains(t, buf.String(), "Failed to persist audit log entry")
}

func TestAuditTrail_UnknownUser(t *testing.T) {
	svc := NewAdminService(newFakeUserRepo(), &fakeAuditRepo{}, logger.NewNop())

	_, _, err := svc.AuditTrail(context.Background(), primitive.NewObjectID(), &utils.PaginationParams{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestAuditTrail_WithoutStore(t *testing.T) {
	user := &models.User{Name: "Jane"}
	svc := NewAdminService(newFakeUserRepo(user), nil, logger.NewNop())

	trail, total, err := svc.AuditTrail(context.Background(), user.ID, &utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, trail)
}

func TestUpdateUser_UnknownUserLeavesNoAudit(t *testing.T) {
	audit := &fakeAuditRepo{}
	svc := NewAdminService(newFakeUserRepo(), audit, logger.NewNop())

	for _, update := range []*models.AdminUserUpdate{{}, {Name: "Ghost"}} {
		_, err := svc.UpdateUser(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), update)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	}
	assert.Empty(t, audit.entries)
}
