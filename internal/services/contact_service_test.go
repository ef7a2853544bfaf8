package services

import (
	"context"
	"testing"

	"safewatch/internal/models"
	"safewatch/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddContact_AppendsInOrder(t *testing.T) {
	user := &models.User{Name: "Jane"}
	svc := NewContactService(newFakeUserRepo(user), logger.NewNop())
	ctx := context.Background()

	first, err := svc.AddContact(ctx, user.ID, &models.AddContactRequest{Name: " Bob ", Phone: "+1555", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.False(t, first.ID.IsZero())
	assert.Equal(t, "Bob", first.Name)

	// Malformed addresses are stored as given.
	_, err = svc.AddContact(ctx, user.ID, &models.AddContactRequest{Name: "Eve", Email: "not-an-email", Relationship: "sister"})
	require.NoError(t, err)

	contacts, err := svc.ListContacts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Bob", contacts[0].Name)
	assert.Equal(t, "not-an-email", contacts[1].Email)
	assert.Equal(t, "sister", contacts[1].Relationship)
}

func TestAddContact_UnknownUser(t *testing.T) {
	svc := NewContactService(newFakeUserRepo(), logger.NewNop())

	_, err := svc.AddContact(context.Background(), primitive.NewObjectID(), &models.AddContactRequest{Name: "Bob"})
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestRemoveContact(t *testing.T) {
	keep := contact("Keep", "keep@x.com", "")
	drop := contact("Drop", "drop@x.com", "")
	user := &models.User{Name: "Jane", EmergencyContacts: []models.EmergencyContact{keep, drop}}
	svc := NewContactService(newFakeUserRepo(user), logger.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.RemoveContact(ctx, user.ID, drop.ID.Hex()))

	contacts, err := svc.ListContacts(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.EmergencyContact{keep}, contacts)
}

func TestRemoveContact_UnknownContactIsNoop(t *testing.T) {
	keep := contact("Keep", "keep@x.com", "")
	user := &models.User{Name: "Jane", EmergencyContacts: []models.EmergencyContact{keep}}
	svc := NewContactService(newFakeUserRepo(user), logger.NewNop())
	ctx := context.Background()

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-object-id"} {
		require.NoError(t, svc.RemoveContact(ctx, user.ID, id), id)
	}

	contacts, err := svc.ListContacts(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.EmergencyContact{keep}, contacts)
}

func TestRemoveContact_UnknownUser(t *testing.T) {
	svc := NewContactService(newFakeUserRepo(), logger.NewNop())

	err := svc.RemoveContact(context.Background(), primitive.NewObjectID(), "bogus")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestListContacts_EmptyIsNotNil(t *testing.T) {
	user := &models.User{Name: "Jane"}
	svc := NewContactService(newFakeUserRepo(user), logger.NewNop())

	contacts, err := svc.ListContacts(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}
