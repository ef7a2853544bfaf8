package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func f64(v float64) *float64 { return &v }

func TestValidateSOSRequest(t *testing.T) {
	valid := SOSRequest{Email: "jane@x.com", Phone: "+1555", Latitude: f64(0), Longitude: f64(0)}
	assert.Empty(t, ValidateSOSRequest(&valid), "zero coordinates are present, not missing")

	errs := ValidateSOSRequest(&SOSRequest{Email: "  ", Latitude: f64(1)})
	fields := errs.Map()
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "longitude")
	assert.NotContains(t, fields, "latitude")
	assert.Equal(t, "phone is required", fields["phone"])
}

func TestSOSRequestTrigger(t *testing.T) {
	req := SOSRequest{Email: " jane@x.com ", Phone: " +1555 ", Latitude: f64(91), Longitude: f64(-200)}

	trigger := req.Trigger("10.0.0.1")

	assert.Equal(t, "jane@x.com", trigger.Email)
	assert.Equal(t, "+1555", trigger.Phone)
	assert.Equal(t, 91.0, trigger.Coordinate.Latitude)
	assert.Equal(t, -200.0, trigger.Coordinate.Longitude)
	assert.Equal(t, "10.0.0.1", trigger.Origin)
}

func TestValidateLocationUpdate(t *testing.T) {
	id := primitive.NewObjectID()
	req := LocationUpdateRequest{UserID: id.Hex(), Latitude: f64(1), Longitude: f64(2)}
	require.Empty(t, ValidateLocationUpdate(&req))
	assert.Equal(t, id, req.ObjectID())

	errs := ValidateLocationUpdate(&LocationUpdateRequest{UserID: "xyz", Latitude: f64(1), Longitude: f64(2)})
	assert.Equal(t, "Invalid ID format", errs.Map()["userId"])
}

func TestValidateContactRequest(t *testing.T) {
	assert.Empty(t, ValidateContactRequest(&ContactRequest{Name: "Bob", Email: "not-an-email"}))
	assert.Empty(t, ValidateContactRequest(&ContactRequest{Name: "Bob", Phone: "+1555"}))

	errs := ValidateContactRequest(&ContactRequest{Name: "Bob"})
	assert.Len(t, errs, 2)

	errs = ValidateContactRequest(&ContactRequest{Phone: "+1555"})
	assert.Contains(t, errs.Map(), "contactName")
}

func TestValidateAdminUserUpdate(t *testing.T) {
	assert.Empty(t, ValidateAdminUserUpdate(&AdminUserUpdateRequest{}))
	assert.Empty(t, ValidateAdminUserUpdate(&AdminUserUpdateRequest{Name: "Jane", Email: "jane@x.com"}))

	errs := ValidateAdminUserUpdate(&AdminUserUpdateRequest{Email: "nope"})
	assert.Equal(t, "Invalid email format", errs.Map()["email"])
	assert.Contains(t, errs.Error(), "email: Invalid email format")
}
