package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSState string
type ChannelName string

const (
	SOSStateReceived          SOSState = "received"
	SOSStateRateLimitChecked  SOSState = "rate_limit_checked"
	SOSStateUserResolved      SOSState = "user_resolved"
	SOSStateContactsValidated SOSState = "contacts_validated"
	SOSStateLocationPersisted SOSState = "location_persisted"
	SOSStateDispatching       SOSState = "dispatching"
	SOSStateCompleted         SOSState = "completed"
	SOSStateFailed            SOSState = "failed"

	ChannelEmail ChannelName = "email"
	ChannelSMS   ChannelName = "sms"
)

// SOSTrigger is the inbound request after decoding. Origin is the limiter key
// derived from the caller's network address.
type SOSTrigger struct {
	Email      string
	Phone      string
	Coordinate Coordinate
	Origin     string
}

// SOSEvent exists for the duration of one alert and is never stored.
type SOSEvent struct {
	ID         string
	UserID     primitive.ObjectID
	UserName   string
	UserPhone  string
	Coordinate Coordinate
	Address    string
	ReportedAt time.Time
	Contacts   []EmergencyContact
}

// ChannelResult is one channel's attempt for one contact. Skipped means the
// contact has no address on that channel and no send was made.
type ChannelResult struct {
	Channel   ChannelName   `json:"channel"`
	Delivered bool          `json:"delivered"`
	Skipped   bool          `json:"skipped,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// ContactOutcome holds one result per attempted channel for one contact.
type ContactOutcome struct {
	ContactID primitive.ObjectID `json:"contact_id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	Results   []ChannelResult    `json:"results"`
}

// Succeeded reports whether at least one channel was attempted and every
// attempted channel delivered.
func (o ContactOutcome) Succeeded() bool {
	attempted := false
	for _, r := range o.Results {
		if r.Skipped {
			continue
		}
		if !r.Delivered {
			return false
		}
		attempted = true
	}
	return attempted
}

func (o ContactOutcome) FailedChannels() []ChannelResult {
	var failed []ChannelResult
	for _, r := range o.Results {
		if !r.Delivered && !r.Skipped {
			failed = append(failed, r)
		}
	}
	return failed
}

type SOSResult struct {
	EventID       string             `json:"event_id"`
	UserID        primitive.ObjectID `json:"user_id"`
	State         SOSState           `json:"state"`
	TriggeredAt   time.Time          `json:"triggered_at"`
	LocationSaved bool               `json:"location_saved"`
	LocationError string             `json:"location_error,omitempty"`
	Outcomes      []ContactOutcome   `json:"outcomes"`
}

func (r *SOSResult) Notified() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

func (r *SOSResult) Failed() int {
	return len(r.Outcomes) - r.Notified()
}

func (r *SOSResult) FailedContacts() []ContactOutcome {
	var failed []ContactOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// SOSSummary is what the unauthenticated caller gets back; contact details stay server side.
type SOSSummary struct {
	EventID       string `json:"event_id"`
	Contacts      int    `json:"contacts"`
	Notified      int    `json:"notified"`
	Failed        int    `json:"failed"`
	LocationSaved bool   `json:"location_saved"`
}

func (r *SOSResult) Summary() SOSSummary {
	return SOSSummary{
		EventID:       r.EventID,
		Contacts:      len(r.Outcomes),
		Notified:      r.Notified(),
		Failed:        r.Failed(),
		LocationSaved: r.LocationSaved,
	}
}
