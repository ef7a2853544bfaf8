package models

import (
	"errors"
	"time"
)

var (
	ErrRateLimited   = errors.New("too many SOS requests, please try again later")
	ErrUserNotFound  = errors.New("user not found")
	ErrNoContacts    = errors.New("no emergency contacts found")
	ErrPersistence   = errors.New("persistence failure")
	ErrChannelSend   = errors.New("notification channel send failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrEmailTaken    = errors.New("email is already in use")
	ErrMissingTarget = errors.New("contact has no address for this channel")
)

// RateLimitError carries how long the caller must wait. It matches
// ErrRateLimited under errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error()
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
