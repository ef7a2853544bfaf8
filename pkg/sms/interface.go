package sms

import (
	"context"
	"errors"
	"fmt"
)

type SMSProvider interface {
	SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error)
	Name() string
}

type SMSRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"` // transactional, promotional
}

type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

var ErrEmptyRecipient = errors.New("sms: recipient phone number is empty")

// Sender adapts a provider to the plain text interface the alert
// dispatcher consumes.
type Sender struct {
	provider SMSProvider
}

func NewSender(provider SMSProvider) *Sender {
	return &Sender{provider: provider}
}

func (s *Sender) SendSMS(ctx context.Context, to, body string) error {
	if to == "" {
		return ErrEmptyRecipient
	}
	resp, err := s.provider.SendSMS(ctx, &SMSRequest{
		To:      to,
		Message: body,
		Type:    "transactional",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", s.provider.Name(), err)
	}
	if resp != nil && resp.Status == "failed" {
		return fmt.Errorf("%s: delivery failed: %s", s.provider.Name(), resp.Error)
	}
	return nil
}
