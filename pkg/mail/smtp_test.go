package mail

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailer_RequiresHostAndFrom(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{FromEmail: "alerts@example.com"})
	assert.Error(t, err)

	_, err = NewSMTPMailer(SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, err)
}

func TestSendEmail_RejectsMalformedRecipientBeforeDialing(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{
		Host:      "127.0.0.1",
		Port:      1,
		FromEmail: "alerts@example.com",
		FromName:  "SafeWatch Alerts",
		Timeout:   time.Second,
	})
	require.NoError(t, err)

	err = m.SendEmail(context.Background(), "not an address", "SOS Alert", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestSendEmail_CancelledContext(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{
		Host:      "192.0.2.1",
		Port:      25,
		FromEmail: "alerts@example.com",
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, m.SendEmail(ctx, "someone@example.com", "SOS Alert", "<p>hi</p>"))
}

func TestDisabledMailer(t *testing.T) {
	var m Mailer = DisabledMailer{}
	assert.ErrorIs(t, m.SendEmail(context.Background(), "a@x.com", "s", "b"), ErrNotConfigured)
}

// Integration test: sends a real message when SMTP_TEST_HOST is set.
func TestSMTPMailer_Integration(t *testing.T) {
	host := os.Getenv("SMTP_TEST_HOST")
	to := os.Getenv("SMTP_TEST_TO")
	if host == "" || to == "" {
		t.Skip("SMTP_TEST_HOST / SMTP_TEST_TO not set")
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_TEST_PORT"))
	if port == 0 {
		port = 587
	}

	m, err := NewSMTPMailer(SMTPConfig{
		Host:      host,
		Port:      port,
		Username:  os.Getenv("SMTP_TEST_USERNAME"),
		Password:  os.Getenv("SMTP_TEST_PASSWORD"),
		FromEmail: os.Getenv("SMTP_TEST_FROM"),
		TLS:       true,
	})
	require.NoError(t, err)
	require.NoError(t, m.SendEmail(context.Background(), to, "SafeWatch test", "<p>integration test</p>"))
}
