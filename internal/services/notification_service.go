package services

import (
	"context"
	"fmt"
	"time"

	"safewatch/internal/config"
	"safewatch/internal/models"
	"safewatch/internal/utils"
	"safewatch/pkg/logger"
	"safewatch/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Channel delivers one alert to one contact over a single medium.
type Channel interface {
	Name() models.ChannelName
	// Reachable reports whether contact has an address on this channel.
	Reachable(contact models.EmergencyContact) bool
	Send(ctx context.Context, msg *AlertMessage, contact models.EmergencyContact) error
}

type NotificationService interface {
	// Dispatch attempts every enabled channel for every contact of event and
	// returns one outcome per contact in contact order. Failures are recorded
	// in the outcomes, never returned.
	Dispatch(ctx context.Context, event *models.SOSEvent) []models.ContactOutcome
}

type NotificationOptions struct {
	SendTimeout      time.Duration
	DispatchTimeout  time.Duration
	MaxParallelSends int
	MapURL           string
	Timezone         string
}

func NotificationOptionsFromConfig(cfg *config.Config) NotificationOptions {
	return NotificationOptions{
		SendTimeout:      cfg.SOS.SendTimeout,
		DispatchTimeout:  cfg.SOS.DispatchTimeout,
		MaxParallelSends: cfg.SOS.MaxParallelSends,
		MapURL:           cfg.SOS.MapURL,
		Timezone:         cfg.App.Timezone,
	}
}

type notificationService struct {
	channels []Channel
	opts     NotificationOptions
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewNotificationService always sends email; SMS is added only when sms is
// non-nil.
func NewNotificationService(email EmailSender, sms SMSSender, opts NotificationOptions, m *metrics.Metrics, logger *logger.Logger) NotificationService {
	channels := []Channel{&emailChannel{sender: email}}
	if sms != nil {
		channels = append(channels, &smsChannel{sender: sms})
	}
	return newNotificationService(channels, opts, m, logger)
}

func newNotificationService(channels []Channel, opts NotificationOptions, m *metrics.Metrics, logger *logger.Logger) *notificationService {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 20 * time.Second
	}
	if opts.MaxParallelSends <= 0 {
		opts.MaxParallelSends = 1
	}
	return &notificationService{
		channels: channels,
		opts:     opts,
		metrics:  m,
		logger:   logger,
	}
}

func (s *notificationService) Dispatch(ctx context.Context, event *models.SOSEvent) []models.ContactOutcome {
	start := time.Now()
	log := s.logger.WithContext(ctx).WithField("event_id", event.ID)

	outcomes := make([]models.ContactOutcome, len(event.Contacts))
	for i, c := range event.Contacts {
		outcomes[i] = models.ContactOutcome{
			ContactID: c.ID,
			Name:      c.Name,
			Email:     c.Email,
			Phone:     c.Phone,
			Results:   make([]models.ChannelResult, len(s.channels)),
		}
	}

	msg, composeErr := ComposeAlert(event, s.opts.MapURL, s.opts.Timezone)
	if composeErr != nil {
		log.WithError(composeErr).Error("Failed to compose SOS alert")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.DispatchTimeout)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(s.opts.MaxParallelSends)

	for i := range event.Contacts {
		for j, ch := range s.channels {
			contact := event.Contacts[i]
			result := &outcomes[i].Results[j]
			if composeErr != nil {
				*result = models.ChannelResult{
					Channel: ch.Name(),
					Error:   fmt.Errorf("%w: %w", models.ErrChannelSend, composeErr).Error(),
				}
				continue
			}
			if !ch.Reachable(contact) {
				*result = models.ChannelResult{Channel: ch.Name(), Skipped: true}
				continue
			}
			g.Go(func() error {
				*result = s.send(ctx, ch, msg, contact)
				return nil
			})
		}
	}
	_ = g.Wait()

	// A contact with no address on any enabled channel counts as failed.
	for i := range outcomes {
		markUnreachable(&outcomes[i])
	}

	for _, o := range outcomes {
		for _, r := range o.FailedChannels() {
			log.WithFields(map[string]interface{}{
				"channel":       r.Channel,
				"contact_email": utils.MaskEmail(o.Email),
				"contact_phone": utils.MaskPhone(o.Phone),
				"error":         r.Error,
			}).Error("Failed to notify emergency contact")
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveDispatch(time.Since(start))
	}
	return outcomes
}

func (s *notificationService) send(ctx context.Context, ch Channel, msg *AlertMessage, contact models.EmergencyContact) models.ChannelResult {
	start := time.Now()

	sendCtx, cancel := context.WithTimeout(ctx, s.opts.SendTimeout)
	defer cancel()

	err := invokeChannel(sendCtx, ch, msg, contact)
	result := models.ChannelResult{
		Channel:   ch.Name(),
		Delivered: err == nil,
		Duration:  time.Since(start),
	}
	if err != nil {
		result.Error = err.Error()
	}

	if s.metrics != nil {
		s.metrics.ObserveSend(string(result.Channel), result.Delivered, result.Duration)
	}
	return result
}

func markUnreachable(o *models.ContactOutcome) {
	for _, r := range o.Results {
		if !r.Skipped {
			return
		}
	}
	for i := range o.Results {
		o.Results[i].Skipped = false
		o.Results[i].Error = fmt.Errorf("%w: %w", models.ErrChannelSend, models.ErrMissingTarget).Error()
	}
}

// invokeChannel returns when the send finishes or ctx expires, whichever
// comes first. A panicking channel is reported as a failed send.
func invokeChannel(ctx context.Context, ch Channel, msg *AlertMessage, contact models.EmergencyContact) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrChannelSend, err)
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: panic: %v", models.ErrChannelSend, r)
			}
		}()
		if err := ch.Send(ctx, msg, contact); err != nil {
			done <- fmt.Errorf("%w: %w", models.ErrChannelSend, err)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", models.ErrChannelSend, ctx.Err())
	}
}

type emailChannel struct {
	sender EmailSender
}

func (c *emailChannel) Name() models.ChannelName { return models.ChannelEmail }

func (c *emailChannel) Reachable(contact models.EmergencyContact) bool { return contact.Email != "" }

func (c *emailChannel) Send(ctx context.Context, msg *AlertMessage, contact models.EmergencyContact) error {
	if contact.Email == "" {
		return models.ErrMissingTarget
	}
	return c.sender.SendEmail(ctx, contact.Email, msg.Subject, msg.HTML)
}

type smsChannel struct {
	sender SMSSender
}

func (c *smsChannel) Name() models.ChannelName { return models.ChannelSMS }

func (c *smsChannel) Reachable(contact models.EmergencyContact) bool { return contact.Phone != "" }

func (c *smsChannel) Send(ctx context.Context, msg *AlertMessage, contact models.EmergencyContact) error {
	if contact.Phone == "" {
		return models.ErrMissingTarget
	}
	return c.sender.SendSMS(ctx, contact.Phone, msg.Text)
}
