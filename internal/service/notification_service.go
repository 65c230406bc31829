package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/config"
	"github.com/hrdiaspora/diaspora-service/internal/events"
)

// NotificationService forwards domain events to staff-facing channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	webhook    *resty.Client
}

// NewNotificationService creates the service. The webhook client is only
// built when a webhook URL is configured.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	n := &NotificationService{
		dispatcher: dispatcher,
		logger:     nopLogger(logger),
		cfg:        cfg,
	}
	if strings.TrimSpace(cfg.WebhookURL) != "" {
		timeout := time.Duration(cfg.WebhookTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		n.webhook = resty.New().
			SetTimeout(timeout).
			SetRetryCount(cfg.WebhookRetries).
			SetRetryWaitTime(200*time.Millisecond).
			SetRetryMaxWaitTime(2*time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= 500
			}).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json")
	}
	return n
}

// RegisterHandlers subscribes to every domain event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	events.SubscribeAll(n.dispatcher, n.handle)
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(event)
	return n.sendWebhook(ctx, event)
}

// sendEmailNotificationStub only logs; outbound mail is not wired.
func (n *NotificationService) sendEmailNotificationStub(event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	switch event.Type {
	case events.EventReferralCreated, events.EventDiasporaRegistered:
		n.logger.Debug("sendEmailNotificationStub",
			zap.String("from", n.cfg.EmailFrom),
			zap.String("subject_id", event.SubjectID),
			zap.String("event_type", string(event.Type)))
	}
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	if n.webhook == nil {
		return nil
	}
	resp, err := n.webhook.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", string(event.Type)).
		SetBody(event).
		Post(n.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", event.Type, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s: unexpected status %d", event.Type, resp.StatusCode())
	}
	n.logger.Debug("webhook delivered",
		zap.String("event_type", string(event.Type)),
		zap.Int("status_code", resp.StatusCode()))
	return nil
}
