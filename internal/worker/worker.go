package worker

import (
	"context"
	"strconv"

	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/observability"
	"github.com/hrdiaspora/diaspora-service/internal/service"
)

// Subscribers are the in-process consumers of domain events.
type Subscribers struct {
	Notifications *service.NotificationService
	Stream        *events.StreamPublisher
	Metrics       *observability.Metrics
}

// Start registers every configured subscriber on the dispatcher.
func Start(d events.Dispatcher, subs Subscribers) {
	if d == nil {
		return
	}
	StartNotificationWorker(subs.Notifications)
	subs.Stream.Register(d)
	StartMetricsWorker(d, subs.Metrics)
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartMetricsWorker turns domain events into Prometheus counters.
func StartMetricsWorker(d events.Dispatcher, m *observability.Metrics) {
	if m == nil {
		return
	}
	events.SubscribeAll(d, func(_ context.Context, e events.Event) error {
		countEvent(m, e)
		return nil
	})
}

func countEvent(m *observability.Metrics, e events.Event) {
	switch e.Type {
	case events.EventDiasporaRegistered:
		m.DiasporasRegistered.Inc()
	case events.EventCaseOpened:
		m.CasesOpened.Inc()
	case events.EventCaseStageChanged:
		if p, ok := e.Payload.(events.CaseStageChangedPayload); ok {
			m.StageChanges.WithLabelValues(string(p.NewStage), strconv.FormatBool(p.Backward)).Inc()
		}
	case events.EventReferralCreated:
		m.ReferralsCreated.Inc()
	case events.EventReferralReceived:
		m.ReferralTransitions.WithLabelValues("RECEIVED").Inc()
	case events.EventReferralStatusChanged:
		if p, ok := e.Payload.(events.ReferralStatusChangedPayload); ok {
			m.ReferralTransitions.WithLabelValues(string(p.NewStatus)).Inc()
		}
	}
}
