package worker

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/observability"
)

func TestMetricsWorkerCountsEvents(t *testing.T) {
	d := events.NewInMemoryDispatcher(nil)
	m := observability.NewMetrics()
	Start(d, Subscribers{Metrics: m})
	ctx := context.Background()

	for _, e := range []events.Event{
		{Type: events.EventDiasporaRegistered},
		{Type: events.EventCaseOpened},
		{Type: events.EventCaseStageChanged, Payload: events.CaseStageChangedPayload{
			OldStage: domain.CaseStageProcessing, NewStage: domain.CaseStageScreening, Backward: true,
		}},
		{Type: events.EventReferralCreated},
		{Type: events.EventReferralReceived},
		{Type: events.EventReferralStatusChanged, Payload: events.ReferralStatusChangedPayload{
			OldStatus: domain.ReferralStatusReceived, NewStatus: domain.ReferralStatusCompleted,
		}},
	} {
		require.NoError(t, d.Publish(ctx, e))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiasporasRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CasesOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageChanges.WithLabelValues("SCREENING", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReferralsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReferralTransitions.WithLabelValues("RECEIVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReferralTransitions.WithLabelValues("COMPLETED")))
}
