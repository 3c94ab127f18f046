package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestLedgerMetrics(t *testing.T) (*LedgerMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func int64Sum(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestLedgerMetrics_EventTypes(t *testing.T) {
	m, _ := newTestLedgerMetrics(t)
	assert.ElementsMatch(t, []string{
		cashdrawer.EventTypeSessionOpened,
		cashdrawer.EventTypeSessionClosed,
		cashdrawer.EventTypeMovementRecorded,
		cashdrawer.EventTypeReconciliationGenerated,
	}, m.EventTypes())
}

func TestLedgerMetrics_Handle(t *testing.T) {
	m, reader := newTestLedgerMetrics(t)
	ctx := context.Background()

	session := &cashdrawer.Session{
		CashierID:     uuid.New(),
		Kind:          cashdrawer.SessionKindShift,
		StartingFloat: decimal.NewFromInt(500),
		OpenedAt:      time.Now(),
	}
	session.ID = uuid.New()
	require.NoError(t, m.Handle(ctx, cashdrawer.NewSessionOpenedEvent(session)))
	require.NoError(t, m.Handle(ctx, cashdrawer.NewSessionClosedEvent(session)))

	for _, amount := range []int64{100, 250} {
		require.NoError(t, m.Handle(ctx, cashdrawer.NewMovementRecordedEvent(&cashdrawer.Movement{
			ID:        uuid.New(),
			SessionID: session.ID,
			Direction: cashdrawer.DirectionInflow,
			Amount:    decimal.NewFromInt(amount),
		})))
	}

	require.NoError(t, m.Handle(ctx, &cashdrawer.ReconciliationGeneratedEvent{
		ReportID:     uuid.New(),
		Totals:       cashdrawer.Totals{Net: decimal.NewFromInt(350)},
		SessionCount: 2,
	}))

	data := collect(t, reader)
	kind := AttrSessionKind.String(string(cashdrawer.SessionKindShift))
	assert.Equal(t, int64(1), int64Sum(t, data["corte_sessions_opened_total"], kind))
	assert.Equal(t, int64(1), int64Sum(t, data["corte_sessions_closed_total"], kind))
	assert.Equal(t, int64(2), int64Sum(t, data["corte_movements_total"],
		AttrDirection.String(string(cashdrawer.DirectionInflow))))
	assert.Equal(t, int64(1), int64Sum(t, data["corte_reconciliations_total"]))

	amount, ok := data["corte_movement_amount_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 350.0, amount.DataPoints[0].Value, 0.001)

	net, ok := data["corte_reconciliation_net"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, net.DataPoints, 1)
	assert.Equal(t, uint64(1), net.DataPoints[0].Count)
	assert.InDelta(t, 350.0, net.DataPoints[0].Sum, 0.001)
}

func TestLedgerMetrics_ObserveDelivery(t *testing.T) {
	m, reader := newTestLedgerMetrics(t)
	ctx := context.Background()
	eventType := cashdrawer.EventTypeReconciliationGenerated

	m.ObserveDelivery(ctx, eventType, nil, false)
	m.ObserveDelivery(ctx, eventType, nil, false)
	m.ObserveDelivery(ctx, eventType, errors.New("smtp down"), false)
	m.ObserveDelivery(ctx, eventType, errors.New("smtp down"), true)

	data := collect(t, reader)["corte_outbox_deliveries_total"]
	typ := AttrEventType.String(eventType)
	assert.Equal(t, int64(2), int64Sum(t, data, typ, AttrOutcome.String(OutcomeDelivered)))
	assert.Equal(t, int64(1), int64Sum(t, data, typ, AttrOutcome.String(OutcomeRetry)))
	assert.Equal(t, int64(1), int64Sum(t, data, typ, AttrOutcome.String(OutcomeDead)))
}
