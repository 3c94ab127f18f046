package telemetry

import (
	"context"
	"fmt"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrSessionKind = attribute.Key("session.kind")
	AttrDirection   = attribute.Key("movement.direction")
	AttrEventType   = attribute.Key("event.type")
	AttrOutcome     = attribute.Key("outcome")
)

// Delivery outcomes
const (
	OutcomeDelivered = "delivered"
	OutcomeRetry     = "retry"
	OutcomeDead      = "dead"
)

// LedgerMetrics counts cash-drawer activity from domain events and outbox
// delivery attempts. It is subscribed to the event bus like any handler.
type LedgerMetrics struct {
	sessionsOpened   metric.Int64Counter
	sessionsClosed   metric.Int64Counter
	movements        metric.Int64Counter
	movementAmount   metric.Float64Counter
	reconciliations  metric.Int64Counter
	reconciledNet    metric.Float64Histogram
	reconciledShifts metric.Int64Histogram
	deliveries       metric.Int64Counter
}

// NewLedgerMetrics registers the instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error
	if m.sessionsOpened, err = meter.Int64Counter("corte_sessions_opened_total",
		metric.WithDescription("Cash sessions opened")); err != nil {
		return nil, fmt.Errorf("sessions opened counter: %w", err)
	}
	if m.sessionsClosed, err = meter.Int64Counter("corte_sessions_closed_total",
		metric.WithDescription("Cash sessions closed")); err != nil {
		return nil, fmt.Errorf("sessions closed counter: %w", err)
	}
	if m.movements, err = meter.Int64Counter("corte_movements_total",
		metric.WithDescription("Ledger movements recorded")); err != nil {
		return nil, fmt.Errorf("movements counter: %w", err)
	}
	if m.movementAmount, err = meter.Float64Counter("corte_movement_amount_total",
		metric.WithDescription("Sum of recorded movement amounts"), metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("movement amount counter: %w", err)
	}
	if m.reconciliations, err = meter.Int64Counter("corte_reconciliations_total",
		metric.WithDescription("Reconciliation reports generated")); err != nil {
		return nil, fmt.Errorf("reconciliations counter: %w", err)
	}
	if m.reconciledNet, err = meter.Float64Histogram("corte_reconciliation_net",
		metric.WithDescription("Net amount per reconciliation report"), metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("reconciliation net histogram: %w", err)
	}
	if m.reconciledShifts, err = meter.Int64Histogram("corte_reconciliation_sessions",
		metric.WithDescription("Shift sessions covered per reconciliation report")); err != nil {
		return nil, fmt.Errorf("reconciliation sessions histogram: %w", err)
	}
	if m.deliveries, err = meter.Int64Counter("corte_outbox_deliveries_total",
		metric.WithDescription("Outbox delivery attempts by outcome")); err != nil {
		return nil, fmt.Errorf("deliveries counter: %w", err)
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *LedgerMetrics) EventTypes() []string {
	return []string{
		cashdrawer.EventTypeSessionOpened,
		cashdrawer.EventTypeSessionClosed,
		cashdrawer.EventTypeMovementRecorded,
		cashdrawer.EventTypeReconciliationGenerated,
	}
}

// Handle records one event; it never fails
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *cashdrawer.SessionOpenedEvent:
		m.sessionsOpened.Add(ctx, 1, metric.WithAttributes(AttrSessionKind.String(string(e.Kind))))
	case *cashdrawer.SessionClosedEvent:
		m.sessionsClosed.Add(ctx, 1, metric.WithAttributes(AttrSessionKind.String(string(e.Kind))))
	case *cashdrawer.MovementRecordedEvent:
		attrs := metric.WithAttributes(AttrDirection.String(string(e.Direction)))
		m.movements.Add(ctx, 1, attrs)
		m.movementAmount.Add(ctx, e.Amount.InexactFloat64(), attrs)
	case *cashdrawer.ReconciliationGeneratedEvent:
		m.reconciliations.Add(ctx, 1)
		m.reconciledNet.Record(ctx, e.Totals.Net.InexactFloat64())
		m.reconciledShifts.Record(ctx, int64(e.SessionCount))
	}
	return nil
}

// ObserveDelivery counts one outbox delivery attempt
func (m *LedgerMetrics) ObserveDelivery(ctx context.Context, eventType string, err error, dead bool) {
	outcome := OutcomeDelivered
	switch {
	case dead:
		outcome = OutcomeDead
	case err != nil:
		outcome = OutcomeRetry
	}
	m.deliveries.Add(ctx, 1, metric.WithAttributes(
		AttrEventType.String(eventType),
		AttrOutcome.String(outcome),
	))
}

var _ shared.EventHandler = (*LedgerMetrics)(nil)
