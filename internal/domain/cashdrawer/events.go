package cashdrawer

import (
	"time"

	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeSessionOpened           = "CashSessionOpened"
	EventTypeSessionClosed           = "CashSessionClosed"
	EventTypeMovementRecorded        = "CashMovementRecorded"
	EventTypeReconciliationGenerated = "ReconciliationGenerated"
)

// SessionOpenedEvent is raised when a session is opened
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID     uuid.UUID       `json:"session_id"`
	CashierID     uuid.UUID       `json:"cashier_id"`
	Kind          SessionKind     `json:"kind"`
	StartingFloat decimal.Decimal `json:"starting_float"`
	OpenedAt      time.Time       `json:"opened_at"`
}

// NewSessionOpenedEvent creates a new SessionOpenedEvent
func NewSessionOpenedEvent(s *Session) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionOpened, AggregateTypeSession, s.ID),
		SessionID:       s.ID,
		CashierID:       s.CashierID,
		Kind:            s.Kind,
		StartingFloat:   s.StartingFloat,
		OpenedAt:        s.OpenedAt,
	}
}

// SessionClosedEvent is raised when a session reaches CLOSED
type SessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID   uuid.UUID       `json:"session_id"`
	CashierID   uuid.UUID       `json:"cashier_id"`
	Kind        SessionKind     `json:"kind"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	ClosedAt    time.Time       `json:"closed_at"`
}

// NewSessionClosedEvent creates a new SessionClosedEvent
func NewSessionClosedEvent(s *Session) *SessionClosedEvent {
	e := &SessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionClosed, AggregateTypeSession, s.ID),
		SessionID:       s.ID,
		CashierID:       s.CashierID,
		Kind:            s.Kind,
	}
	if s.FinalAmount != nil {
		e.FinalAmount = *s.FinalAmount
	}
	if s.ClosedAt != nil {
		e.ClosedAt = *s.ClosedAt
	}
	return e
}

// MovementRecordedEvent is raised when a movement is appended to an open session
type MovementRecordedEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID       `json:"movement_id"`
	SessionID  uuid.UUID       `json:"session_id"`
	Direction  Direction       `json:"direction"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewMovementRecordedEvent creates a new MovementRecordedEvent
func NewMovementRecordedEvent(m *Movement) *MovementRecordedEvent {
	return &MovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementRecorded, AggregateTypeSession, m.SessionID),
		MovementID:      m.ID,
		SessionID:       m.SessionID,
		Direction:       m.Direction,
		Category:        m.Category,
		Amount:          m.Amount,
	}
}

// ReconciliationGeneratedEvent is raised once a report is persisted.
// Notification delivery hangs off this event.
type ReconciliationGeneratedEvent struct {
	shared.BaseDomainEvent
	ReportID       uuid.UUID `json:"report_id"`
	FinalSessionID uuid.UUID `json:"final_session_id"`
	PDFURL         string    `json:"pdf_url"`
	XLSXURL        string    `json:"xlsx_url"`
	RangeFloor     time.Time `json:"range_floor"`
	RangeCeiling   time.Time `json:"range_ceiling"`
	Totals         Totals    `json:"totals"`
	SessionCount   int       `json:"session_count"`
}

// NewReconciliationGeneratedEvent creates a new ReconciliationGeneratedEvent
func NewReconciliationGeneratedEvent(r *ReconciliationReport) *ReconciliationGeneratedEvent {
	return &ReconciliationGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReconciliationGenerated, AggregateTypeReport, r.ID),
		ReportID:        r.ID,
		FinalSessionID:  r.FinalSessionID,
		PDFURL:          r.DocumentURL(DocumentFormatPDF),
		XLSXURL:         r.DocumentURL(DocumentFormatXLSX),
		RangeFloor:      r.Range.Floor,
		RangeCeiling:    r.Range.Ceiling,
		Totals:          r.Totals,
		SessionCount:    r.SessionCount,
	}
}
