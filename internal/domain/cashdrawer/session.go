package cashdrawer

import (
	"fmt"
	"strings"
	"time"

	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeSession is the aggregate type name used for session events
const AggregateTypeSession = "CashSession"

// DefaultNotes is stored when a session is created without notes
const DefaultNotes = "Ninguna"

// SessionKind distinguishes a cashier shift from a reconciliation checkpoint
type SessionKind string

const (
	SessionKindShift SessionKind = "SHIFT"
	SessionKindFinal SessionKind = "FINAL"
)

// IsValid checks if the kind is a valid SessionKind
func (k SessionKind) IsValid() bool {
	return k == SessionKindShift || k == SessionKindFinal
}

// String returns the string representation of SessionKind
func (k SessionKind) String() string {
	return string(k)
}

// ParseSessionKind normalizes user input, defaulting to SHIFT when empty
func ParseSessionKind(s string) (SessionKind, error) {
	if strings.TrimSpace(s) == "" {
		return SessionKindShift, nil
	}
	kind := SessionKind(strings.ToUpper(strings.TrimSpace(s)))
	if !kind.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("invalid session kind %q", s))
	}
	return kind, nil
}

// SessionState is the position of a session in its lifecycle
type SessionState string

const (
	SessionStateOpen   SessionState = "OPEN"
	SessionStateClosed SessionState = "CLOSED"
)

// String returns the string representation of SessionState
func (s SessionState) String() string {
	return string(s)
}

// Session is one cash-drawer accounting period (a "corte").
// A session is OPEN until it is closed exactly once; it is never reopened.
type Session struct {
	shared.BaseAggregateRoot
	CashierID     uuid.UUID
	CashierName   string
	StartingFloat decimal.Decimal
	FinalAmount   *decimal.Decimal
	OpenedAt      time.Time
	ClosedAt      *time.Time
	ShiftLabel    string
	Kind          SessionKind
	State         SessionState
	Notes         string
}

// OpenParams carries the inputs for opening a session
type OpenParams struct {
	CashierID     uuid.UUID
	CashierName   string
	StartingFloat *decimal.Decimal
	ShiftLabel    string
	Kind          SessionKind
	Notes         string
}

// NewSession opens a new session at the current time
func NewSession(p OpenParams) (*Session, error) {
	if p.CashierID == uuid.Nil {
		return nil, shared.NewValidationError("cashier is required")
	}
	if p.StartingFloat == nil {
		return nil, shared.NewValidationError("starting float is required")
	}
	if p.StartingFloat.IsNegative() {
		return nil, shared.NewValidationError("starting float cannot be negative")
	}
	kind := p.Kind
	if kind == "" {
		kind = SessionKindShift
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid session kind %q", kind))
	}

	s := &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CashierID:         p.CashierID,
		CashierName:       strings.TrimSpace(p.CashierName),
		StartingFloat:     *p.StartingFloat,
		ShiftLabel:        strings.TrimSpace(p.ShiftLabel),
		Kind:              kind,
		State:             SessionStateOpen,
		Notes:             normalizeNotes(p.Notes),
	}
	s.OpenedAt = s.CreatedAt

	s.AddDomainEvent(NewSessionOpenedEvent(s))
	return s, nil
}

// TotalsParams carries the after-the-fact totals of a finished shift
type TotalsParams struct {
	CashierID     uuid.UUID
	CashierName   string
	ShiftLabel    string
	StartingFloat decimal.Decimal
	CashSales     decimal.Decimal
	CardSales     decimal.Decimal
	Expenses      decimal.Decimal
	Notes         string
}

// NewClosedSessionWithTotals builds a session that is already CLOSED, with
// final amount startingFloat + cash + card - expenses, together with one
// synthesized movement per nonzero input. Callers must persist the session
// and the movements in a single transaction.
func NewClosedSessionWithTotals(p TotalsParams) (*Session, []*Movement, error) {
	if p.CashierID == uuid.Nil {
		return nil, nil, shared.NewValidationError("cashier is required")
	}
	inputs := []struct {
		name  string
		value decimal.Decimal
	}{
		{"starting float", p.StartingFloat},
		{"cash sales", p.CashSales},
		{"card sales", p.CardSales},
		{"expenses", p.Expenses},
	}
	for _, in := range inputs {
		if in.value.IsNegative() {
			return nil, nil, shared.NewValidationError(in.name + " cannot be negative")
		}
	}

	net := p.StartingFloat.Add(p.CashSales).Add(p.CardSales).Sub(p.Expenses)
	s := &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CashierID:         p.CashierID,
		CashierName:       strings.TrimSpace(p.CashierName),
		StartingFloat:     p.StartingFloat,
		FinalAmount:       &net,
		ShiftLabel:        strings.TrimSpace(p.ShiftLabel),
		Kind:              SessionKindShift,
		State:             SessionStateClosed,
		Notes:             normalizeNotes(p.Notes),
	}
	s.OpenedAt = s.CreatedAt
	closedAt := s.CreatedAt
	s.ClosedAt = &closedAt

	movements := make([]*Movement, 0, 3)
	if !p.CashSales.IsZero() {
		movements = append(movements, newMovementAt(s.ID, DirectionInflow, CategoryCashSales, p.CashSales, s.OpenedAt))
	}
	if !p.CardSales.IsZero() {
		movements = append(movements, newMovementAt(s.ID, DirectionInflow, CategoryCardSales, p.CardSales, s.OpenedAt))
	}
	if !p.Expenses.IsZero() {
		movements = append(movements, newMovementAt(s.ID, DirectionOutflow, CategoryExpenses, p.Expenses, s.OpenedAt))
	}

	s.AddDomainEvent(NewSessionClosedEvent(s))
	return s, movements, nil
}

// Close transitions the session OPEN -> CLOSED
func (s *Session) Close(finalAmount decimal.Decimal) error {
	if s.State == SessionStateClosed {
		return shared.NewInvalidStateError("cash session is already closed")
	}
	now := shared.Now()
	s.State = SessionStateClosed
	s.FinalAmount = &finalAmount
	s.ClosedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSessionClosedEvent(s))
	return nil
}

// IsOpen reports whether movements may still be recorded
func (s *Session) IsOpen() bool {
	return s.State == SessionStateOpen
}

// IsFinal reports whether the session is a reconciliation checkpoint
func (s *Session) IsFinal() bool {
	return s.Kind == SessionKindFinal
}

// CheckInvariants verifies that close timestamp and final amount are set
// if and only if the session is closed.
func (s *Session) CheckInvariants() error {
	closed := s.State == SessionStateClosed
	if (s.ClosedAt != nil) != closed {
		return shared.NewInvalidStateError("close timestamp must be set iff session is closed")
	}
	if (s.FinalAmount != nil) != closed {
		return shared.NewInvalidStateError("final amount must be set iff session is closed")
	}
	return nil
}

func normalizeNotes(notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return DefaultNotes
	}
	return notes
}
