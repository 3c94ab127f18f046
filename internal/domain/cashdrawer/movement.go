package cashdrawer

import (
	"fmt"
	"strings"
	"time"

	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tells whether money entered or left the drawer
type Direction string

const (
	DirectionInflow  Direction = "INFLOW"
	DirectionOutflow Direction = "OUTFLOW"
)

// IsValid checks if the direction is INFLOW or OUTFLOW
func (d Direction) IsValid() bool {
	return d == DirectionInflow || d == DirectionOutflow
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// ParseDirection normalizes user input
func ParseDirection(s string) (Direction, error) {
	if strings.TrimSpace(s) == "" {
		return "", shared.NewValidationError("direction is required")
	}
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("invalid direction %q: must be INFLOW or OUTFLOW", s))
	}
	return d, nil
}

// Canonical categories. Inflow categories other than these fall back to cash.
const (
	CategoryCashSales = "CASH_SALES"
	CategoryCardSales = "CARD_SALES"
	CategoryExpenses  = "EXPENSES"
)

// Movement is one append-only ledger entry of a session
type Movement struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	Direction  Direction
	Category   string
	Amount     decimal.Decimal
	RecordedAt time.Time
}

// NewMovement validates and builds a movement stamped with the server time
func NewMovement(sessionID uuid.UUID, direction Direction, category string, amount *decimal.Decimal) (*Movement, error) {
	if sessionID == uuid.Nil {
		return nil, shared.NewValidationError("session id is required")
	}
	if !direction.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid direction %q: must be INFLOW or OUTFLOW", direction))
	}
	if amount == nil {
		return nil, shared.NewValidationError("amount is required")
	}
	return newMovementAt(sessionID, direction, strings.TrimSpace(category), *amount, shared.Now()), nil
}

func newMovementAt(sessionID uuid.UUID, direction Direction, category string, amount decimal.Decimal, at time.Time) *Movement {
	return &Movement{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Direction:  direction,
		Category:   category,
		Amount:     amount,
		RecordedAt: at,
	}
}
