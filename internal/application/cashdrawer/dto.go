package cashdrawer

import (
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenSessionInput carries the fields needed to open a session
type OpenSessionInput struct {
	CashierID     uuid.UUID
	CashierName   string
	StartingFloat *decimal.Decimal
	ShiftLabel    string
	Kind          string
	Notes         string
}

// ClosedSessionInput carries the totals of a shift entered after the fact.
// Nil amounts count as zero, except StartingFloat which is required.
type ClosedSessionInput struct {
	CashierID     uuid.UUID
	CashierName   string
	ShiftLabel    string
	StartingFloat *decimal.Decimal
	CashSales     *decimal.Decimal
	CardSales     *decimal.Decimal
	Expenses      *decimal.Decimal
	Notes         string
}

// RecordMovementInput carries one ledger entry
type RecordMovementInput struct {
	Direction string
	Category  string
	Amount    *decimal.Decimal
}

// ListSessionsFilter narrows the session history
type ListSessionsFilter struct {
	// Date selects sessions opened on that calendar day in the reconciliation timezone
	Date      *time.Time
	Cashier   string
	SortBy    string
	SortOrder string
}

// SessionWithTotals pairs a session with its per-session figures
type SessionWithTotals struct {
	Session *cashdrawer.Session
	Totals  cashdrawer.Totals
}

// SessionHistory is the result of ListSessions
type SessionHistory struct {
	// Summary uses the range formula across every listed session
	Summary cashdrawer.Totals
	History []SessionWithTotals
}

// SessionDetail is the result of GetSessionDetail
type SessionDetail struct {
	Session   *cashdrawer.Session
	Totals    cashdrawer.Totals
	Movements []cashdrawer.Movement
}

// ReconciliationResult is returned by ReconciliationService.Generate
type ReconciliationResult struct {
	Report       *cashdrawer.ReconciliationReport
	Totals       cashdrawer.Totals
	SessionCount int
	Range        cashdrawer.ReconciliationRange
}
