package handler

import (
	"time"

	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest opens a session for the caller
type OpenSessionRequest struct {
	StartingFloat *decimal.Decimal `json:"starting_float" binding:"required" swaggertype:"number" example:"500"`
	ShiftLabel    string           `json:"shift_label" binding:"max=100" example:"Matutino"`
	// Kind is SHIFT (default) or FINAL
	Kind  string `json:"kind" binding:"omitempty,max=10" example:"SHIFT"`
	Notes string `json:"notes" binding:"max=1000"`
}

// ClosedSessionRequest records a whole shift after the fact
type ClosedSessionRequest struct {
	StartingFloat *decimal.Decimal `json:"starting_float" binding:"required" swaggertype:"number" example:"500"`
	CashSales     *decimal.Decimal `json:"cash_sales" swaggertype:"number" example:"1200.50"`
	CardSales     *decimal.Decimal `json:"card_sales" swaggertype:"number" example:"800"`
	Expenses      *decimal.Decimal `json:"expenses" swaggertype:"number" example:"150"`
	ShiftLabel    string           `json:"shift_label" binding:"max=100"`
	Notes         string           `json:"notes" binding:"max=1000"`
}

// CloseSessionRequest closes an open session
type CloseSessionRequest struct {
	FinalAmount *decimal.Decimal `json:"final_amount" binding:"required" swaggertype:"number" example:"2350.50"`
}

// RecordMovementRequest records one ledger entry
type RecordMovementRequest struct {
	Direction string           `json:"direction" binding:"required" example:"INFLOW"`
	Category  string           `json:"category" binding:"max=100" example:"CASH_SALES"`
	Amount    *decimal.Decimal `json:"amount" binding:"required" swaggertype:"number" example:"120"`
}

// SessionResponse is the public view of a cash session. Amounts are
// decimal strings.
type SessionResponse struct {
	ID            uuid.UUID        `json:"id"`
	CashierID     uuid.UUID        `json:"cashier_id"`
	CashierName   string           `json:"cashier_name"`
	StartingFloat decimal.Decimal  `json:"starting_float" swaggertype:"string" example:"500"`
	FinalAmount   *decimal.Decimal `json:"final_amount,omitempty" swaggertype:"string" example:"2350.5"`
	OpenedAt      time.Time        `json:"opened_at"`
	ClosedAt      *time.Time       `json:"closed_at,omitempty"`
	ShiftLabel    string           `json:"shift_label"`
	Kind          string           `json:"kind" example:"SHIFT"`
	State         string           `json:"state" example:"OPEN"`
	Notes         string           `json:"notes,omitempty"`
}

// MovementResponse is the public view of a ledger entry
type MovementResponse struct {
	ID         uuid.UUID       `json:"id"`
	SessionID  uuid.UUID       `json:"session_id"`
	Direction  string          `json:"direction"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"120"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// SessionTotalsResponse is a session with its own figures
type SessionTotalsResponse struct {
	SessionResponse
	Totals cashdrawer.Totals `json:"totals"`
}

// SessionHistoryResponse is the filtered history with its summary
type SessionHistoryResponse struct {
	Summary cashdrawer.Totals       `json:"summary"`
	History []SessionTotalsResponse `json:"history"`
}

// SessionDetailResponse is a session with its totals and ledger
type SessionDetailResponse struct {
	Session   SessionResponse    `json:"session"`
	Totals    cashdrawer.Totals  `json:"totals"`
	Movements []MovementResponse `json:"movements"`
}

// ClosedSessionResponse is a session recorded after the fact with its synthesized movements
type ClosedSessionResponse struct {
	Session   SessionResponse    `json:"session"`
	Movements []MovementResponse `json:"movements"`
}

func toSessionResponse(s *cashdrawer.Session) SessionResponse {
	return SessionResponse{
		ID:            s.ID,
		CashierID:     s.CashierID,
		CashierName:   s.CashierName,
		StartingFloat: s.StartingFloat,
		FinalAmount:   s.FinalAmount,
		OpenedAt:      s.OpenedAt,
		ClosedAt:      s.ClosedAt,
		ShiftLabel:    s.ShiftLabel,
		Kind:          string(s.Kind),
		State:         string(s.State),
		Notes:         s.Notes,
	}
}

func toMovementResponse(m *cashdrawer.Movement) MovementResponse {
	return MovementResponse{
		ID:         m.ID,
		SessionID:  m.SessionID,
		Direction:  string(m.Direction),
		Category:   m.Category,
		Amount:     m.Amount,
		RecordedAt: m.RecordedAt,
	}
}

func toMovementResponses(movements []cashdrawer.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = toMovementResponse(&movements[i])
	}
	return out
}

func toSessionHistoryResponse(h *appcash.SessionHistory) SessionHistoryResponse {
	history := make([]SessionTotalsResponse, len(h.History))
	for i, item := range h.History {
		history[i] = SessionTotalsResponse{
			SessionResponse: toSessionResponse(item.Session),
			Totals:          item.Totals,
		}
	}
	return SessionHistoryResponse{Summary: h.Summary, History: history}
}
