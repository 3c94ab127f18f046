package printing

import (
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportTitle heads both document formats
const ReportTitle = "Reporte Final de Corte de Caja"

// reportView is the flattened payload both renderers read
type reportView struct {
	Title                  string
	GeneratedAt            time.Time
	FinalSessionID         uuid.UUID
	FinalCashierName       string
	Floor                  time.Time
	Ceiling                time.Time
	FloorFromPrevious      bool
	Totals                 cashdrawer.Totals
	Sessions               []sessionRow
	IncludesFinalMovements bool
}

type sessionRow struct {
	ID            uuid.UUID
	CashierID     uuid.UUID
	CashierName   string
	ShiftLabel    string
	OpenedAt      time.Time
	ClosedAt      *time.Time
	StartingFloat decimal.Decimal
	FinalAmount   *decimal.Decimal
	Totals        cashdrawer.Totals
}

func newReportView(payload *cashdrawer.ReconciliationPayload) (*reportView, error) {
	if payload == nil || payload.FinalSession == nil {
		return nil, NewRenderError(ErrCodeInvalidPayload, "reconciliation payload has no final session", nil)
	}

	view := &reportView{
		Title:                  ReportTitle,
		GeneratedAt:            payload.GeneratedAt,
		FinalSessionID:         payload.FinalSession.ID,
		FinalCashierName:       payload.FinalSession.CashierName,
		Floor:                  payload.Range.Floor,
		Ceiling:                payload.Range.Ceiling,
		FloorFromPrevious:      payload.Range.FloorFromPrevious(),
		Totals:                 payload.Totals,
		Sessions:               make([]sessionRow, 0, len(payload.Sessions)),
		IncludesFinalMovements: payload.IncludesFinalMovements,
	}
	for _, s := range payload.Sessions {
		totals, ok := payload.SessionTotals[s.ID]
		if !ok {
			totals = cashdrawer.ZeroTotals()
		}
		view.Sessions = append(view.Sessions, sessionRow{
			ID:            s.ID,
			CashierID:     s.CashierID,
			CashierName:   s.CashierName,
			ShiftLabel:    s.ShiftLabel,
			OpenedAt:      s.OpenedAt,
			ClosedAt:      s.ClosedAt,
			StartingFloat: s.StartingFloat,
			FinalAmount:   s.FinalAmount,
			Totals:        totals,
		})
	}
	return view, nil
}
