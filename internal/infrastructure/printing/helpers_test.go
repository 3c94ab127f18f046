package printing

import (
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSession(name, label string, openedAt time.Time, float string) *cashdrawer.Session {
	closedAt := openedAt.Add(8 * time.Hour)
	final := dec("0")
	return &cashdrawer.Session{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}},
		CashierID:         uuid.New(),
		CashierName:       name,
		StartingFloat:     dec(float),
		FinalAmount:       &final,
		OpenedAt:          openedAt,
		ClosedAt:          &closedAt,
		ShiftLabel:        label,
		Kind:              cashdrawer.SessionKindShift,
		State:             cashdrawer.SessionStateClosed,
	}
}

func testPayload() *cashdrawer.ReconciliationPayload {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	morning := testSession("Ana", "Matutino", day.Add(7*time.Hour), "500")
	evening := testSession("Luis", "Vespertino", day.Add(15*time.Hour), "300")
	final := testSession("Gerente", "", day.Add(23*time.Hour), "0")
	final.Kind = cashdrawer.SessionKindFinal

	return &cashdrawer.ReconciliationPayload{
		GeneratedAt:  day.Add(23*time.Hour + 30*time.Minute),
		FinalSession: final,
		Range:        cashdrawer.ReconciliationRange{Floor: day, Ceiling: final.OpenedAt},
		Totals: cashdrawer.Totals{
			CashSales:  dec("1234.5"),
			CardSales:  dec("800"),
			Expenses:   dec("134.5"),
			TotalSales: dec("2034.5"),
			Net:        dec("1900"),
		},
		Sessions: []*cashdrawer.Session{morning, evening},
		SessionTotals: map[uuid.UUID]cashdrawer.Totals{
			morning.ID: {CashSales: dec("1000"), CardSales: dec("800"), Expenses: dec("100"), TotalSales: dec("1800"), Net: dec("1400")},
			evening.ID: {CashSales: dec("234.5"), CardSales: dec("0"), Expenses: dec("34.5"), TotalSales: dec("234.5"), Net: dec("500")},
		},
	}
}
