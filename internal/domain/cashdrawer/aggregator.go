package cashdrawer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Totals are the figures derived from a set of ledger entries
type Totals struct {
	CashSales  decimal.Decimal `json:"cash_sales"`
	CardSales  decimal.Decimal `json:"card_sales"`
	Expenses   decimal.Decimal `json:"expenses"`
	TotalSales decimal.Decimal `json:"total_sales"`
	Net        decimal.Decimal `json:"net"`
}

// ZeroTotals returns totals with every field set to zero
func ZeroTotals() Totals {
	return Totals{
		CashSales:  decimal.Zero,
		CardSales:  decimal.Zero,
		Expenses:   decimal.Zero,
		TotalSales: decimal.Zero,
		Net:        decimal.Zero,
	}
}

// SessionMovements pairs a session with its ledger entries
type SessionMovements struct {
	Session   *Session
	Movements []Movement
}

// Bucket is the aggregation bucket a movement falls into
type Bucket int

const (
	BucketCash Bucket = iota
	BucketCard
	BucketExpense
)

// Categorize applies the fixed categorization rule. Outflows are always
// expenses. Inflows tagged CARD_SALES are card sales; every other inflow,
// including unrecognized free-text categories, is counted as cash.
func Categorize(m Movement) Bucket {
	if m.Direction == DirectionOutflow {
		return BucketExpense
	}
	switch strings.ToUpper(strings.TrimSpace(m.Category)) {
	case CategoryCardSales:
		return BucketCard
	default:
		return BucketCash
	}
}

type sums struct {
	cash, card, expenses decimal.Decimal
}

func (s *sums) add(movements []Movement) {
	for _, m := range movements {
		switch Categorize(m) {
		case BucketCash:
			s.cash = s.cash.Add(m.Amount)
		case BucketCard:
			s.card = s.card.Add(m.Amount)
		case BucketExpense:
			s.expenses = s.expenses.Add(m.Amount)
		}
	}
}

// AggregateSession derives the physical cash count of one session.
// Card sales are reported but excluded from Net, since card settlement
// happens outside the drawer: Net = startingFloat + cash - expenses.
func AggregateSession(session *Session, movements []Movement) Totals {
	s := sums{cash: decimal.Zero, card: decimal.Zero, expenses: decimal.Zero}
	s.add(movements)

	return Totals{
		CashSales:  s.cash,
		CardSales:  s.card,
		Expenses:   s.expenses,
		TotalSales: s.cash.Add(s.card),
		Net:        session.StartingFloat.Add(s.cash).Sub(s.expenses),
	}
}

// AggregateRange rolls up several sessions for accounting purposes:
// Net = cash + card - expenses, without starting floats.
// An empty input yields ZeroTotals.
func AggregateRange(sessions []SessionMovements) Totals {
	s := sums{cash: decimal.Zero, card: decimal.Zero, expenses: decimal.Zero}
	for _, sm := range sessions {
		s.add(sm.Movements)
	}

	return Totals{
		CashSales:  s.cash,
		CardSales:  s.card,
		Expenses:   s.expenses,
		TotalSales: s.cash.Add(s.card),
		Net:        s.cash.Add(s.card).Sub(s.expenses),
	}
}
