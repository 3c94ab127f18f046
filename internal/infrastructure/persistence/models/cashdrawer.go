package models

import (
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSessionModel is the persistence model for cashdrawer.Session
type CashSessionModel struct {
	BaseModel
	CashierID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	CashierName   string           `gorm:"type:varchar(200);not null;default:''"`
	StartingFloat decimal.Decimal  `gorm:"type:numeric(18,2);not null"`
	FinalAmount   *decimal.Decimal `gorm:"type:numeric(18,2)"`
	OpenedAt      time.Time        `gorm:"not null;index:idx_cash_sessions_kind_opened,priority:2"`
	ClosedAt      *time.Time
	ShiftLabel    string                  `gorm:"type:varchar(100);not null;default:''"`
	Kind          cashdrawer.SessionKind  `gorm:"type:varchar(10);not null;index:idx_cash_sessions_kind_opened,priority:1"`
	State         cashdrawer.SessionState `gorm:"type:varchar(10);not null"`
	Notes         string                  `gorm:"type:text"`
	Movements     []CashMovementModel     `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// ToDomain converts the model to a session without pending events
func (m *CashSessionModel) ToDomain() *cashdrawer.Session {
	s := &cashdrawer.Session{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		CashierID:         m.CashierID,
		CashierName:       m.CashierName,
		StartingFloat:     m.StartingFloat,
		OpenedAt:          m.OpenedAt,
		ClosedAt:          m.ClosedAt,
		ShiftLabel:        m.ShiftLabel,
		Kind:              m.Kind,
		State:             m.State,
		Notes:             m.Notes,
	}
	if m.FinalAmount != nil {
		amount := *m.FinalAmount
		s.FinalAmount = &amount
	}
	return s
}

// FromDomain populates the model from a session
func (m *CashSessionModel) FromDomain(s *cashdrawer.Session) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.CashierID = s.CashierID
	m.CashierName = s.CashierName
	m.StartingFloat = s.StartingFloat
	m.FinalAmount = s.FinalAmount
	m.OpenedAt = s.OpenedAt
	m.ClosedAt = s.ClosedAt
	m.ShiftLabel = s.ShiftLabel
	m.Kind = s.Kind
	m.State = s.State
	m.Notes = s.Notes
}

// CashSessionModelFromDomain creates a model from a session
func CashSessionModelFromDomain(s *cashdrawer.Session) *CashSessionModel {
	m := &CashSessionModel{}
	m.FromDomain(s)
	return m
}

// CashMovementModel is the persistence model for cashdrawer.Movement
type CashMovementModel struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	SessionID  uuid.UUID            `gorm:"type:uuid;not null;index:idx_cash_movements_session_recorded,priority:1"`
	Direction  cashdrawer.Direction `gorm:"type:varchar(10);not null"`
	Category   string               `gorm:"type:varchar(100);not null;default:''"`
	Amount     decimal.Decimal      `gorm:"type:numeric(18,2);not null"`
	RecordedAt time.Time            `gorm:"not null;index:idx_cash_movements_session_recorded,priority:2"`
}

// TableName returns the table name for GORM
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the model to a movement value
func (m *CashMovementModel) ToDomain() cashdrawer.Movement {
	return cashdrawer.Movement{
		ID:         m.ID,
		SessionID:  m.SessionID,
		Direction:  m.Direction,
		Category:   m.Category,
		Amount:     m.Amount,
		RecordedAt: m.RecordedAt,
	}
}

// CashMovementModelFromDomain creates a model from a movement
func CashMovementModelFromDomain(mv *cashdrawer.Movement) *CashMovementModel {
	return &CashMovementModel{
		ID:         mv.ID,
		SessionID:  mv.SessionID,
		Direction:  mv.Direction,
		Category:   mv.Category,
		Amount:     mv.Amount,
		RecordedAt: mv.RecordedAt,
	}
}

// ReconciliationReportModel is the persistence model for
// cashdrawer.ReconciliationReport. The final session id is not a foreign key:
// reports outlive the sessions they summarize.
type ReconciliationReportModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FinalSessionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PDFURL          string          `gorm:"column:pdf_url;type:varchar(1024);not null"`
	XLSXURL         string          `gorm:"column:xlsx_url;type:varchar(1024);not null"`
	GeneratedAt     time.Time       `gorm:"not null;index"`
	RangeFloor      time.Time       `gorm:"not null"`
	RangeCeiling    time.Time       `gorm:"not null"`
	PreviousFinalID *uuid.UUID      `gorm:"type:uuid"`
	CashSales       decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CardSales       decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Expenses        decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TotalSales      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Net             decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	SessionCount    int             `gorm:"not null;default:0"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReconciliationReportModel) TableName() string {
	return "reconciliation_reports"
}

// ToDomain converts the model to a report
func (m *ReconciliationReportModel) ToDomain() *cashdrawer.ReconciliationReport {
	docs := make(map[cashdrawer.DocumentFormat]string, 2)
	if m.PDFURL != "" {
		docs[cashdrawer.DocumentFormatPDF] = m.PDFURL
	}
	if m.XLSXURL != "" {
		docs[cashdrawer.DocumentFormatXLSX] = m.XLSXURL
	}
	return &cashdrawer.ReconciliationReport{
		ID:             m.ID,
		FinalSessionID: m.FinalSessionID,
		Documents:      docs,
		GeneratedAt:    m.GeneratedAt,
		Range: cashdrawer.ReconciliationRange{
			Floor:           m.RangeFloor,
			Ceiling:         m.RangeCeiling,
			PreviousFinalID: m.PreviousFinalID,
		},
		Totals: cashdrawer.Totals{
			CashSales:  m.CashSales,
			CardSales:  m.CardSales,
			Expenses:   m.Expenses,
			TotalSales: m.TotalSales,
			Net:        m.Net,
		},
		SessionCount: m.SessionCount,
	}
}

// ReconciliationReportModelFromDomain creates a model from a report
func ReconciliationReportModelFromDomain(r *cashdrawer.ReconciliationReport) *ReconciliationReportModel {
	return &ReconciliationReportModel{
		ID:              r.ID,
		FinalSessionID:  r.FinalSessionID,
		PDFURL:          r.DocumentURL(cashdrawer.DocumentFormatPDF),
		XLSXURL:         r.DocumentURL(cashdrawer.DocumentFormatXLSX),
		GeneratedAt:     r.GeneratedAt,
		RangeFloor:      r.Range.Floor,
		RangeCeiling:    r.Range.Ceiling,
		PreviousFinalID: r.Range.PreviousFinalID,
		CashSales:       r.Totals.CashSales,
		CardSales:       r.Totals.CardSales,
		Expenses:        r.Totals.Expenses,
		TotalSales:      r.Totals.TotalSales,
		Net:             r.Totals.Net,
		SessionCount:    r.SessionCount,
		CreatedAt:       shared.Now(),
	}
}
