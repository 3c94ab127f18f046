package event

import (
	"testing"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_RegisteredTypes(t *testing.T) {
	s := NewEventSerializer()
	assert.Equal(t, []string{
		cashdrawer.EventTypeMovementRecorded,
		cashdrawer.EventTypeSessionClosed,
		cashdrawer.EventTypeSessionOpened,
		cashdrawer.EventTypeReconciliationGenerated,
	}, s.RegisteredTypes())
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewEventSerializer()
	reportID := uuid.New()
	original := &cashdrawer.ReconciliationGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(cashdrawer.EventTypeReconciliationGenerated, cashdrawer.AggregateTypeReport, reportID),
		ReportID:        reportID,
		FinalSessionID:  uuid.New(),
		PDFURL:          "https://files/r.pdf",
		XLSXURL:         "https://files/r.xlsx",
		RangeFloor:      time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC),
		RangeCeiling:    time.Date(2025, 3, 15, 2, 0, 0, 0, time.UTC),
		Totals: cashdrawer.Totals{
			CashSales:  decimal.RequireFromString("3000.50"),
			CardSales:  decimal.RequireFromString("1000"),
			Expenses:   decimal.RequireFromString("500.25"),
			TotalSales: decimal.RequireFromString("4000.50"),
			Net:        decimal.RequireFromString("3500.25"),
		},
		SessionCount: 3,
	}

	data, err := s.Serialize(original)
	require.NoError(t, err)

	decoded, err := s.Deserialize(cashdrawer.EventTypeReconciliationGenerated, data)
	require.NoError(t, err)
	got, ok := decoded.(*cashdrawer.ReconciliationGeneratedEvent)
	require.True(t, ok)

	assert.Equal(t, original.EventID(), got.EventID())
	assert.Equal(t, original.AggregateID(), got.AggregateID())
	assert.Equal(t, original.ReportID, got.ReportID)
	assert.Equal(t, original.PDFURL, got.PDFURL)
	assert.True(t, original.RangeFloor.Equal(got.RangeFloor))
	assert.True(t, original.Totals.Net.Equal(got.Totals.Net))
	assert.True(t, original.Totals.Expenses.Equal(got.Totals.Expenses))
	assert.Equal(t, 3, got.SessionCount)
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Serialize(newTestEvent("Mystery"))
	assert.Error(t, err)

	_, err = s.Deserialize("Mystery", []byte(`{}`))
	assert.Error(t, err)
}

func TestEventSerializer_InvalidJSON(t *testing.T) {
	_, err := NewEventSerializer().Deserialize(cashdrawer.EventTypeSessionOpened, []byte(`{not json`))
	assert.Error(t, err)
}

func TestEventSerializer_Register(t *testing.T) {
	s := NewEventSerializer()
	s.Register("Custom", &testEvent{})
	assert.True(t, s.IsRegistered("Custom"))

	data, err := s.Serialize(newTestEvent("Custom"))
	require.NoError(t, err)
	decoded, err := s.Deserialize("Custom", data)
	require.NoError(t, err)
	assert.Equal(t, "Custom", decoded.EventType())
}
