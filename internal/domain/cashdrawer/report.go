package cashdrawer

import (
	"time"

	"github.com/google/uuid"
)

// AggregateTypeReport is the aggregate type name used for report events
const AggregateTypeReport = "ReconciliationReport"

// DocumentFormat identifies one rendered artifact of a report
type DocumentFormat string

const (
	DocumentFormatPDF  DocumentFormat = "pdf"
	DocumentFormatXLSX DocumentFormat = "xlsx"
)

// ContentType returns the MIME type used when storing the document
func (f DocumentFormat) ContentType() string {
	switch f {
	case DocumentFormatPDF:
		return "application/pdf"
	case DocumentFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// ReconciliationReport is the immutable record of one successful
// reconciliation run for a FINAL session.
type ReconciliationReport struct {
	ID             uuid.UUID
	FinalSessionID uuid.UUID
	Documents      map[DocumentFormat]string
	GeneratedAt    time.Time
	Range          ReconciliationRange
	Totals         Totals
	SessionCount   int
}

// NewReconciliationReport creates the report record for an already uploaded set of documents
func NewReconciliationReport(payload *ReconciliationPayload, documents map[DocumentFormat]string) *ReconciliationReport {
	docs := make(map[DocumentFormat]string, len(documents))
	for k, v := range documents {
		docs[k] = v
	}
	return &ReconciliationReport{
		ID:             uuid.New(),
		FinalSessionID: payload.FinalSession.ID,
		Documents:      docs,
		GeneratedAt:    payload.GeneratedAt,
		Range:          payload.Range,
		Totals:         payload.Totals,
		SessionCount:   len(payload.Sessions),
	}
}

// DocumentURL returns the URL stored for format, or ""
func (r *ReconciliationReport) DocumentURL(format DocumentFormat) string {
	return r.Documents[format]
}

// ReconciliationPayload is everything a document renderer needs
type ReconciliationPayload struct {
	GeneratedAt  time.Time
	FinalSession *Session
	Range        ReconciliationRange
	Totals       Totals
	// Sessions are the reconciled sessions in ascending timestamp order
	Sessions []*Session
	// SessionTotals holds per-session figures keyed by session id
	SessionTotals map[uuid.UUID]Totals
	// IncludesFinalMovements records whether the FINAL session's own
	// movements were added to Totals.
	IncludesFinalMovements bool
}
