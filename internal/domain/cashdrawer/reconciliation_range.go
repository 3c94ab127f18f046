package cashdrawer

import (
	"time"

	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReconciliationRange is the (Floor, Ceiling] window a FINAL session
// reconciles. Floor is exclusive and Ceiling inclusive.
type ReconciliationRange struct {
	Floor           time.Time  `json:"floor"`
	Ceiling         time.Time  `json:"ceiling"`
	PreviousFinalID *uuid.UUID `json:"previous_final_id,omitempty"`
}

// FloorFromPrevious reports whether the floor came from an earlier checkpoint
// rather than from the start of the day.
func (r ReconciliationRange) FloorFromPrevious() bool {
	return r.PreviousFinalID != nil
}

// ResolveRange computes the window reconciled by final. previous is the most
// recent other FINAL session strictly before final, or nil. When there is no
// previous checkpoint the floor is local midnight of the final's day in loc.
func ResolveRange(final *Session, previous *Session, loc *time.Location) (ReconciliationRange, error) {
	if final == nil || !final.IsFinal() {
		return ReconciliationRange{}, shared.NewNotFoundError("final cash session")
	}
	if loc == nil {
		loc = time.UTC
	}

	r := ReconciliationRange{Ceiling: final.OpenedAt}
	if previous != nil {
		if !previous.IsFinal() || previous.ID == final.ID || !previous.OpenedAt.Before(final.OpenedAt) {
			return ReconciliationRange{}, shared.NewValidationError("previous checkpoint must be an earlier FINAL session")
		}
		prevID := previous.ID
		r.Floor = previous.OpenedAt
		r.PreviousFinalID = &prevID
		return r, nil
	}

	r.Floor = StartOfDay(final.OpenedAt, loc)
	return r, nil
}

// StartOfDay returns midnight of the calendar day containing t in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
