package cashdrawer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionFilter narrows ListSessions. Zero values mean "no filter".
type SessionFilter struct {
	// OpenedFrom/OpenedTo bound OpenedAt as [OpenedFrom, OpenedTo)
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	// Cashier is a case-insensitive substring of the cashier name
	Cashier string
	Kind    SessionKind
	State   SessionState
	// SortBy and SortOrder are whitelisted by the store; newest first otherwise
	SortBy    string
	SortOrder string
}

// SessionRepository persists sessions
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	// CloseIfOpen performs the OPEN -> CLOSED write as a single conditional
	// update. It returns false when no OPEN session with that id exists.
	CloseIfOpen(ctx context.Context, id uuid.UUID, finalAmount decimal.Decimal, closedAt time.Time) (bool, error)
	// Delete removes the session and, through the foreign key, its movements
	Delete(ctx context.Context, id uuid.UUID) error
	// FindAll returns matching sessions newest first
	FindAll(ctx context.Context, filter SessionFilter) ([]*Session, error)
	// FindPreviousFinal returns the latest FINAL session opened strictly
	// before final, or nil when there is none.
	FindPreviousFinal(ctx context.Context, final *Session) (*Session, error)
	// FindShiftsInRange returns SHIFT sessions with floor < OpenedAt <= ceiling, ascending
	FindShiftsInRange(ctx context.Context, floor, ceiling time.Time) ([]*Session, error)
}

// MovementRepository persists ledger entries
type MovementRepository interface {
	// SaveAll inserts movements unconditionally; used by the atomic path
	// inside the same transaction that created their session.
	SaveAll(ctx context.Context, movements []*Movement) error
	// AppendIfSessionOpen inserts the movement only if its session is OPEN at
	// write time, as one statement. It returns false when nothing was written.
	AppendIfSessionOpen(ctx context.Context, movement *Movement) (bool, error)
	// FindBySession returns movements newest first
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]Movement, error)
	// FindBySessions groups movements by session id
	FindBySessions(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID][]Movement, error)
}

// ReportRepository persists reconciliation reports
type ReportRepository interface {
	Save(ctx context.Context, report *ReconciliationReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*ReconciliationReport, error)
	// FindAll returns reports newest first
	FindAll(ctx context.Context) ([]*ReconciliationReport, error)
}
