package cashdrawer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionService handles the session lifecycle and the movement ledger
type SessionService struct {
	sessionRepo  cashdrawer.SessionRepository
	movementRepo cashdrawer.MovementRepository
	txScope      TransactionScope
	location     *time.Location
	logger       *zap.Logger
}

// NewSessionService creates a new SessionService. loc is the timezone
// used to interpret calendar-day filters.
func NewSessionService(
	sessionRepo cashdrawer.SessionRepository,
	movementRepo cashdrawer.MovementRepository,
	txScope TransactionScope,
	loc *time.Location,
	logger *zap.Logger,
) *SessionService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		sessionRepo:  sessionRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		location:     loc,
		logger:       logger,
	}
}

// Open starts a new OPEN session stamped with the current time
func (s *SessionService) Open(ctx context.Context, input OpenSessionInput) (*cashdrawer.Session, error) {
	kind, err := cashdrawer.ParseSessionKind(input.Kind)
	if err != nil {
		return nil, err
	}

	session, err := cashdrawer.NewSession(cashdrawer.OpenParams{
		CashierID:     input.CashierID,
		CashierName:   input.CashierName,
		StartingFloat: input.StartingFloat,
		ShiftLabel:    input.ShiftLabel,
		Kind:          kind,
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Sessions().Save(ctx, session); err != nil {
			return err
		}
		return repos.Events().Write(ctx, session.GetDomainEvents()...)
	})
	if err != nil {
		return nil, loadError("open cash session", err)
	}
	session.ClearDomainEvents()

	s.logger.Info("cash session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("cashier_id", session.CashierID.String()),
		zap.String("kind", session.Kind.String()),
	)
	return session, nil
}

// Close moves an OPEN session to CLOSED with the counted final amount. The
// transition is applied to the loaded session and then persisted with a
// conditional update, so a concurrent close or movement cannot interleave.
func (s *SessionService) Close(ctx context.Context, sessionID uuid.UUID, finalAmount *decimal.Decimal) (*cashdrawer.Session, error) {
	if finalAmount == nil {
		return nil, shared.NewValidationError("final amount is required")
	}

	var closed *cashdrawer.Session
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		session, err := repos.Sessions().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := session.Close(*finalAmount); err != nil {
			return err
		}

		ok, err := repos.Sessions().CloseIfOpen(ctx, sessionID, *session.FinalAmount, *session.ClosedAt)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewInvalidStateError("cash session is already closed")
		}

		closed = session
		return repos.Events().Write(ctx, session.GetDomainEvents()...)
	})
	if err != nil {
		return nil, loadError("close cash session", err)
	}
	closed.ClearDomainEvents()

	s.logger.Info("cash session closed",
		zap.String("session_id", sessionID.String()),
		zap.String("final_amount", finalAmount.String()),
	)
	return closed, nil
}

// CreateClosedWithTotals records a finished shift in one step: the session is
// stored already CLOSED together with one synthesized movement per nonzero
// total. Either everything is written or nothing is.
func (s *SessionService) CreateClosedWithTotals(ctx context.Context, input ClosedSessionInput) (*cashdrawer.Session, []*cashdrawer.Movement, error) {
	if input.StartingFloat == nil {
		return nil, nil, shared.NewValidationError("starting float is required")
	}

	session, movements, err := cashdrawer.NewClosedSessionWithTotals(cashdrawer.TotalsParams{
		CashierID:     input.CashierID,
		CashierName:   input.CashierName,
		ShiftLabel:    input.ShiftLabel,
		StartingFloat: *input.StartingFloat,
		CashSales:     orZero(input.CashSales),
		CardSales:     orZero(input.CardSales),
		Expenses:      orZero(input.Expenses),
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Sessions().Save(ctx, session); err != nil {
			return err
		}
		if err := repos.Movements().SaveAll(ctx, movements); err != nil {
			return err
		}
		return repos.Events().Write(ctx, session.GetDomainEvents()...)
	})
	if err != nil {
		return nil, nil, loadError("record closed cash session", err)
	}
	session.ClearDomainEvents()

	s.logger.Info("closed cash session recorded",
		zap.String("session_id", session.ID.String()),
		zap.String("final_amount", session.FinalAmount.String()),
		zap.Int("movements", len(movements)),
	)
	return session, movements, nil
}

// Delete removes a session and its movements
func (s *SessionService) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return loadError("delete cash session", err)
	}
	s.logger.Info("cash session deleted", zap.String("session_id", sessionID.String()))
	return nil
}

// RecordMovement appends a ledger entry to an OPEN session. The append is
// conditional on the session state at write time; when nothing is written
// the session is re-read only to choose between NotFound and InvalidState.
func (s *SessionService) RecordMovement(ctx context.Context, sessionID uuid.UUID, input RecordMovementInput) (*cashdrawer.Movement, error) {
	direction, err := cashdrawer.ParseDirection(input.Direction)
	if err != nil {
		return nil, err
	}
	movement, err := cashdrawer.NewMovement(sessionID, direction, input.Category, input.Amount)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ok, err := repos.Movements().AppendIfSessionOpen(ctx, movement)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := repos.Sessions().FindByID(ctx, sessionID); err != nil {
				return err
			}
			return shared.NewInvalidStateError("cannot record a movement on a closed cash session")
		}
		return repos.Events().Write(ctx, cashdrawer.NewMovementRecordedEvent(movement))
	})
	if err != nil {
		return nil, loadError("record movement", err)
	}
	return movement, nil
}

// ListMovements returns the session's movements newest first
func (s *SessionService) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]cashdrawer.Movement, error) {
	if _, err := s.sessionRepo.FindByID(ctx, sessionID); err != nil {
		return nil, loadError("load cash session", err)
	}
	movements, err := s.movementRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, loadError("load movements", err)
	}
	if movements == nil {
		movements = []cashdrawer.Movement{}
	}
	return movements, nil
}

// GetSessionDetail returns a session with its per-session totals and movements
func (s *SessionService) GetSessionDetail(ctx context.Context, sessionID uuid.UUID) (*SessionDetail, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, loadError("load cash session", err)
	}
	movements, err := s.movementRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, loadError("load movements", err)
	}
	if movements == nil {
		movements = []cashdrawer.Movement{}
	}
	return &SessionDetail{
		Session:   session,
		Totals:    cashdrawer.AggregateSession(session, movements),
		Movements: movements,
	}, nil
}

// ListSessions returns the filtered history newest first plus a summary
// across every listed session.
func (s *SessionService) ListSessions(ctx context.Context, filter ListSessionsFilter) (*SessionHistory, error) {
	repoFilter := cashdrawer.SessionFilter{
		Cashier:   filter.Cashier,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}
	if filter.Date != nil {
		from := cashdrawer.StartOfDay(*filter.Date, s.location)
		to := from.AddDate(0, 0, 1)
		repoFilter.OpenedFrom = &from
		repoFilter.OpenedTo = &to
	}

	sessions, err := s.sessionRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, loadError("list cash sessions", err)
	}

	ids := make([]uuid.UUID, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}
	bySession, err := s.movementRepo.FindBySessions(ctx, ids)
	if err != nil {
		return nil, loadError("load movements", err)
	}

	history := make([]SessionWithTotals, 0, len(sessions))
	grouped := make([]cashdrawer.SessionMovements, 0, len(sessions))
	for _, session := range sessions {
		movements := bySession[session.ID]
		history = append(history, SessionWithTotals{
			Session: session,
			Totals:  cashdrawer.AggregateSession(session, movements),
		})
		grouped = append(grouped, cashdrawer.SessionMovements{Session: session, Movements: movements})
	}

	return &SessionHistory{
		Summary: cashdrawer.AggregateRange(grouped),
		History: history,
	}, nil
}

// ParseDay reads a YYYY-MM-DD calendar day in the reconciliation timezone
func (s *SessionService) ParseDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, day, s.location)
	if err != nil {
		return time.Time{}, shared.NewValidationError(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", day))
	}
	return t, nil
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// isDomainError reports whether err already carries a domain error code
func isDomainError(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de)
}
