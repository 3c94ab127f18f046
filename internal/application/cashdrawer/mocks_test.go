package cashdrawer

import (
	"context"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, session *cashdrawer.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashdrawer.Session), args.Error(1)
}

func (m *MockSessionRepository) CloseIfOpen(ctx context.Context, id uuid.UUID, finalAmount decimal.Decimal, closedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, finalAmount, closedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) FindAll(ctx context.Context, filter cashdrawer.SessionFilter) ([]*cashdrawer.Session, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cashdrawer.Session), args.Error(1)
}

func (m *MockSessionRepository) FindPreviousFinal(ctx context.Context, final *cashdrawer.Session) (*cashdrawer.Session, error) {
	args := m.Called(ctx, final)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashdrawer.Session), args.Error(1)
}

func (m *MockSessionRepository) FindShiftsInRange(ctx context.Context, floor, ceiling time.Time) ([]*cashdrawer.Session, error) {
	args := m.Called(ctx, floor, ceiling)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cashdrawer.Session), args.Error(1)
}

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) SaveAll(ctx context.Context, movements []*cashdrawer.Movement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockMovementRepository) AppendIfSessionOpen(ctx context.Context, movement *cashdrawer.Movement) (bool, error) {
	args := m.Called(ctx, movement)
	return args.Bool(0), args.Error(1)
}

func (m *MockMovementRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]cashdrawer.Movement, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cashdrawer.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindBySessions(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID][]cashdrawer.Movement, error) {
	args := m.Called(ctx, sessionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]cashdrawer.Movement), args.Error(1)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Save(ctx context.Context, report *cashdrawer.ReconciliationReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.ReconciliationReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashdrawer.ReconciliationReport), args.Error(1)
}

func (m *MockReportRepository) FindAll(ctx context.Context) ([]*cashdrawer.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cashdrawer.ReconciliationReport), args.Error(1)
}

// =============================================================================
// Transaction scope and collaborators
// =============================================================================

// recordingEvents keeps written events; err makes Write fail
type recordingEvents struct {
	events []shared.DomainEvent
	err    error
}

func (r *recordingEvents) Write(_ context.Context, events ...shared.DomainEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, events...)
	return nil
}

// fakeScope runs fn directly against the mocks. committed only holds
// events from units of work that returned nil.
type fakeScope struct {
	sessions  *MockSessionRepository
	movements *MockMovementRepository
	reports   *MockReportRepository
	writeErr  error
	committed []shared.DomainEvent
	pending   *recordingEvents
}

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.pending = &recordingEvents{err: s.writeErr}
	if err := fn(s); err != nil {
		return err
	}
	s.committed = append(s.committed, s.pending.events...)
	return nil
}

func (s *fakeScope) Sessions() cashdrawer.SessionRepository   { return s.sessions }
func (s *fakeScope) Movements() cashdrawer.MovementRepository { return s.movements }
func (s *fakeScope) Reports() cashdrawer.ReportRepository     { return s.reports }
func (s *fakeScope) Events() shared.EventWriter               { return s.pending }

func (s *fakeScope) eventTypes() []string {
	types := make([]string, len(s.committed))
	for i, e := range s.committed {
		types[i] = e.EventType()
	}
	return types
}

type MockRenderer struct {
	mock.Mock
	format cashdrawer.DocumentFormat
}

func (m *MockRenderer) Format() cashdrawer.DocumentFormat { return m.format }

func (m *MockRenderer) Render(ctx context.Context, payload *cashdrawer.ReconciliationPayload) ([]byte, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, content, contentType)
	return args.String(0), args.Error(1)
}

// =============================================================================
// Fixtures
// =============================================================================

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func clock(hour, minute int) time.Time {
	return time.Date(2025, 3, 14, hour, minute, 0, 0, time.UTC)
}

func sessionAt(kind cashdrawer.SessionKind, openedAt time.Time) *cashdrawer.Session {
	s := &cashdrawer.Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CashierID:         uuid.New(),
		CashierName:       "Ana",
		StartingFloat:     dec("500"),
		OpenedAt:          openedAt,
		ShiftLabel:        "Matutino",
		Kind:              kind,
		State:             cashdrawer.SessionStateOpen,
		Notes:             cashdrawer.DefaultNotes,
	}
	return s
}

func closedSessionAt(kind cashdrawer.SessionKind, openedAt time.Time) *cashdrawer.Session {
	s := sessionAt(kind, openedAt)
	final := dec("0")
	closedAt := openedAt.Add(time.Hour)
	s.State = cashdrawer.SessionStateClosed
	s.FinalAmount = &final
	s.ClosedAt = &closedAt
	return s
}

func movement(sessionID uuid.UUID, direction cashdrawer.Direction, category, amount string) cashdrawer.Movement {
	return cashdrawer.Movement{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Direction:  direction,
		Category:   category,
		Amount:     dec(amount),
		RecordedAt: clock(12, 0),
	}
}
