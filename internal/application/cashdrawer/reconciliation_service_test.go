package cashdrawer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reconciliationFixture struct {
	scope    *fakeScope
	pdf      *MockRenderer
	xlsx     *MockRenderer
	store    *MockDocumentStore
	final    *cashdrawer.Session
	previous *cashdrawer.Session
	shifts   []*cashdrawer.Session
}

func newReconciliationFixture() *reconciliationFixture {
	f := &reconciliationFixture{
		scope: &fakeScope{
			sessions:  new(MockSessionRepository),
			movements: new(MockMovementRepository),
			reports:   new(MockReportRepository),
		},
		pdf:      &MockRenderer{format: cashdrawer.DocumentFormatPDF},
		xlsx:     &MockRenderer{format: cashdrawer.DocumentFormatXLSX},
		store:    new(MockDocumentStore),
		final:    closedSessionAt(cashdrawer.SessionKindFinal, clock(14, 0)),
		previous: closedSessionAt(cashdrawer.SessionKindFinal, clock(10, 0)),
	}
	f.shifts = []*cashdrawer.Session{
		closedSessionAt(cashdrawer.SessionKindShift, clock(10, 30)),
		closedSessionAt(cashdrawer.SessionKindShift, clock(12, 0)),
		closedSessionAt(cashdrawer.SessionKindShift, clock(13, 59)),
	}
	return f
}

func (f *reconciliationFixture) service(opts ReconciliationOptions) *ReconciliationService {
	if opts.Now == nil {
		opts.Now = func() time.Time { return clock(14, 30) }
	}
	return NewReconciliationService(
		f.scope.sessions, f.scope.movements, f.scope.reports, f.scope,
		[]DocumentRenderer{f.pdf, f.xlsx}, f.store, opts, nil,
	)
}

func (f *reconciliationFixture) movements() map[uuid.UUID][]cashdrawer.Movement {
	return map[uuid.UUID][]cashdrawer.Movement{
		f.shifts[0].ID: {movement(f.shifts[0].ID, cashdrawer.DirectionInflow, "CASH_SALES", "1000")},
		f.shifts[1].ID: {movement(f.shifts[1].ID, cashdrawer.DirectionInflow, "CARD_SALES", "700")},
		f.shifts[2].ID: {
			movement(f.shifts[2].ID, cashdrawer.DirectionInflow, "propinas", "50"),
			movement(f.shifts[2].ID, cashdrawer.DirectionOutflow, "GASTOS", "200"),
		},
		f.final.ID: {movement(f.final.ID, cashdrawer.DirectionInflow, "CASH_SALES", "999")},
	}
}

func (f *reconciliationFixture) expectRange(ctx context.Context) {
	f.scope.sessions.On("FindByID", ctx, f.final.ID).Return(f.final, nil)
	f.scope.sessions.On("FindPreviousFinal", ctx, f.final).Return(f.previous, nil)
	f.scope.sessions.On("FindShiftsInRange", ctx, clock(10, 0), clock(14, 0)).Return(f.shifts, nil)
	f.scope.movements.On("FindBySessions", ctx, mock.Anything).Return(f.movements(), nil)
}

func TestReconciliationService_Generate(t *testing.T) {
	ctx := context.Background()
	f := newReconciliationFixture()
	f.expectRange(ctx)

	pdfKey := "reportes/reporte_final_" + f.final.ID.String() + "_20250314_143000.pdf"
	xlsxKey := "reportes/reporte_final_" + f.final.ID.String() + "_20250314_143000.xlsx"
	f.pdf.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
	f.xlsx.On("Render", mock.Anything, mock.Anything).Return([]byte("PK"), nil)
	f.store.On("Upload", mock.Anything, pdfKey, []byte("%PDF"), "application/pdf").Return("https://files/r.pdf", nil)
	f.store.On("Upload", mock.Anything, xlsxKey, []byte("PK"), mock.Anything).Return("https://files/r.xlsx", nil)
	f.scope.reports.On("Save", ctx, mock.AnythingOfType("*cashdrawer.ReconciliationReport")).Return(nil)

	result, err := f.service(ReconciliationOptions{}).Generate(ctx, f.final.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, result.SessionCount)
	assert.Equal(t, clock(10, 0), result.Range.Floor)
	assert.Equal(t, clock(14, 0), result.Range.Ceiling)
	assert.True(t, result.Range.FloorFromPrevious())
	// cash 1000 + fallback 50, card 700, expenses 200
	assert.True(t, result.Totals.CashSales.Equal(dec("1050")))
	assert.True(t, result.Totals.CardSales.Equal(dec("700")))
	assert.True(t, result.Totals.Expenses.Equal(dec("200")))
	assert.True(t, result.Totals.Net.Equal(dec("1550")))

	assert.Equal(t, "https://files/r.pdf", result.Report.DocumentURL(cashdrawer.DocumentFormatPDF))
	assert.Equal(t, "https://files/r.xlsx", result.Report.DocumentURL(cashdrawer.DocumentFormatXLSX))
	assert.Equal(t, f.final.ID, result.Report.FinalSessionID)

	require.Len(t, f.scope.committed, 1)
	event, ok := f.scope.committed[0].(*cashdrawer.ReconciliationGeneratedEvent)
	require.True(t, ok)
	assert.Equal(t, result.Report.ID, event.ReportID)
	assert.Equal(t, "https://files/r.pdf", event.PDFURL)

	f.store.AssertExpectations(t)
	f.scope.reports.AssertExpectations(t)
}

func TestReconciliationService_IncludeFinalSessionMovements(t *testing.T) {
	ctx := context.Background()
	f := newReconciliationFixture()
	f.scope.sessions.On("FindByID", ctx, f.final.ID).Return(f.final, nil)
	f.scope.sessions.On("FindPreviousFinal", ctx, f.final).Return(f.previous, nil)
	f.scope.sessions.On("FindShiftsInRange", ctx, clock(10, 0), clock(14, 0)).Return(f.shifts, nil)
	f.scope.movements.On("FindBySessions", ctx, mock.MatchedBy(func(ids []uuid.UUID) bool {
		return len(ids) == 4 && ids[3] == f.final.ID
	})).Return(f.movements(), nil)

	payload, err := f.service(ReconciliationOptions{IncludeFinalSessionMovements: true}).BuildPayload(ctx, f.final.ID)

	require.NoError(t, err)
	assert.True(t, payload.IncludesFinalMovements)
	assert.Len(t, payload.Sessions, 4)
	assert.True(t, payload.Totals.CashSales.Equal(dec("2049")))
	assert.Contains(t, payload.SessionTotals, f.final.ID)
}

func TestReconciliationService_MidnightFloor(t *testing.T) {
	ctx := context.Background()
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	f := newReconciliationFixture()
	f.final.OpenedAt = time.Date(2025, 3, 14, 9, 0, 0, 0, loc)
	midnight := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
	f.scope.sessions.On("FindByID", ctx, f.final.ID).Return(f.final, nil)
	f.scope.sessions.On("FindPreviousFinal", ctx, f.final).Return(nil, nil)
	f.scope.sessions.On("FindShiftsInRange", ctx, midnight, f.final.OpenedAt).Return([]*cashdrawer.Session{}, nil)
	f.scope.movements.On("FindBySessions", ctx, []uuid.UUID{}).Return(map[uuid.UUID][]cashdrawer.Movement{}, nil)

	payload, err := f.service(ReconciliationOptions{Location: loc}).BuildPayload(ctx, f.final.ID)

	require.NoError(t, err)
	assert.True(t, payload.Range.Floor.Equal(midnight))
	assert.False(t, payload.Range.FloorFromPrevious())
	assert.True(t, payload.Totals.Net.IsZero())
	assert.Empty(t, payload.Sessions)
}

func TestReconciliationService_GenerateRejectsNonFinal(t *testing.T) {
	ctx := context.Background()
	f := newReconciliationFixture()
	shift := f.shifts[0]
	missing := uuid.New()
	f.scope.sessions.On("FindByID", ctx, shift.ID).Return(shift, nil)
	f.scope.sessions.On("FindByID", ctx, missing).Return(nil, shared.NewNotFoundError("cash session"))

	svc := f.service(ReconciliationOptions{})

	_, err := svc.Generate(ctx, shift.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Generate(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	f.pdf.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestReconciliationService_DependencyFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("render failure persists nothing", func(t *testing.T) {
		f := newReconciliationFixture()
		f.expectRange(ctx)
		f.pdf.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("chrome crashed"))

		_, err := f.service(ReconciliationOptions{}).Generate(ctx, f.final.ID)

		assert.ErrorIs(t, err, shared.ErrDependency)
		assert.Contains(t, err.Error(), "chrome crashed")
		f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.scope.reports.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.scope.committed)
	})

	t.Run("upload failure persists nothing", func(t *testing.T) {
		f := newReconciliationFixture()
		f.expectRange(ctx)
		f.pdf.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
		f.store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("access denied"))

		_, err := f.service(ReconciliationOptions{}).Generate(ctx, f.final.ID)

		assert.ErrorIs(t, err, shared.ErrDependency)
		f.scope.reports.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.scope.committed)
	})

	t.Run("persistence failure is a dependency error", func(t *testing.T) {
		f := newReconciliationFixture()
		f.expectRange(ctx)
		f.pdf.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
		f.xlsx.On("Render", mock.Anything, mock.Anything).Return([]byte("PK"), nil)
		f.store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://files/x", nil)
		f.scope.reports.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := f.service(ReconciliationOptions{}).Generate(ctx, f.final.ID)

		assert.ErrorIs(t, err, shared.ErrDependency)
		assert.Empty(t, f.scope.committed)
	})

	t.Run("repository read failure is a dependency error", func(t *testing.T) {
		f := newReconciliationFixture()
		f.scope.sessions.On("FindByID", ctx, f.final.ID).Return(nil, errors.New("connection reset"))

		_, err := f.service(ReconciliationOptions{}).Generate(ctx, f.final.ID)

		assert.ErrorIs(t, err, shared.ErrDependency)
	})
}

type blockingRenderer struct{}

func (blockingRenderer) Format() cashdrawer.DocumentFormat { return cashdrawer.DocumentFormatPDF }

func (blockingRenderer) Render(ctx context.Context, _ *cashdrawer.ReconciliationPayload) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestReconciliationService_RenderTimeout(t *testing.T) {
	ctx := context.Background()
	f := newReconciliationFixture()
	f.expectRange(ctx)

	svc := NewReconciliationService(
		f.scope.sessions, f.scope.movements, f.scope.reports, f.scope,
		[]DocumentRenderer{blockingRenderer{}}, f.store,
		ReconciliationOptions{RenderTimeout: 20 * time.Millisecond}, nil,
	)

	start := time.Now()
	_, err := svc.Generate(ctx, f.final.ID)

	assert.ErrorIs(t, err, shared.ErrDependency)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReconciliationService_Reports(t *testing.T) {
	ctx := context.Background()
	f := newReconciliationFixture()
	report := &cashdrawer.ReconciliationReport{ID: uuid.New()}
	missing := uuid.New()
	f.scope.reports.On("FindAll", ctx).Return([]*cashdrawer.ReconciliationReport{report}, nil)
	f.scope.reports.On("FindByID", ctx, report.ID).Return(report, nil)
	f.scope.reports.On("FindByID", ctx, missing).Return(nil, shared.NewNotFoundError("reconciliation report"))

	svc := f.service(ReconciliationOptions{})

	reports, err := svc.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	got, err := svc.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Same(t, report, got)

	_, err = svc.GetReport(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001")
	at := time.Date(2025, 11, 29, 18, 5, 9, 0, time.UTC)

	assert.Equal(t,
		"reportes/reporte_final_6f1c2d3e-0000-4000-8000-000000000001_20251129_180509.xlsx",
		ObjectKey("reportes", id, at, cashdrawer.DocumentFormatXLSX),
	)
}

type stubLocker struct {
	err      error
	keys     []string
	released int
}

func (l *stubLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestReconciliationService_GenerateLocked(t *testing.T) {
	ctx := context.Background()
	f := newReconciliationFixture()
	locker := &stubLocker{err: ErrLockHeld}

	_, err := f.service(ReconciliationOptions{Locker: locker}).Generate(ctx, f.final.ID)

	require.ErrorIs(t, err, ErrLockHeld)
	f.scope.sessions.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciliationService_GenerateReleasesLock(t *testing.T) {
	ctx := context.Background()
	f := newReconciliationFixture()
	f.expectRange(ctx)
	f.pdf.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
	f.xlsx.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("excel broke"))
	f.store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://files/r.pdf", nil)
	locker := &stubLocker{}

	_, err := f.service(ReconciliationOptions{Locker: locker}).Generate(ctx, f.final.ID)

	require.Error(t, err)
	assert.Equal(t, []string{"reconciliation:" + f.final.ID.String()}, locker.keys)
	assert.Equal(t, 1, locker.released)
}
