package cashdrawer

import (
	"context"
	"fmt"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentRenderer turns a reconciliation payload into one document format
type DocumentRenderer interface {
	Format() cashdrawer.DocumentFormat
	Render(ctx context.Context, payload *cashdrawer.ReconciliationPayload) ([]byte, error)
}

// DocumentStore uploads a rendered document and returns its retrievable URL
type DocumentStore interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// GenerationLocker serializes report generation for one FINAL session across
// replicas. Acquire fails with ErrLockHeld when another generation runs.
type GenerationLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// ErrLockHeld is returned by GenerationLocker.Acquire when the key is taken
var ErrLockHeld = shared.NewDomainError(shared.CodeConcurrencyConf, "a reconciliation for this session is already being generated")

// ReconciliationOptions tunes ReconciliationService
type ReconciliationOptions struct {
	// Location resolves "midnight" for the first checkpoint of a day
	Location *time.Location
	// IncludeFinalSessionMovements adds the FINAL session's own movements to the totals
	IncludeFinalSessionMovements bool
	RenderTimeout                time.Duration
	UploadTimeout                time.Duration
	// KeyPrefix is the object key folder, "reportes" by default
	KeyPrefix string
	// Now is overridable in tests
	Now func() time.Time
	// Locker is optional; nil disables cross-replica locking
	Locker GenerationLocker
}

// ReconciliationService builds reconciliation reports for FINAL sessions
type ReconciliationService struct {
	sessionRepo  cashdrawer.SessionRepository
	movementRepo cashdrawer.MovementRepository
	reportRepo   cashdrawer.ReportRepository
	txScope      TransactionScope
	renderers    []DocumentRenderer
	store        DocumentStore
	opts         ReconciliationOptions
	logger       *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	sessionRepo cashdrawer.SessionRepository,
	movementRepo cashdrawer.MovementRepository,
	reportRepo cashdrawer.ReportRepository,
	txScope TransactionScope,
	renderers []DocumentRenderer,
	store DocumentStore,
	opts ReconciliationOptions,
	logger *zap.Logger,
) *ReconciliationService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 30 * time.Second
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 20 * time.Second
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "reportes"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		sessionRepo:  sessionRepo,
		movementRepo: movementRepo,
		reportRepo:   reportRepo,
		txScope:      txScope,
		renderers:    renderers,
		store:        store,
		opts:         opts,
		logger:       logger,
	}
}

// Generate reconciles the SHIFT sessions closed out by a FINAL session.
// Documents are rendered and uploaded before anything is written; the report
// row and its ReconciliationGenerated event are then committed together.
// Notification happens asynchronously off that event.
func (s *ReconciliationService) Generate(ctx context.Context, finalSessionID uuid.UUID) (*ReconciliationResult, error) {
	if s.opts.Locker != nil {
		// held for the worst case of rendering and uploading every format
		ttl := time.Duration(len(s.renderers))*(s.opts.RenderTimeout+s.opts.UploadTimeout) + 10*time.Second
		release, err := s.opts.Locker.Acquire(ctx, "reconciliation:"+finalSessionID.String(), ttl)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("release reconciliation lock", zap.String("final_session_id", finalSessionID.String()), zap.Error(err))
			}
		}()
	}

	payload, err := s.BuildPayload(ctx, finalSessionID)
	if err != nil {
		return nil, err
	}

	documents := make(map[cashdrawer.DocumentFormat]string, len(s.renderers))
	for _, renderer := range s.renderers {
		content, err := s.render(ctx, renderer, payload)
		if err != nil {
			return nil, err
		}
		format := renderer.Format()
		url, err := s.upload(ctx, ObjectKey(s.opts.KeyPrefix, finalSessionID, payload.GeneratedAt.In(s.opts.Location), format), content, format)
		if err != nil {
			return nil, err
		}
		documents[format] = url
	}

	report := cashdrawer.NewReconciliationReport(payload, documents)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Reports().Save(ctx, report); err != nil {
			return err
		}
		return repos.Events().Write(ctx, cashdrawer.NewReconciliationGeneratedEvent(report))
	})
	if err != nil {
		s.logger.Warn("reconciliation documents uploaded but report not persisted",
			zap.String("final_session_id", finalSessionID.String()),
			zap.Any("documents", documents),
			zap.Error(err),
		)
		return nil, shared.NewDependencyError("persist reconciliation report", err)
	}

	s.logger.Info("reconciliation report generated",
		zap.String("report_id", report.ID.String()),
		zap.String("final_session_id", finalSessionID.String()),
		zap.Time("floor", payload.Range.Floor),
		zap.Time("ceiling", payload.Range.Ceiling),
		zap.Int("sessions", report.SessionCount),
		zap.String("net", payload.Totals.Net.String()),
	)

	return &ReconciliationResult{
		Report:       report,
		Totals:       payload.Totals,
		SessionCount: report.SessionCount,
		Range:        payload.Range,
	}, nil
}

// BuildPayload resolves the range of a FINAL session and aggregates it,
// without rendering or persisting anything.
func (s *ReconciliationService) BuildPayload(ctx context.Context, finalSessionID uuid.UUID) (*cashdrawer.ReconciliationPayload, error) {
	final, err := s.sessionRepo.FindByID(ctx, finalSessionID)
	if err != nil {
		return nil, loadError("load final session", err)
	}
	if !final.IsFinal() {
		return nil, shared.NewNotFoundError("final cash session")
	}

	previous, err := s.sessionRepo.FindPreviousFinal(ctx, final)
	if err != nil {
		return nil, loadError("find previous final session", err)
	}
	rng, err := cashdrawer.ResolveRange(final, previous, s.opts.Location)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.FindShiftsInRange(ctx, rng.Floor, rng.Ceiling)
	if err != nil {
		return nil, loadError("find shifts in range", err)
	}
	if s.opts.IncludeFinalSessionMovements {
		sessions = append(sessions, final)
	}

	ids := make([]uuid.UUID, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}
	bySession, err := s.movementRepo.FindBySessions(ctx, ids)
	if err != nil {
		return nil, loadError("load movements", err)
	}

	grouped := make([]cashdrawer.SessionMovements, 0, len(sessions))
	perSession := make(map[uuid.UUID]cashdrawer.Totals, len(sessions))
	for _, session := range sessions {
		movements := bySession[session.ID]
		grouped = append(grouped, cashdrawer.SessionMovements{Session: session, Movements: movements})
		perSession[session.ID] = cashdrawer.AggregateSession(session, movements)
	}

	return &cashdrawer.ReconciliationPayload{
		GeneratedAt:            s.opts.Now(),
		FinalSession:           final,
		Range:                  rng,
		Totals:                 cashdrawer.AggregateRange(grouped),
		Sessions:               sessions,
		SessionTotals:          perSession,
		IncludesFinalMovements: s.opts.IncludeFinalSessionMovements,
	}, nil
}

// ListReports returns every report newest first
func (s *ReconciliationService) ListReports(ctx context.Context) ([]*cashdrawer.ReconciliationReport, error) {
	return s.reportRepo.FindAll(ctx)
}

// GetReport returns one report
func (s *ReconciliationService) GetReport(ctx context.Context, id uuid.UUID) (*cashdrawer.ReconciliationReport, error) {
	return s.reportRepo.FindByID(ctx, id)
}

func (s *ReconciliationService) render(ctx context.Context, renderer DocumentRenderer, payload *cashdrawer.ReconciliationPayload) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RenderTimeout)
	defer cancel()

	content, err := renderer.Render(ctx, payload)
	if err != nil {
		return nil, shared.NewDependencyError(fmt.Sprintf("render %s document", renderer.Format()), err)
	}
	return content, nil
}

func (s *ReconciliationService) upload(ctx context.Context, key string, content []byte, format cashdrawer.DocumentFormat) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.UploadTimeout)
	defer cancel()

	url, err := s.store.Upload(ctx, key, content, format.ContentType())
	if err != nil {
		return "", shared.NewDependencyError(fmt.Sprintf("upload %s document", format), err)
	}
	return url, nil
}

// ObjectKey names an uploaded document:
// {prefix}/reporte_final_{finalID}_{YYYYMMDD_HHMMSS}.{format}
func ObjectKey(prefix string, finalSessionID uuid.UUID, at time.Time, format cashdrawer.DocumentFormat) string {
	return fmt.Sprintf("%s/reporte_final_%s_%s.%s", prefix, finalSessionID, at.Format("20060102_150405"), format)
}

// loadError keeps domain errors (NotFound and friends) and reports anything
// else as a dependency failure.
func loadError(operation string, err error) error {
	if isDomainError(err) {
		return err
	}
	return shared.NewDependencyError(operation, err)
}
