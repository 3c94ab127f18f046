package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	appevent "github.com/cortecaja/backend/internal/application/event"
	appidentity "github.com/cortecaja/backend/internal/application/identity"
	appnotification "github.com/cortecaja/backend/internal/application/notification"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/cortecaja/backend/internal/infrastructure/auth"
	"github.com/cortecaja/backend/internal/infrastructure/cache"
	"github.com/cortecaja/backend/internal/infrastructure/config"
	"github.com/cortecaja/backend/internal/infrastructure/event"
	"github.com/cortecaja/backend/internal/infrastructure/notify"
	"github.com/cortecaja/backend/internal/infrastructure/persistence"
	"github.com/cortecaja/backend/internal/infrastructure/printing"
	"github.com/cortecaja/backend/internal/infrastructure/storage"
	"github.com/cortecaja/backend/internal/interfaces/http/handler"
	"github.com/cortecaja/backend/internal/interfaces/http/middleware"
	"github.com/cortecaja/backend/internal/interfaces/http/router"
	"github.com/cortecaja/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// htmlPrinter stands in for Chrome: the "PDF" is the laid out HTML
type htmlPrinter struct{}

func (htmlPrinter) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	return &printing.RenderResult{PDFData: []byte(req.HTML)}, nil
}

func (htmlPrinter) Close() error { return nil }

// TestServer is the production wiring of cmd/server on a test database,
// minus Redis and Chrome
type TestServer struct {
	DB        *TestDB
	Engine    *gin.Engine
	API       *testutil.APIClient
	Store     *storage.StubDocumentStore
	Processor *event.OutboxProcessor
	Users     *appidentity.UserService
}

func NewTestServer(t *testing.T, db *TestDB) *TestServer {
	t.Helper()
	log := zap.NewNop()

	sessionRepo := persistence.NewGormSessionRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	serializer := event.NewEventSerializer()
	txScope := persistence.NewGormTransactionScope(db.DB, event.NewOutboxPublisher(serializer).WriterFor)

	hasher := auth.NewBcryptHasher(4)
	blacklist := auth.NewInMemoryTokenBlacklist()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-access-secret-0123456789abcdef",
		RefreshSecret:          "integration-refresh-secret-0123456789abcdef",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "corte-test",
		MaxRefreshCount:        3,
	})
	authService := appidentity.NewAuthService(
		auth.NewBcryptCredentialVerifier(userRepo, hasher), userRepo, jwtService, blacklist, log)
	userService := appidentity.NewUserService(userRepo, hasher, blacklist, time.Hour, log)

	store := storage.NewStubDocumentStore()
	renderers := []appcash.DocumentRenderer{
		printing.NewPDFDocumentRenderer(printing.NewTemplateEngine(), htmlPrinter{}),
		printing.NewExcelWorkbookRenderer(time.UTC),
	}
	sessions := appcash.NewSessionService(sessionRepo, movementRepo, txScope, time.UTC, log)
	reconciliations := appcash.NewReconciliationService(sessionRepo, movementRepo, reportRepo, txScope,
		renderers, store, appcash.ReconciliationOptions{
			Location:      time.UTC,
			RenderTimeout: 10 * time.Second,
			UploadTimeout: 10 * time.Second,
			Locker:        cache.NewInMemoryLocker(),
		}, log)

	idempotency := cache.NewInMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = idempotency.Close() })

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewIdempotentHandler(
		appnotification.NewReconciliationNotifiedHandler(userRepo, notificationRepo, notify.NewLogNotifier(log), time.UTC, log),
		idempotency,
		"reconciliation-notified",
		shared.DefaultIdempotencyConfig(),
		log,
	))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	// the processor is driven by the tests through ProcessBatch
	processor := event.NewOutboxProcessor(outboxRepo, bus, serializer, event.DefaultOutboxProcessorConfig(), log)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.BodyLimit(1<<20))
	router.RegisterHealth(engine, handler.NewHealthHandler("test", map[string]handler.PingFunc{
		"database": db.Database().Ping,
	}))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	for _, g := range router.APIGroups(router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Session:        handler.NewSessionHandler(sessions),
		Reconciliation: handler.NewReconciliationHandler(reconciliations),
		User:           handler.NewUserHandler(userService),
		Notification:   handler.NewNotificationHandler(appnotification.NewNotificationService(notificationRepo)),
		Outbox:         handler.NewOutboxHandler(appevent.NewOutboxService(outboxRepo, log)),
	}, router.Guards{Auth: middleware.JWTAuth(authService, log)}) {
		r.Register(g)
	}
	r.Setup()

	return &TestServer{
		DB:        db,
		Engine:    engine,
		API:       testutil.NewAPIClient(engine),
		Store:     store,
		Processor: processor,
		Users:     userService,
	}
}

// Login returns a client authenticated as email
func (s *TestServer) Login(t *testing.T, email string) *testutil.APIClient {
	t.Helper()
	w := s.API.Do(t, http.MethodPost, "/api/v1/auth/login", handler.LoginRequest{Email: email, Password: testPassword})
	resp := testutil.RequireData[handler.LoginResponse](t, w, http.StatusOK)
	require.NotEmpty(t, resp.Token.AccessToken)
	return s.API.As(resp.Token.AccessToken)
}

// DeliverEvents runs the outbox once, as the background processor would
func (s *TestServer) DeliverEvents(t *testing.T) {
	t.Helper()
	s.Processor.ProcessBatch(testutil.Context(t, 10*time.Second))
}
