package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	appevent "github.com/cortecaja/backend/internal/application/event"
	appidentity "github.com/cortecaja/backend/internal/application/identity"
	appnotification "github.com/cortecaja/backend/internal/application/notification"
	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/identity"
	"github.com/cortecaja/backend/internal/infrastructure/auth"
	"github.com/cortecaja/backend/internal/infrastructure/config"
	"github.com/cortecaja/backend/internal/infrastructure/event"
	"github.com/cortecaja/backend/internal/infrastructure/persistence"
	"github.com/cortecaja/backend/internal/infrastructure/persistence/models"
	"github.com/cortecaja/backend/internal/interfaces/http/dto"
	"github.com/cortecaja/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "contrasena-segura-1"

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRenderer returns a fixed document for its format
type stubRenderer struct {
	format cashdrawer.DocumentFormat
}

func (r stubRenderer) Format() cashdrawer.DocumentFormat { return r.format }

func (r stubRenderer) Render(_ context.Context, payload *cashdrawer.ReconciliationPayload) ([]byte, error) {
	return []byte(string(r.format) + ":" + payload.FinalSession.ID.String()), nil
}

// memoryStore keeps uploads in a map and hands out fake URLs
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *memoryStore) Upload(_ context.Context, key string, content []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = content
	return "https://files.test/" + key, nil
}

// testApp is the API wired over an in-memory database
type testApp struct {
	engine *gin.Engine
	db     *gorm.DB
	users  *appidentity.UserService
	store  *memoryStore
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.CashSessionModel{},
		&models.CashMovementModel{},
		&models.ReconciliationReportModel{},
		&models.UserModel{},
		&models.NotificationModel{},
		&models.OutboxEntryModel{},
	))
	return db
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	middleware.SetupValidator()

	sessionRepo := persistence.NewGormSessionRepository(db)
	movementRepo := persistence.NewGormMovementRepository(db)
	reportRepo := persistence.NewGormReportRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	txScope := persistence.NewGormTransactionScope(db, nil)

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	blacklist := auth.NewInMemoryTokenBlacklist()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-bytes",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "corte-test",
		MaxRefreshCount:        5,
	})
	authService := appidentity.NewAuthService(
		auth.NewBcryptCredentialVerifier(userRepo, hasher), userRepo, jwtService, blacklist, log)
	userService := appidentity.NewUserService(userRepo, hasher, blacklist, time.Hour, log)

	store := &memoryStore{}
	sessions := appcash.NewSessionService(sessionRepo, movementRepo, txScope, time.UTC, log)
	reconciliations := appcash.NewReconciliationService(sessionRepo, movementRepo, reportRepo, txScope,
		[]appcash.DocumentRenderer{
			stubRenderer{format: cashdrawer.DocumentFormatPDF},
			stubRenderer{format: cashdrawer.DocumentFormatXLSX},
		},
		store, appcash.ReconciliationOptions{Location: time.UTC}, log)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")

	authH := NewAuthHandler(authService)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/refresh", authH.Refresh)

	protected := api.Group("", middleware.JWTAuth(authService, log))
	protected.POST("/auth/logout", authH.Logout)
	protected.GET("/auth/me", authH.Me)

	operate := middleware.RequireRoles(identity.RoleCashier, identity.RoleManager, identity.RoleAdmin)
	manage := middleware.RequireRoles(identity.RoleManager, identity.RoleAdmin)
	admin := middleware.RequireRoles(identity.RoleAdmin)

	sessionH := NewSessionHandler(sessions)
	protected.POST("/sessions", operate, sessionH.Open)
	protected.POST("/sessions/closed", operate, sessionH.CreateClosed)
	protected.GET("/sessions", sessionH.List)
	protected.GET("/sessions/:id", sessionH.Get)
	protected.POST("/sessions/:id/close", operate, sessionH.Close)
	protected.DELETE("/sessions/:id", manage, sessionH.Delete)
	protected.POST("/sessions/:id/movements", operate, sessionH.RecordMovement)
	protected.GET("/sessions/:id/movements", sessionH.ListMovements)

	reconH := NewReconciliationHandler(reconciliations)
	protected.POST("/reconciliations", manage, reconH.Generate)
	protected.GET("/reconciliations", manage, reconH.List)
	protected.GET("/reconciliations/:id", manage, reconH.Get)

	userH := NewUserHandler(userService)
	protected.GET("/users", admin, userH.List)
	protected.POST("/users", admin, userH.Create)
	protected.DELETE("/users/:id", admin, userH.Delete)

	notificationH := NewNotificationHandler(appnotification.NewNotificationService(persistence.NewGormNotificationRepository(db)))
	protected.GET("/notifications", notificationH.List)

	outboxH := NewOutboxHandler(appevent.NewOutboxService(event.NewGormOutboxRepository(db), log))
	protected.GET("/system/outbox/stats", admin, outboxH.GetStats)
	protected.GET("/system/outbox/dead", admin, outboxH.GetDeadLetterEntries)
	protected.POST("/system/outbox/dead/retry-all", admin, outboxH.RetryAllDeadEntries)
	protected.GET("/system/outbox/:id", admin, outboxH.GetEntry)
	protected.POST("/system/outbox/:id/retry", admin, outboxH.RetryDeadEntry)

	return &testApp{engine: engine, db: db, users: userService, store: store}
}

// createUser registers a user directly through the service
func (a *testApp) createUser(t *testing.T, email, name string, role identity.Role) appidentity.UserInfo {
	t.Helper()
	info, err := a.users.Create(context.Background(), appidentity.CreateUserInput{
		Email:    email,
		Name:     name,
		Password: testPassword,
		Role:     string(role),
	})
	require.NoError(t, err)
	return *info
}

// tokenFor logs in and returns the access token
func (a *testApp) tokenFor(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp APIResponse[LoginResponse]
	decode(t, w, &resp)
	return resp.Data.Token.AccessToken
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	decode(t, w, &resp)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
