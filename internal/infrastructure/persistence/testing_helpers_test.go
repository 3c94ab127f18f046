package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a private in-memory database with every table migrated.
// A single connection keeps the in-memory schema visible to all queries.
func newSQLiteDB(t *testing.T) *gorm.DB {
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

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// newSession builds an OPEN session opened at the given UTC time
func newSession(t *testing.T, kind cashdrawer.SessionKind, cashier string, openedAt time.Time) *cashdrawer.Session {
	t.Helper()
	s, err := cashdrawer.NewSession(cashdrawer.OpenParams{
		CashierID:     uuid.New(),
		CashierName:   cashier,
		StartingFloat: amount("500"),
		ShiftLabel:    "Matutino",
		Kind:          kind,
	})
	require.NoError(t, err)
	s.OpenedAt = openedAt.UTC()
	s.CreatedAt = openedAt.UTC()
	s.UpdatedAt = openedAt.UTC()
	return s
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 14, hour, minute, 0, 0, time.UTC)
}

// newMockPostgres returns a GORM handle speaking the PostgreSQL dialect over sqlmock
func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	return gormOn(t, mockDB), mock, mockDB
}

func gormOn(t *testing.T, conn *sql.DB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       conn,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}
