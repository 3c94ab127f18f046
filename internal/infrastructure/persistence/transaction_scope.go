package persistence

import (
	"context"

	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxWriterFactory builds an outbox writer bound to a transaction.
// The event package supplies it so persistence does not import event.
type OutboxWriterFactory func(tx *gorm.DB) shared.EventWriter

// GormTransactionScope runs several repository calls in one GORM transaction.
type GormTransactionScope struct {
	db     *gorm.DB
	outbox OutboxWriterFactory
}

// NewGormTransactionScope creates a new GormTransactionScope. outbox may be
// nil, in which case Events() returns a writer that drops events.
func NewGormTransactionScope(db *gorm.DB, outbox OutboxWriterFactory) *GormTransactionScope {
	return &GormTransactionScope{db: db, outbox: outbox}
}

// Execute runs fn inside a transaction, rolling back when fn returns an error
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcash.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, outbox: s.outbox})
	})
}

type gormTransactionalRepositories struct {
	tx     *gorm.DB
	outbox OutboxWriterFactory
}

func (r *gormTransactionalRepositories) Sessions() cashdrawer.SessionRepository {
	return NewGormSessionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Movements() cashdrawer.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Reports() cashdrawer.ReportRepository {
	return NewGormReportRepository(r.tx)
}

func (r *gormTransactionalRepositories) Events() shared.EventWriter {
	if r.outbox == nil {
		return discardEvents{}
	}
	return r.outbox(r.tx)
}

type discardEvents struct{}

func (discardEvents) Write(context.Context, ...shared.DomainEvent) error { return nil }

var (
	_ appcash.TransactionScope          = (*GormTransactionScope)(nil)
	_ appcash.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
