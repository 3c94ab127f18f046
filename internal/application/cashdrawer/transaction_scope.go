package cashdrawer

import (
	"context"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to the ledger repositories.
// Every repository handed to fn shares one database transaction, committed
// when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to the current transaction.
type TransactionalRepositories interface {
	Sessions() cashdrawer.SessionRepository
	Movements() cashdrawer.MovementRepository
	Reports() cashdrawer.ReportRepository
	// Events writes domain events into the outbox as part of the transaction
	Events() shared.EventWriter
}
