package domain

import (
	"context"
	"time"
)

// TransactionRepository is the read side of the per-account transaction log.
// The log does not deduplicate; callers check before appending.
type TransactionRepository interface {
	FindTransaction(ctx context.Context, accountID string, typ TransactionType, routingCode string, transferCode string) (Transaction, error)
	FindByTransferCode(ctx context.Context, routingCode string, transferCode string) ([]Transaction, error)
	ListTransactions(ctx context.Context, accountID string, filter TransactionFilter) ([]Transaction, error)
	ListUnreleasedHolds(ctx context.Context, createdBefore time.Time) ([]Transaction, error)
}
