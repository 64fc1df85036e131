package service_interfaces

import (
	"context"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/usecase/services"
)

type AccountService interface {
	GetAccountDetails(ctx context.Context, accountID string) (domain.Account, error)
	GetAccountTransactions(ctx context.Context, query services.TransactionQuery) ([]domain.Transaction, error)
}
