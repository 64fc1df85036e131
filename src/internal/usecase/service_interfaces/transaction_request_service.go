package service_interfaces

import (
	"context"

	"github.com/api-sage/interop-settlement/src/internal/domain"
)

type TransactionRequestService interface {
	CreateTransactionRequest(ctx context.Context, caller domain.Caller, req domain.TransactionRequest) (domain.TransactionRequestResult, error)
	GetTransactionRequest(ctx context.Context, transactionCode string, requestCode string) (domain.TransactionRequestResult, error)
}
