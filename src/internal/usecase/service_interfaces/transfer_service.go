package service_interfaces

import (
	"context"

	"github.com/api-sage/interop-settlement/src/internal/domain"
)

type TransferService interface {
	PrepareTransfer(ctx context.Context, caller domain.Caller, req domain.TransferRequest) (domain.TransferResult, error)
	CommitTransfer(ctx context.Context, caller domain.Caller, req domain.TransferRequest) (domain.TransferResult, error)
	ReleaseTransfer(ctx context.Context, caller domain.Caller, req domain.ReleaseRequest) (domain.TransferResult, error)
	GetTransfer(ctx context.Context, transactionCode string, transferCode string) (domain.TransferResult, error)
}
