package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
)

type TransactionRequestService struct {
	validator *TransferValidator
	now       func() time.Time
}

func NewTransactionRequestService(validator *TransferValidator) *TransactionRequestService {
	return &TransactionRequestService{
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransactionRequest accepts a request to pay from the payer account.
func (s *TransactionRequestService) CreateTransactionRequest(ctx context.Context, caller domain.Caller, req domain.TransactionRequest) (domain.TransactionRequestResult, error) {
	logger.Info("transaction request service create request", logger.Fields{
		"payload": logger.SanitizePayload(req),
		"actorId": caller.ActorID,
	})

	if req.Role != domain.TransactionRolePayer {
		return domain.TransactionRequestResult{}, fmt.Errorf("%w: transaction requests are only accepted for the payer", domain.ErrInvalidRequest)
	}

	validated, err := s.validator.Validate(ctx, domain.TransferRequest{
		TransactionCode: req.TransactionCode,
		TransferCode:    req.RequestCode,
		Party:           req.Party,
		Amount:          req.Amount,
		Role:            req.Role,
		Expiration:      req.Expiration,
	})
	if err != nil {
		return domain.TransactionRequestResult{}, classify(err)
	}

	return domain.TransactionRequestResult{
		TransactionCode: req.TransactionCode,
		RequestCode:     req.RequestCode,
		AccountID:       validated.Account.ExternalID,
		State:           domain.ActionStateAccepted,
		Expiration:      req.Expiration,
		CompletedAt:     s.now(),
	}, nil
}

// GetTransactionRequest always reports REJECTED since requests are not kept.
func (s *TransactionRequestService) GetTransactionRequest(_ context.Context, transactionCode string, requestCode string) (domain.TransactionRequestResult, error) {
	if strings.TrimSpace(transactionCode) == "" || strings.TrimSpace(requestCode) == "" {
		return domain.TransactionRequestResult{}, fmt.Errorf("%w: transactionCode and requestCode are required", domain.ErrInvalidRequest)
	}

	return domain.TransactionRequestResult{
		TransactionCode: transactionCode,
		RequestCode:     requestCode,
		State:           domain.ActionStateRejected,
		CompletedAt:     s.now(),
	}, nil
}
