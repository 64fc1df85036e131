package services

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/shopspring/decimal"
)

type QuoteService struct {
	validator *TransferValidator
	charges   *ChargesService
	now       func() time.Time
}

func NewQuoteService(validator *TransferValidator, charges *ChargesService) *QuoteService {
	return &QuoteService{
		validator: validator,
		charges:   charges,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateQuote prices a prospective transfer. Debits are checked against the
// withdrawable balance; credits carry no fee.
func (s *QuoteService) CreateQuote(ctx context.Context, caller domain.Caller, req domain.QuoteRequest) (domain.QuoteResult, error) {
	logger.Info("quote service create quote request", logger.Fields{
		"payload": logger.SanitizePayload(req),
		"actorId": caller.ActorID,
	})

	validated, err := s.validator.Validate(ctx, domain.TransferRequest{
		TransactionCode: req.TransactionCode,
		TransferCode:    req.QuoteCode,
		Party:           req.Party,
		Amount:          req.Amount,
		Role:            req.Role,
		Expiration:      req.Expiration,
	})
	if err != nil {
		return domain.QuoteResult{}, classify(err)
	}

	amount := validated.Request.Amount.Amount
	fee := decimal.Zero
	if validated.Direction == domain.DirectionDebit {
		fee = s.charges.GetCharge(amount, validated.Currency)
		required := amount.Add(fee)
		if validated.Account.WithdrawableBalance().LessThan(required) {
			return domain.QuoteResult{}, fmt.Errorf("%w: withdrawable %s, required %s", domain.ErrInsufficientFunds, validated.Account.WithdrawableBalance(), required)
		}
	}

	logger.Info("quote service create quote success", logger.Fields{
		"quoteCode": req.QuoteCode,
		"accountId": validated.Account.ExternalID,
		"fee":       fee.String(),
	})

	return domain.QuoteResult{
		TransactionCode: req.TransactionCode,
		QuoteCode:       req.QuoteCode,
		AccountID:       validated.Account.ExternalID,
		State:           domain.ActionStateAccepted,
		Fee:             domain.Money{Amount: fee, Currency: validated.Account.Currency},
		Expiration:      req.Expiration,
		CompletedAt:     s.now(),
	}, nil
}
