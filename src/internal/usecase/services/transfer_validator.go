package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
)

// ValidatedTransfer is a request whose amounts are normalized to the
// resolved account's currency precision.
type ValidatedTransfer struct {
	Request   domain.TransferRequest
	Account   domain.Account
	Currency  domain.Currency
	Direction domain.Direction
}

type TransferValidator struct {
	accountRepo    domain.AccountRepository
	identifierRepo domain.IdentifierRepository
	currencyRepo   domain.CurrencyRepository
	now            func() time.Time
}

func NewTransferValidator(
	accountRepo domain.AccountRepository,
	identifierRepo domain.IdentifierRepository,
	currencyRepo domain.CurrencyRepository,
) *TransferValidator {
	return &TransferValidator{
		accountRepo:    accountRepo,
		identifierRepo: identifierRepo,
		currencyRepo:   currencyRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Validate resolves the target account and checks currency, account state
// and amounts. It performs lookups only.
func (v *TransferValidator) Validate(ctx context.Context, req domain.TransferRequest) (ValidatedTransfer, error) {
	direction, err := checkShape(req)
	if err != nil {
		return ValidatedTransfer{}, err
	}

	account, err := v.ResolveAccount(ctx, req.Party)
	if err != nil {
		return ValidatedTransfer{}, err
	}

	requestCurrency := strings.ToUpper(strings.TrimSpace(req.Amount.Currency))
	if account.Currency != requestCurrency {
		return ValidatedTransfer{}, fmt.Errorf("%w: account %s is %s, request is %s", domain.ErrCurrencyMismatch, account.ExternalID, account.Currency, requestCurrency)
	}
	for _, m := range []*domain.Money{req.FspFee, req.FspCommission} {
		if m != nil && strings.ToUpper(strings.TrimSpace(m.Currency)) != account.Currency {
			return ValidatedTransfer{}, fmt.Errorf("%w: fee or commission currency %s", domain.ErrCurrencyMismatch, m.Currency)
		}
	}

	at := v.now()
	if req.Expiration != nil {
		at = *req.Expiration
	}
	if !account.IsTransactionAllowed(direction, at) {
		return ValidatedTransfer{}, fmt.Errorf("%w: %s on account %s", domain.ErrTransactionNotAllowed, direction, account.ExternalID)
	}

	currency, err := v.currencyRepo.GetByCode(ctx, account.Currency)
	if err != nil {
		if errors.Is(err, domain.ErrCurrencyNotFound) {
			return ValidatedTransfer{}, fmt.Errorf("%w: %s", domain.ErrCurrencyNotFound, account.Currency)
		}
		return ValidatedTransfer{}, fmt.Errorf("%w: currency lookup: %w", domain.ErrInfrastructure, err)
	}

	normalized := req
	normalized.Amount = domain.Money{Amount: currency.Normalize(req.Amount.Amount), Currency: account.Currency}
	if !normalized.Amount.Amount.IsPositive() {
		return ValidatedTransfer{}, fmt.Errorf("%w: amount %s rounds to zero at %d decimal places", domain.ErrInvalidRequest, req.Amount.Amount, currency.DecimalPlaces)
	}
	if req.FspFee != nil {
		normalized.FspFee = &domain.Money{Amount: currency.Normalize(req.FspFee.Amount), Currency: account.Currency}
	}
	if req.FspCommission != nil {
		normalized.FspCommission = &domain.Money{Amount: currency.Normalize(req.FspCommission.Amount), Currency: account.Currency}
	}
	normalized.Party = domain.Party{AccountID: account.ExternalID}

	return ValidatedTransfer{Request: normalized, Account: account, Currency: currency, Direction: direction}, nil
}

// ResolveAccount finds the account named directly or through the directory.
func (v *TransferValidator) ResolveAccount(ctx context.Context, party domain.Party) (domain.Account, error) {
	accountID := strings.TrimSpace(party.AccountID)
	if accountID == "" {
		if v.identifierRepo == nil || party.IDType == "" || strings.TrimSpace(party.IDValue) == "" {
			return domain.Account{}, fmt.Errorf("%w: accountId or party identifier is required", domain.ErrInvalidRequest)
		}

		identifier, err := v.identifierRepo.Find(ctx, party.IDType, strings.TrimSpace(party.IDValue), strings.TrimSpace(party.SubIDOrType))
		if err != nil {
			if errors.Is(err, domain.ErrIdentifierNotFound) {
				return domain.Account{}, fmt.Errorf("%w: no account for identifier %s/%s", domain.ErrAccountNotFound, party.IDType, party.IDValue)
			}
			return domain.Account{}, fmt.Errorf("%w: identifier lookup: %w", domain.ErrInfrastructure, err)
		}
		accountID = identifier.AccountID
	}

	account, err := v.accountRepo.GetByExternalID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			logger.Info("transfer validator account not found", logger.Fields{"accountId": accountID})
			return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
		}
		return domain.Account{}, fmt.Errorf("%w: account lookup: %w", domain.ErrInfrastructure, err)
	}

	return account, nil
}

func checkShape(req domain.TransferRequest) (domain.Direction, error) {
	var errs []string

	direction, ok := req.Role.Direction()
	if !ok {
		errs = append(errs, "transactionRole must be PAYER or PAYEE")
	}
	if !req.Amount.Amount.IsPositive() {
		errs = append(errs, "amount must be greater than zero")
	}
	if len(strings.TrimSpace(req.Amount.Currency)) != 3 {
		errs = append(errs, "currency must be 3 characters")
	}
	if req.FspFee != nil && req.FspFee.Amount.IsNegative() {
		errs = append(errs, "fspFee must not be negative")
	}
	if req.FspCommission != nil && req.FspCommission.Amount.IsNegative() {
		errs = append(errs, "fspCommission must not be negative")
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidRequest, strings.Join(errs, "; "))
	}
	return direction, nil
}
