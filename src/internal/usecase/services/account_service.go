package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
)

// TransactionQuery selects an account's history. When neither direction is
// set both are returned.
type TransactionQuery struct {
	AccountID string
	Debit     bool
	Credit    bool
	From      *time.Time
	To        *time.Time
}

type AccountService struct {
	ledgerRepo domain.LedgerRepository
}

func NewAccountService(ledgerRepo domain.LedgerRepository) *AccountService {
	return &AccountService{ledgerRepo: ledgerRepo}
}

func (s *AccountService) GetAccountDetails(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.ledgerRepo.GetByExternalID(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return domain.Account{}, classify(err)
	}
	return account, nil
}

func (s *AccountService) GetAccountTransactions(ctx context.Context, query TransactionQuery) ([]domain.Transaction, error) {
	logger.Info("account service get transactions request", logger.Fields{
		"payload": logger.SanitizePayload(query),
	})

	if query.From != nil && query.To != nil && !query.From.Before(*query.To) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrInvalidRequest)
	}

	account, err := s.ledgerRepo.GetByExternalID(ctx, strings.TrimSpace(query.AccountID))
	if err != nil {
		return nil, classify(err)
	}

	filter := domain.TransactionFilter{Debit: query.Debit, Credit: query.Credit, From: query.From, To: query.To}
	if !filter.Debit && !filter.Credit {
		filter.Debit, filter.Credit = true, true
	}

	txs, err := s.ledgerRepo.ListTransactions(ctx, account.ID, filter)
	if err != nil {
		logger.Error("account service get transactions failed", err, logger.Fields{"accountId": account.ExternalID})
		return nil, classify(err)
	}
	return txs, nil
}
