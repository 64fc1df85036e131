package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/google/uuid"
)

// LedgerRepository keeps an arena of accounts and one append-only
// transaction slice per account.
type LedgerRepository struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	byExternalID map[string]string
	transactions map[string][]domain.Transaction
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		accounts:     make(map[string]domain.Account),
		byExternalID: make(map[string]string),
		transactions: make(map[string][]domain.Transaction),
	}
}

func (r *LedgerRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byExternalID[account.ExternalID]; exists {
		return domain.Account{}, fmt.Errorf("create account: external id %q already exists", account.ExternalID)
	}

	now := time.Now().UTC()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	r.accounts[account.ID] = account
	r.byExternalID[account.ExternalID] = account.ID
	return account, nil
}

func (r *LedgerRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (r *LedgerRepository) GetByExternalID(_ context.Context, externalID string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExternalID[externalID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return r.accounts[id], nil
}

func (r *LedgerRepository) FindTransaction(_ context.Context, accountID string, typ domain.TransactionType, routingCode string, transferCode string) (domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tx := range r.transactions[accountID] {
		if tx.Type == typ && tx.IsTagged(routingCode, transferCode) {
			return cloneTransaction(tx), nil
		}
	}
	return domain.Transaction{}, domain.ErrTransferNotFound
}

func (r *LedgerRepository) FindByTransferCode(_ context.Context, routingCode string, transferCode string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Transaction
	for _, log := range r.transactions {
		for _, tx := range log {
			if tx.IsTagged(routingCode, transferCode) {
				out = append(out, cloneTransaction(tx))
			}
		}
	}
	sortTransactions(out)
	return out, nil
}

func (r *LedgerRepository) ListTransactions(_ context.Context, accountID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(r.transactions[accountID]))
	for _, tx := range r.transactions[accountID] {
		if filter.Accepts(tx) {
			out = append(out, cloneTransaction(tx))
		}
	}
	return out, nil
}

func (r *LedgerRepository) ListUnreleasedHolds(_ context.Context, createdBefore time.Time) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Transaction
	for _, log := range r.transactions {
		for _, tx := range log {
			if tx.Type == domain.TransactionTypeHold && !tx.IsReleased() && tx.CreatedAt.Before(createdBefore) {
				out = append(out, cloneTransaction(tx))
			}
		}
	}
	sortTransactions(out)
	return out, nil
}

// ApplyPosting validates the whole posting before touching any state, so a
// rejected posting leaves the arena unchanged.
func (r *LedgerRepository) ApplyPosting(_ context.Context, posting domain.Posting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accountID := posting.Account.ID
	stored, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if stored.Version != posting.ExpectedVersion {
		return fmt.Errorf("apply posting to account %s: %w", accountID, domain.ErrConcurrentUpdate)
	}

	log := r.transactions[accountID]
	holdIndex := make(map[string]int, len(posting.Releases))
	for _, link := range posting.Releases {
		idx := indexOf(log, link.HoldID)
		if idx < 0 || log[idx].Type != domain.TransactionTypeHold {
			return fmt.Errorf("apply posting: hold %s not found on account %s", link.HoldID, accountID)
		}
		if log[idx].IsReleased() {
			return fmt.Errorf("apply posting: hold %s: %w", link.HoldID, domain.ErrConcurrentUpdate)
		}
		holdIndex[link.HoldID] = idx
	}

	updated := make([]domain.Transaction, len(log), len(log)+len(posting.Transactions))
	copy(updated, log)
	for _, link := range posting.Releases {
		releaseID := link.ReleaseID
		updated[holdIndex[link.HoldID]].ReleasedBy = &releaseID
	}
	for _, tx := range posting.Transactions {
		updated = append(updated, cloneTransaction(tx))
	}

	r.transactions[accountID] = updated
	r.accounts[accountID] = posting.Account
	return nil
}

func indexOf(log []domain.Transaction, id string) int {
	for i, tx := range log {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func cloneTransaction(tx domain.Transaction) domain.Transaction {
	if tx.PaymentDetail != nil {
		detail := *tx.PaymentDetail
		tx.PaymentDetail = &detail
	}
	if tx.HoldID != nil {
		id := *tx.HoldID
		tx.HoldID = &id
	}
	if tx.ReleasedBy != nil {
		id := *tx.ReleasedBy
		tx.ReleasedBy = &id
	}
	return tx
}

func sortTransactions(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
}
