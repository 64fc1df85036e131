package domain

import "context"

// LedgerRepository applies postings atomically: the account row, appended
// transactions and hold release links are all stored, or none are.
type LedgerRepository interface {
	AccountRepository
	TransactionRepository
	ApplyPosting(ctx context.Context, posting Posting) error
}
