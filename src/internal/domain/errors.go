package domain

import "errors"

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrCurrencyMismatch      = errors.New("account and request have different currencies")
	ErrTransactionNotAllowed = errors.New("transaction not allowed on account")
	ErrInsufficientFunds     = errors.New("not enough withdrawable balance for requested amount plus fees")
	ErrDuplicateTransfer     = errors.New("transfer already processed")
	ErrMissingHold           = errors.New("no active on-hold transaction for transfer")
	ErrAmountMismatch        = errors.New("transfer amount plus fees does not match on-hold amount")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrTransferNotFound      = errors.New("transfer not found")
	ErrIdentifierNotFound    = errors.New("identifier not found")
	ErrIdentifierExists      = errors.New("identifier already registered")
	ErrCurrencyNotFound      = errors.New("currency not found")

	// ErrConcurrentUpdate means the stored account changed between read and
	// posting. It is an infrastructure condition, not a business rejection.
	ErrConcurrentUpdate = errors.New("account was modified concurrently")
	// ErrInfrastructure wraps storage, lock and other non-business failures.
	ErrInfrastructure = errors.New("infrastructure failure")
)

var businessErrors = []error{
	ErrAccountNotFound,
	ErrCurrencyMismatch,
	ErrTransactionNotAllowed,
	ErrInsufficientFunds,
	ErrDuplicateTransfer,
	ErrMissingHold,
	ErrAmountMismatch,
	ErrInvalidRequest,
	ErrTransferNotFound,
	ErrIdentifierNotFound,
	ErrIdentifierExists,
	ErrCurrencyNotFound,
}

// IsBusinessError reports whether err is a terminal rejection the caller
// should see as such, as opposed to an infrastructure failure.
func IsBusinessError(err error) bool {
	if err == nil || errors.Is(err, ErrInfrastructure) {
		return false
	}
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
