package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusBlocked AccountStatus = "BLOCKED"
	AccountStatusDormant AccountStatus = "DORMANT"
	AccountStatusClosed  AccountStatus = "CLOSED"
)

// Account is a deposit account the scheme can debit or credit.
// WithdrawableBalance already accounts for every active hold.
type Account struct {
	ID               string
	ExternalID       string
	Currency         string
	AvailableBalance decimal.Decimal
	OnHoldAmount     decimal.Decimal
	Status           AccountStatus
	DebitBlocked     bool
	CreditBlocked    bool
	LockedUntil      *time.Time
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (a Account) WithdrawableBalance() decimal.Decimal {
	return a.AvailableBalance.Sub(a.OnHoldAmount)
}

// IsTransactionAllowed reports whether a movement in the given direction may
// be booked on the account as of the instant at.
func (a Account) IsTransactionAllowed(direction Direction, at time.Time) bool {
	if a.Status != AccountStatusActive {
		return false
	}

	switch direction {
	case DirectionDebit:
		if a.DebitBlocked {
			return false
		}
		if a.LockedUntil != nil && at.Before(*a.LockedUntil) {
			return false
		}
		return true
	case DirectionCredit:
		return !a.CreditBlocked
	default:
		return false
	}
}
