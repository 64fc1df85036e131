package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionRole string

const (
	TransactionRolePayer TransactionRole = "PAYER"
	TransactionRolePayee TransactionRole = "PAYEE"
)

// Direction maps a scheme role onto the account movement it causes.
func (r TransactionRole) Direction() (Direction, bool) {
	switch r {
	case TransactionRolePayer:
		return DirectionDebit, true
	case TransactionRolePayee:
		return DirectionCredit, true
	default:
		return "", false
	}
}

type ActionState string

const (
	ActionStateAccepted ActionState = "ACCEPTED"
	ActionStateRejected ActionState = "REJECTED"
)

type TransferState string

const (
	TransferStateNone      TransferState = "NONE"
	TransferStateHeld      TransferState = "HELD"
	TransferStateCommitted TransferState = "COMMITTED"
	TransferStateReleased  TransferState = "RELEASED"
)

type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// Caller carries who performs an operation and for which tenant.
type Caller struct {
	ActorID string
	Tenant  string
}

// Party names an account either directly or through a directory identifier.
type Party struct {
	AccountID   string
	IDType      IdentifierType
	IDValue     string
	SubIDOrType string
}

type TransferRequest struct {
	TransactionCode string
	TransferCode    string
	Party           Party
	Amount          Money
	Role            TransactionRole
	FspFee          *Money
	FspCommission   *Money
	Expiration      *time.Time
	Note            string
}

type TransferResult struct {
	TransactionCode string
	TransferCode    string
	AccountID       string
	State           ActionState
	TransferState   TransferState
	Expiration      *time.Time
	CompletedAt     time.Time
}

type ReleaseRequest struct {
	TransactionCode string
	TransferCode    string
	AccountID       string
}

// TotalTransferAmount is amount plus fee minus commission, never below zero.
func TotalTransferAmount(amount decimal.Decimal, fee, commission *Money) decimal.Decimal {
	total := amount
	if fee != nil {
		total = total.Add(fee.Amount)
	}
	if commission != nil {
		total = total.Sub(commission.Amount)
		if total.IsNegative() {
			total = decimal.Zero
		}
	}
	return total
}
