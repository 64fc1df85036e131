package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeHold          TransactionType = "HOLD"
	TransactionTypeRelease       TransactionType = "RELEASE"
	TransactionTypeDeposit       TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal    TransactionType = "WITHDRAWAL"
	TransactionTypeWithdrawalFee TransactionType = "WITHDRAWAL_FEE"
	TransactionTypeCommission    TransactionType = "COMMISSION"
)

type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

func (t TransactionType) Direction() Direction {
	switch t {
	case TransactionTypeHold, TransactionTypeWithdrawal, TransactionTypeWithdrawalFee:
		return DirectionDebit
	default:
		return DirectionCredit
	}
}

// PaymentDetail tags a transaction with the scheme routing and transfer code.
// The pair is the idempotency key of scheme-originated movements.
type PaymentDetail struct {
	RoutingCode  string
	TransferCode string
}

func (p PaymentDetail) Matches(routingCode, transferCode string) bool {
	return p.RoutingCode == routingCode && p.TransferCode == transferCode
}

// Transaction is one entry of an account's append-only log. RunningBalance is
// the withdrawable balance right after the entry was booked.
type Transaction struct {
	ID             string
	AccountID      string
	Type           TransactionType
	Amount         decimal.Decimal
	Currency       string
	RunningBalance decimal.Decimal
	PaymentDetail  *PaymentDetail
	// HoldID is set on a RELEASE and names the HOLD it supersedes.
	HoldID *string
	// ReleasedBy is set once on a HOLD when a RELEASE supersedes it.
	ReleasedBy *string
	CreatedBy  string
	CreatedAt  time.Time
}

func (t Transaction) IsReleased() bool {
	return t.ReleasedBy != nil
}

func (t Transaction) IsTagged(routingCode, transferCode string) bool {
	return t.PaymentDetail != nil && t.PaymentDetail.Matches(routingCode, transferCode)
}

// TransactionFilter narrows an account history query. A nil bound is open.
type TransactionFilter struct {
	Debit  bool
	Credit bool
	From   *time.Time
	To     *time.Time
}

func (f TransactionFilter) Accepts(t Transaction) bool {
	direction := t.Type.Direction()
	if (direction == DirectionDebit && !f.Debit) || (direction == DirectionCredit && !f.Credit) {
		return false
	}
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}
