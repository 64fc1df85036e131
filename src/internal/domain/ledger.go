package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldRelease links a HOLD to the RELEASE that superseded it.
type HoldRelease struct {
	HoldID    string
	ReleaseID string
}

// Posting is the complete set of mutations one engine phase makes to one
// account. Repositories apply a posting all-or-nothing, and only if the stored
// account version still equals ExpectedVersion.
type Posting struct {
	Account         Account
	ExpectedVersion int64
	Transactions    []Transaction
	Releases        []HoldRelease

	actor string
	now   time.Time
}

func NewPosting(account Account, actor string, now time.Time) *Posting {
	expected := account.Version
	account.Version++
	account.UpdatedAt = now

	return &Posting{
		Account:         account,
		ExpectedVersion: expected,
		actor:           actor,
		now:             now,
	}
}

func (p *Posting) IsEmpty() bool {
	return len(p.Transactions) == 0 && len(p.Releases) == 0
}

// Hold reserves amount without moving it.
func (p *Posting) Hold(amount decimal.Decimal, tag PaymentDetail) (Transaction, error) {
	if amount.IsNegative() {
		return Transaction{}, fmt.Errorf("%w: hold amount must not be negative", ErrInvalidRequest)
	}
	if p.Account.WithdrawableBalance().LessThan(amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	p.Account.OnHoldAmount = p.Account.OnHoldAmount.Add(amount)
	return p.append(TransactionTypeHold, amount, &tag, nil), nil
}

// Release cancels an outstanding hold and restores the withdrawable balance.
func (p *Posting) Release(hold Transaction) (Transaction, error) {
	if hold.Type != TransactionTypeHold || hold.AccountID != p.Account.ID {
		return Transaction{}, ErrMissingHold
	}
	if hold.IsReleased() || p.releases(hold.ID) {
		return Transaction{}, ErrMissingHold
	}
	if p.Account.OnHoldAmount.LessThan(hold.Amount) {
		return Transaction{}, fmt.Errorf("on-hold amount %s is below held amount %s", p.Account.OnHoldAmount, hold.Amount)
	}

	p.Account.OnHoldAmount = p.Account.OnHoldAmount.Sub(hold.Amount)
	holdID := hold.ID
	release := p.append(TransactionTypeRelease, hold.Amount, hold.PaymentDetail, &holdID)
	p.Releases = append(p.Releases, HoldRelease{HoldID: hold.ID, ReleaseID: release.ID})
	return release, nil
}

// Withdraw moves amount out of the account. typ is WITHDRAWAL or WITHDRAWAL_FEE.
func (p *Posting) Withdraw(typ TransactionType, amount decimal.Decimal, tag PaymentDetail) (Transaction, error) {
	if typ.Direction() != DirectionDebit || typ == TransactionTypeHold {
		return Transaction{}, fmt.Errorf("%w: %s is not a withdrawal type", ErrInvalidRequest, typ)
	}
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: withdrawal amount must be greater than zero", ErrInvalidRequest)
	}
	if p.Account.WithdrawableBalance().LessThan(amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	p.Account.AvailableBalance = p.Account.AvailableBalance.Sub(amount)
	return p.append(typ, amount, &tag, nil), nil
}

// Deposit moves amount into the account. typ is DEPOSIT or COMMISSION.
func (p *Posting) Deposit(typ TransactionType, amount decimal.Decimal, tag PaymentDetail) (Transaction, error) {
	if typ.Direction() != DirectionCredit || typ == TransactionTypeRelease {
		return Transaction{}, fmt.Errorf("%w: %s is not a deposit type", ErrInvalidRequest, typ)
	}
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: deposit amount must be greater than zero", ErrInvalidRequest)
	}

	p.Account.AvailableBalance = p.Account.AvailableBalance.Add(amount)
	return p.append(typ, amount, &tag, nil), nil
}

func (p *Posting) append(typ TransactionType, amount decimal.Decimal, tag *PaymentDetail, holdID *string) Transaction {
	var detail *PaymentDetail
	if tag != nil {
		copied := *tag
		detail = &copied
	}

	tx := Transaction{
		ID:             uuid.NewString(),
		AccountID:      p.Account.ID,
		Type:           typ,
		Amount:         amount,
		Currency:       p.Account.Currency,
		RunningBalance: p.Account.WithdrawableBalance(),
		PaymentDetail:  detail,
		HoldID:         holdID,
		CreatedBy:      p.actor,
		CreatedAt:      p.now,
	}
	p.Transactions = append(p.Transactions, tx)
	return tx
}

func (p *Posting) releases(holdID string) bool {
	for _, r := range p.Releases {
		if r.HoldID == holdID {
			return true
		}
	}
	return false
}
