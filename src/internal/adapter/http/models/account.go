package models

import (
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/shopspring/decimal"
)

type AccountResponse struct {
	AccountID           string          `json:"accountId"`
	Currency            string          `json:"currency"`
	AvailableBalance    decimal.Decimal `json:"availableBalance"`
	OnHoldAmount        decimal.Decimal `json:"onHoldAmount"`
	WithdrawableBalance decimal.Decimal `json:"withdrawableBalance"`
	Status              string          `json:"status"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:           account.ExternalID,
		Currency:            account.Currency,
		AvailableBalance:    account.AvailableBalance,
		OnHoldAmount:        account.OnHoldAmount,
		WithdrawableBalance: account.WithdrawableBalance(),
		Status:              string(account.Status),
	}
}

type TransactionResponse struct {
	TransactionID  string          `json:"transactionId"`
	Type           string          `json:"transactionType"`
	Direction      string          `json:"direction"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	TransferCode   string          `json:"transferCode,omitempty"`
	CreatedAt      time.Time       `json:"bookingDateTime"`
}

func NewTransactionResponses(txs []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp := TransactionResponse{
			TransactionID:  tx.ID,
			Type:           string(tx.Type),
			Direction:      string(tx.Type.Direction()),
			Amount:         tx.Amount,
			Currency:       tx.Currency,
			RunningBalance: tx.RunningBalance,
			CreatedAt:      tx.CreatedAt,
		}
		if tx.PaymentDetail != nil {
			resp.TransferCode = tx.PaymentDetail.TransferCode
		}
		out = append(out, resp)
	}
	return out
}

type IdentifierResponse struct {
	IDType      string `json:"idType"`
	IDValue     string `json:"idValue"`
	SubIDOrType string `json:"subIdOrType,omitempty"`
	AccountID   string `json:"accountId"`
}

func NewIdentifierResponse(identifier domain.Identifier) IdentifierResponse {
	return IdentifierResponse{
		IDType:      string(identifier.IDType),
		IDValue:     identifier.IDValue,
		SubIDOrType: identifier.SubIDOrType,
		AccountID:   identifier.AccountID,
	}
}

type RegisterPartyRequest struct {
	AccountID string `json:"accountId"`
}
