package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
)

type QuoteRequest struct {
	TransactionCode string `json:"transactionCode"`
	QuoteCode       string `json:"quoteCode"`
	PartyData
	Amount          MoneyData  `json:"amount"`
	TransactionRole string     `json:"transactionRole"`
	Expiration      *time.Time `json:"expiration,omitempty"`
}

func (r QuoteRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.QuoteCode) == "" {
		errs = append(errs, "quoteCode is required")
	}
	errs = append(errs, r.PartyData.validate()...)
	errs = append(errs, validateAmount("amount", r.Amount)...)
	errs = append(errs, validateRole(r.TransactionRole)...)

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r QuoteRequest) ToDomain() domain.QuoteRequest {
	return domain.QuoteRequest{
		TransactionCode: strings.TrimSpace(r.TransactionCode),
		QuoteCode:       strings.TrimSpace(r.QuoteCode),
		Party:           r.PartyData.toDomain(),
		Amount:          *r.Amount.toDomain(),
		Role:            domain.TransactionRole(strings.ToUpper(strings.TrimSpace(r.TransactionRole))),
		Expiration:      r.Expiration,
	}
}

type QuoteResponse struct {
	TransactionCode string     `json:"transactionCode"`
	QuoteCode       string     `json:"quoteCode"`
	AccountID       string     `json:"accountId"`
	ActionState     string     `json:"actionState"`
	FspFee          MoneyData  `json:"fspFee"`
	Expiration      *time.Time `json:"expiration,omitempty"`
	CompletedAt     time.Time  `json:"completedTimestamp"`
}

func NewQuoteResponse(result domain.QuoteResult) QuoteResponse {
	return QuoteResponse{
		TransactionCode: result.TransactionCode,
		QuoteCode:       result.QuoteCode,
		AccountID:       result.AccountID,
		ActionState:     string(result.State),
		FspFee:          MoneyData{Amount: result.Fee.Amount, Currency: result.Fee.Currency},
		Expiration:      result.Expiration,
		CompletedAt:     result.CompletedAt,
	}
}

type TransactionRequestRequest struct {
	TransactionCode string `json:"transactionCode"`
	RequestCode     string `json:"requestCode"`
	PartyData
	Amount          MoneyData  `json:"amount"`
	TransactionRole string     `json:"transactionRole"`
	Expiration      *time.Time `json:"expiration,omitempty"`
}

func (r TransactionRequestRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.TransactionCode) == "" {
		errs = append(errs, "transactionCode is required")
	}
	if strings.TrimSpace(r.RequestCode) == "" {
		errs = append(errs, "requestCode is required")
	}
	errs = append(errs, r.PartyData.validate()...)
	errs = append(errs, validateAmount("amount", r.Amount)...)
	errs = append(errs, validateRole(r.TransactionRole)...)

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r TransactionRequestRequest) ToDomain() domain.TransactionRequest {
	return domain.TransactionRequest{
		TransactionCode: strings.TrimSpace(r.TransactionCode),
		RequestCode:     strings.TrimSpace(r.RequestCode),
		Party:           r.PartyData.toDomain(),
		Amount:          *r.Amount.toDomain(),
		Role:            domain.TransactionRole(strings.ToUpper(strings.TrimSpace(r.TransactionRole))),
		Expiration:      r.Expiration,
	}
}

type TransactionRequestResponse struct {
	TransactionCode string     `json:"transactionCode"`
	RequestCode     string     `json:"requestCode"`
	AccountID       string     `json:"accountId,omitempty"`
	ActionState     string     `json:"actionState"`
	Expiration      *time.Time `json:"expiration,omitempty"`
	CompletedAt     time.Time  `json:"completedTimestamp"`
}

func NewTransactionRequestResponse(result domain.TransactionRequestResult) TransactionRequestResponse {
	return TransactionRequestResponse{
		TransactionCode: result.TransactionCode,
		RequestCode:     result.RequestCode,
		AccountID:       result.AccountID,
		ActionState:     string(result.State),
		Expiration:      result.Expiration,
		CompletedAt:     result.CompletedAt,
	}
}
