package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/shopspring/decimal"
)

type MoneyData struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (m *MoneyData) toDomain() *domain.Money {
	if m == nil {
		return nil
	}
	return &domain.Money{Amount: m.Amount, Currency: strings.ToUpper(strings.TrimSpace(m.Currency))}
}

// PartyData names the account directly or through a directory identifier.
type PartyData struct {
	AccountID   string `json:"accountId"`
	IDType      string `json:"idType,omitempty"`
	IDValue     string `json:"idValue,omitempty"`
	SubIDOrType string `json:"subIdOrType,omitempty"`
}

func (p PartyData) validate() []string {
	if strings.TrimSpace(p.AccountID) != "" {
		return nil
	}
	if strings.TrimSpace(p.IDType) == "" || strings.TrimSpace(p.IDValue) == "" {
		return []string{"accountId or idType and idValue are required"}
	}
	if _, ok := domain.ParseIdentifierType(p.IDType); !ok {
		return []string{"idType is not supported"}
	}
	return nil
}

func (p PartyData) toDomain() domain.Party {
	idType, _ := domain.ParseIdentifierType(p.IDType)
	return domain.Party{
		AccountID:   strings.TrimSpace(p.AccountID),
		IDType:      idType,
		IDValue:     strings.TrimSpace(p.IDValue),
		SubIDOrType: strings.TrimSpace(p.SubIDOrType),
	}
}

type TransferRequest struct {
	TransactionCode string `json:"transactionCode"`
	TransferCode    string `json:"transferCode"`
	PartyData
	Amount          MoneyData  `json:"amount"`
	TransactionRole string     `json:"transactionRole"`
	FspFee          *MoneyData `json:"fspFee,omitempty"`
	FspCommission   *MoneyData `json:"fspCommission,omitempty"`
	Expiration      *time.Time `json:"expiration,omitempty"`
	Note            string     `json:"note,omitempty"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.TransactionCode) == "" {
		errs = append(errs, "transactionCode is required")
	}
	if strings.TrimSpace(r.TransferCode) == "" {
		errs = append(errs, "transferCode is required")
	}
	errs = append(errs, r.PartyData.validate()...)
	errs = append(errs, validateAmount("amount", r.Amount)...)
	errs = append(errs, validateRole(r.TransactionRole)...)
	if r.FspFee != nil && r.FspFee.Amount.IsNegative() {
		errs = append(errs, "fspFee must not be negative")
	}
	if r.FspCommission != nil && r.FspCommission.Amount.IsNegative() {
		errs = append(errs, "fspCommission must not be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r TransferRequest) ToDomain() domain.TransferRequest {
	return domain.TransferRequest{
		TransactionCode: strings.TrimSpace(r.TransactionCode),
		TransferCode:    strings.TrimSpace(r.TransferCode),
		Party:           r.PartyData.toDomain(),
		Amount:          *r.Amount.toDomain(),
		Role:            domain.TransactionRole(strings.ToUpper(strings.TrimSpace(r.TransactionRole))),
		FspFee:          r.FspFee.toDomain(),
		FspCommission:   r.FspCommission.toDomain(),
		Expiration:      r.Expiration,
		Note:            r.Note,
	}
}

type ReleaseTransferRequest struct {
	TransactionCode string `json:"transactionCode"`
	AccountID       string `json:"accountId"`
}

func (r ReleaseTransferRequest) Validate() error {
	if strings.TrimSpace(r.AccountID) == "" {
		return errors.New("accountId is required")
	}
	return nil
}

func (r ReleaseTransferRequest) ToDomain(transferCode string) domain.ReleaseRequest {
	return domain.ReleaseRequest{
		TransactionCode: strings.TrimSpace(r.TransactionCode),
		TransferCode:    strings.TrimSpace(transferCode),
		AccountID:       strings.TrimSpace(r.AccountID),
	}
}

type TransferResponse struct {
	TransactionCode string     `json:"transactionCode"`
	TransferCode    string     `json:"transferCode"`
	AccountID       string     `json:"accountId,omitempty"`
	ActionState     string     `json:"actionState"`
	TransferState   string     `json:"transferState"`
	Expiration      *time.Time `json:"expiration,omitempty"`
	CompletedAt     time.Time  `json:"completedTimestamp"`
}

func NewTransferResponse(result domain.TransferResult) TransferResponse {
	return TransferResponse{
		TransactionCode: result.TransactionCode,
		TransferCode:    result.TransferCode,
		AccountID:       result.AccountID,
		ActionState:     string(result.State),
		TransferState:   string(result.TransferState),
		Expiration:      result.Expiration,
		CompletedAt:     result.CompletedAt,
	}
}

func validateAmount(field string, m MoneyData) []string {
	var errs []string
	if !m.Amount.IsPositive() {
		errs = append(errs, field+" must be greater than zero")
	}
	if len(strings.TrimSpace(m.Currency)) != 3 {
		errs = append(errs, field+" currency must be 3 characters")
	}
	return errs
}

func validateRole(role string) []string {
	if _, ok := domain.TransactionRole(strings.ToUpper(strings.TrimSpace(role))).Direction(); !ok {
		return []string{"transactionRole must be PAYER or PAYEE"}
	}
	return nil
}
