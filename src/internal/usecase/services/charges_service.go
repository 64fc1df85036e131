package services

import (
	"fmt"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ChargesService computes the scheme fee charged on outgoing transfers.
type ChargesService struct {
	feePercent decimal.Decimal
}

func NewChargesService(feePercent decimal.Decimal) (*ChargesService, error) {
	if feePercent.IsNegative() {
		return nil, fmt.Errorf("fee percent must not be negative")
	}
	return &ChargesService{feePercent: feePercent}, nil
}

// GetCharge returns amount × feePercent / 100 rounded to the currency.
func (s *ChargesService) GetCharge(amount decimal.Decimal, currency domain.Currency) decimal.Decimal {
	return currency.Normalize(amount.Mul(s.feePercent).Div(hundred))
}
