package domain

import "github.com/shopspring/decimal"

// Currency is the catalogue entry used to normalize amounts.
type Currency struct {
	Code          string
	Name          string
	DecimalPlaces int32
}

// Normalize rounds an amount to the currency precision with banker's rounding.
func (c Currency) Normalize(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(c.DecimalPlaces)
}
