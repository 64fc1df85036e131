package memory

import (
	"context"
	"strings"

	"github.com/api-sage/interop-settlement/src/internal/domain"
)

type CurrencyRepository struct{}

func NewCurrencyRepository() *CurrencyRepository {
	return &CurrencyRepository{}
}

func (r *CurrencyRepository) GetAll(_ context.Context) ([]domain.Currency, error) {
	currencies := []domain.Currency{
		{Code: "USD", Name: "US Dollar", DecimalPlaces: 2},
		{Code: "EUR", Name: "Euro", DecimalPlaces: 2},
		{Code: "GBP", Name: "Pound Sterling", DecimalPlaces: 2},
		{Code: "KES", Name: "Kenyan Shilling", DecimalPlaces: 2},
		{Code: "TZS", Name: "Tanzanian Shilling", DecimalPlaces: 2},
		{Code: "UGX", Name: "Uganda Shilling", DecimalPlaces: 0},
		{Code: "NGN", Name: "Naira", DecimalPlaces: 2},
		{Code: "XOF", Name: "CFA Franc BCEAO", DecimalPlaces: 0},
		{Code: "JPY", Name: "Yen", DecimalPlaces: 0},
		{Code: "BHD", Name: "Bahraini Dinar", DecimalPlaces: 3},
	}

	return currencies, nil
}

func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (domain.Currency, error) {
	currencies, _ := r.GetAll(ctx)
	for _, c := range currencies {
		if strings.EqualFold(c.Code, strings.TrimSpace(code)) {
			return c, nil
		}
	}
	return domain.Currency{}, domain.ErrCurrencyNotFound
}
