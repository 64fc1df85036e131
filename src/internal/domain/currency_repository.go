package domain

import "context"

type CurrencyRepository interface {
	GetAll(ctx context.Context) ([]Currency, error)
	GetByCode(ctx context.Context, code string) (Currency, error)
}
