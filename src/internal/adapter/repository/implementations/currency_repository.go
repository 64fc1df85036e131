package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
)

type CurrencyRepository struct {
	db *sql.DB
}

func NewCurrencyRepository(db *sql.DB) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

func (r *CurrencyRepository) GetAll(ctx context.Context) ([]domain.Currency, error) {
	const query = `
SELECT code, name, decimal_places
FROM currencies
ORDER BY code ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("currency repository get all failed", err, nil)
		return nil, fmt.Errorf("get currencies: %w", err)
	}
	defer rows.Close()

	currencies := make([]domain.Currency, 0)
	for rows.Next() {
		var currency domain.Currency
		if err := rows.Scan(&currency.Code, &currency.Name, &currency.DecimalPlaces); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		currencies = append(currencies, currency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate currencies: %w", err)
	}

	return currencies, nil
}

func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (domain.Currency, error) {
	const query = `
SELECT code, name, decimal_places
FROM currencies
WHERE code = $1`

	var currency domain.Currency
	if err := r.db.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&currency.Code,
		&currency.Name,
		&currency.DecimalPlaces,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Currency{}, domain.ErrCurrencyNotFound
		}
		logger.Error("currency repository get by code failed", err, logger.Fields{"code": code})
		return domain.Currency{}, fmt.Errorf("get currency: %w", err)
	}

	return currency, nil
}
