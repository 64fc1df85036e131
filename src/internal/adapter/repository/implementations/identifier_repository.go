package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/google/uuid"
)

type IdentifierRepository struct {
	db *sql.DB
}

func NewIdentifierRepository(db *sql.DB) *IdentifierRepository {
	return &IdentifierRepository{db: db}
}

func (r *IdentifierRepository) Create(ctx context.Context, identifier domain.Identifier) (domain.Identifier, error) {
	logger.Info("identifier repository create", logger.Fields{
		"idType":    identifier.IDType,
		"accountId": identifier.AccountID,
	})

	identifier.ID = uuid.NewString()

	const query = `
INSERT INTO identifiers (
	id,
	id_type,
	id_value,
	sub_id_or_type,
	account_id,
	created_by
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		identifier.ID,
		identifier.IDType,
		identifier.IDValue,
		identifier.SubIDOrType,
		identifier.AccountID,
		identifier.CreatedBy,
	).Scan(&identifier.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Identifier{}, domain.ErrIdentifierExists
		}
		logger.Error("identifier repository create failed", err, logger.Fields{
			"idType":    identifier.IDType,
			"accountId": identifier.AccountID,
		})
		return domain.Identifier{}, fmt.Errorf("create identifier: %w", err)
	}

	return identifier, nil
}

func (r *IdentifierRepository) Find(ctx context.Context, idType domain.IdentifierType, idValue string, subIDOrType string) (domain.Identifier, error) {
	const query = `
SELECT id, id_type, id_value, sub_id_or_type, account_id, created_by, created_at
FROM identifiers
WHERE id_type = $1
  AND id_value = $2
  AND sub_id_or_type = $3`

	var identifier domain.Identifier
	if err := r.db.QueryRowContext(ctx, query, idType, idValue, subIDOrType).Scan(
		&identifier.ID,
		&identifier.IDType,
		&identifier.IDValue,
		&identifier.SubIDOrType,
		&identifier.AccountID,
		&identifier.CreatedBy,
		&identifier.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identifier{}, domain.ErrIdentifierNotFound
		}
		logger.Error("identifier repository find failed", err, logger.Fields{"idType": idType})
		return domain.Identifier{}, fmt.Errorf("find identifier: %w", err)
	}

	return identifier, nil
}

func (r *IdentifierRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM identifiers WHERE id = $1`, id)
	if err != nil {
		logger.Error("identifier repository delete failed", err, logger.Fields{"identifierId": id})
		return fmt.Errorf("delete identifier: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete identifier rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrIdentifierNotFound
	}
	return nil
}

func (r *IdentifierRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Identifier, error) {
	const query = `
SELECT id, id_type, id_value, sub_id_or_type, account_id, created_by, created_at
FROM identifiers
WHERE account_id = $1
ORDER BY id_type ASC, id_value ASC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		logger.Error("identifier repository list failed", err, logger.Fields{"accountId": accountID})
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	defer rows.Close()

	identifiers := make([]domain.Identifier, 0)
	for rows.Next() {
		var identifier domain.Identifier
		if err := rows.Scan(
			&identifier.ID,
			&identifier.IDType,
			&identifier.IDValue,
			&identifier.SubIDOrType,
			&identifier.AccountID,
			&identifier.CreatedBy,
			&identifier.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		identifiers = append(identifiers, identifier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identifiers: %w", err)
	}

	return identifiers, nil
}
