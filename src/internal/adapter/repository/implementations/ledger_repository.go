package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/google/uuid"
)

const accountColumns = `id, external_id, currency, available_balance, on_hold_amount, status, debit_blocked, credit_blocked, locked_until, version, created_at, updated_at`

const transactionColumns = `id, account_id, type, amount, currency, running_balance, routing_code, transfer_code, hold_id, released_by, created_by, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// LedgerRepository stores accounts and their transaction logs in Postgres.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("ledger repository create account", logger.Fields{
		"externalId": account.ExternalID,
		"currency":   account.Currency,
	})

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Status == "" {
		account.Status = domain.AccountStatusActive
	}

	const query = `
INSERT INTO accounts (
	id,
	external_id,
	currency,
	available_balance,
	on_hold_amount,
	status,
	debit_blocked,
	credit_blocked,
	locked_until,
	version
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.ID,
		account.ExternalID,
		strings.ToUpper(account.Currency),
		account.AvailableBalance,
		account.OnHoldAmount,
		account.Status,
		account.DebitBlocked,
		account.CreditBlocked,
		nullTime(account.LockedUntil),
		account.Version,
	).Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		logger.Error("ledger repository create account failed", err, logger.Fields{
			"externalId": account.ExternalID,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (r *LedgerRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *LedgerRepository) GetByExternalID(ctx context.Context, externalID string) (domain.Account, error) {
	return r.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE external_id = $1`, externalID)
}

func (r *LedgerRepository) getAccount(ctx context.Context, query string, key string) (domain.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		logger.Error("ledger repository get account failed", err, logger.Fields{"key": key})
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (r *LedgerRepository) FindTransaction(ctx context.Context, accountID string, typ domain.TransactionType, routingCode string, transferCode string) (domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE account_id = $1
  AND type = $2
  AND routing_code = $3
  AND transfer_code = $4
ORDER BY created_at ASC
LIMIT 1`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, accountID, typ, routingCode, transferCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrTransferNotFound
		}
		logger.Error("ledger repository find transaction failed", err, logger.Fields{
			"accountId":    accountID,
			"type":         typ,
			"transferCode": transferCode,
		})
		return domain.Transaction{}, fmt.Errorf("find transaction: %w", err)
	}
	return tx, nil
}

func (r *LedgerRepository) FindByTransferCode(ctx context.Context, routingCode string, transferCode string) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE routing_code = $1
  AND transfer_code = $2
ORDER BY created_at ASC`

	return r.queryTransactions(ctx, "find by transfer code", query, routingCode, transferCode)
}

func (r *LedgerRepository) ListTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var types []string
	for _, typ := range []domain.TransactionType{
		domain.TransactionTypeHold,
		domain.TransactionTypeRelease,
		domain.TransactionTypeDeposit,
		domain.TransactionTypeWithdrawal,
		domain.TransactionTypeWithdrawalFee,
		domain.TransactionTypeCommission,
	} {
		direction := typ.Direction()
		if (direction == domain.DirectionDebit && filter.Debit) || (direction == domain.DirectionCredit && filter.Credit) {
			types = append(types, string(typ))
		}
	}
	if len(types) == 0 {
		return []domain.Transaction{}, nil
	}

	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE account_id = $1
  AND type = ANY(string_to_array($2, ','))
  AND ($3::timestamptz IS NULL OR created_at >= $3::timestamptz)
  AND ($4::timestamptz IS NULL OR created_at < $4::timestamptz)
ORDER BY created_at ASC`

	return r.queryTransactions(ctx, "list transactions", query, accountID, strings.Join(types, ","), nullTime(filter.From), nullTime(filter.To))
}

func (r *LedgerRepository) ListUnreleasedHolds(ctx context.Context, createdBefore time.Time) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE type = 'HOLD'
  AND released_by IS NULL
  AND created_at < $1
ORDER BY created_at ASC`

	return r.queryTransactions(ctx, "list unreleased holds", query, createdBefore)
}

func (r *LedgerRepository) queryTransactions(ctx context.Context, op string, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("ledger repository "+op+" failed", err, nil)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return txs, nil
}

// ApplyPosting writes the account row, the new transactions and the hold
// release links in one database transaction. The account update is guarded by
// the expected version, so a stale posting changes nothing.
func (r *LedgerRepository) ApplyPosting(ctx context.Context, posting domain.Posting) (err error) {
	account := posting.Account
	logger.Info("ledger repository apply posting", logger.Fields{
		"accountId":       account.ID,
		"expectedVersion": posting.ExpectedVersion,
		"transactions":    len(posting.Transactions),
		"releases":        len(posting.Releases),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return fmt.Errorf("begin posting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateAccount = `
UPDATE accounts
SET available_balance = $2,
    on_hold_amount = $3,
    version = $4,
    updated_at = $5
WHERE id = $1
  AND version = $6`

	result, err := tx.ExecContext(ctx, updateAccount, account.ID, account.AvailableBalance, account.OnHoldAmount, account.Version, account.UpdatedAt, posting.ExpectedVersion)
	if err != nil {
		return fmt.Errorf("update account %s: %w", account.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, account.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check account %s: %w", account.ID, err)
		}
		if !exists {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("apply posting to account %s: %w", account.ID, domain.ErrConcurrentUpdate)
	}

	insertTransaction := `
INSERT INTO transactions (` + transactionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for _, entry := range posting.Transactions {
		routingCode, transferCode := sql.NullString{}, sql.NullString{}
		if entry.PaymentDetail != nil {
			routingCode = sql.NullString{String: entry.PaymentDetail.RoutingCode, Valid: true}
			transferCode = sql.NullString{String: entry.PaymentDetail.TransferCode, Valid: true}
		}

		if _, err = tx.ExecContext(
			ctx,
			insertTransaction,
			entry.ID,
			entry.AccountID,
			entry.Type,
			entry.Amount,
			entry.Currency,
			entry.RunningBalance,
			routingCode,
			transferCode,
			nullString(entry.HoldID),
			nullString(entry.ReleasedBy),
			entry.CreatedBy,
			entry.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", entry.Type, err)
		}
	}

	const releaseHold = `
UPDATE transactions
SET released_by = $2
WHERE id = $1
  AND account_id = $3
  AND type = 'HOLD'
  AND released_by IS NULL`

	for _, link := range posting.Releases {
		if _, err = execRequiredRows(ctx, tx, releaseHold, link.HoldID, link.ReleaseID, account.ID); err != nil {
			return fmt.Errorf("release hold %s: %w: %w", link.HoldID, domain.ErrConcurrentUpdate, err)
		}
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit tx failed", err, logger.Fields{"accountId": account.ID})
		return fmt.Errorf("commit posting transaction: %w", err)
	}

	logger.Info("ledger repository apply posting success", logger.Fields{
		"accountId": account.ID,
		"version":   account.Version,
	})
	return nil
}

func execRequiredRows(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute transaction statement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return 0, errors.New("no row matched")
	}
	return rows, nil
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account     domain.Account
		lockedUntil sql.NullTime
	)
	if err := row.Scan(
		&account.ID,
		&account.ExternalID,
		&account.Currency,
		&account.AvailableBalance,
		&account.OnHoldAmount,
		&account.Status,
		&account.DebitBlocked,
		&account.CreditBlocked,
		&lockedUntil,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}

	if lockedUntil.Valid {
		value := lockedUntil.Time
		account.LockedUntil = &value
	}
	return account, nil
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var tx domain.Transaction
	var routingCode, transferCode, holdID, releasedBy sql.NullString
	if err := row.Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.Type,
		&tx.Amount,
		&tx.Currency,
		&tx.RunningBalance,
		&routingCode,
		&transferCode,
		&holdID,
		&releasedBy,
		&tx.CreatedBy,
		&tx.CreatedAt,
	); err != nil {
		return domain.Transaction{}, err
	}

	if routingCode.Valid || transferCode.Valid {
		tx.PaymentDetail = &domain.PaymentDetail{RoutingCode: routingCode.String, TransferCode: transferCode.String}
	}
	if holdID.Valid {
		value := holdID.String
		tx.HoldID = &value
	}
	if releasedBy.Valid {
		value := releasedBy.String
		tx.ReleasedBy = &value
	}
	return tx, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nonZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
