//go:build integration

package implementations

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupLedgerDB starts a disposable Postgres, applies the migrations and
// returns a repository over it.
func setupLedgerDB(t *testing.T) *LedgerRepository {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("settlement"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, "postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = RunMigrations(ctx, db, filepath.Join("..", "..", "..", "..", "migrations"))
	require.NoError(t, err)

	return NewLedgerRepository(db)
}

func createTestAccount(t *testing.T, repo *LedgerRepository) domain.Account {
	t.Helper()
	account, err := repo.Create(context.Background(), domain.Account{
		ExternalID:       "acc-pg-1",
		Currency:         "USD",
		AvailableBalance: decimal.NewFromInt(1000),
		Status:           domain.AccountStatusActive,
	})
	require.NoError(t, err)
	return account
}

func holdPosting(t *testing.T, account domain.Account, amount int64, code string) (*domain.Posting, domain.Transaction) {
	t.Helper()
	posting := domain.NewPosting(account, "test", time.Now().UTC().Truncate(time.Microsecond))
	hold, err := posting.Hold(decimal.NewFromInt(amount), domain.PaymentDetail{RoutingCode: "INTEROP", TransferCode: code})
	require.NoError(t, err)
	return posting, hold
}

func TestIntegrationApplyPostingHoldAndRelease(t *testing.T) {
	ctx := context.Background()
	repo := setupLedgerDB(t)
	account := createTestAccount(t, repo)

	posting, hold := holdPosting(t, account, 100, "PG1")
	require.NoError(t, repo.ApplyPosting(ctx, *posting))

	current, err := repo.GetByExternalID(ctx, "acc-pg-1")
	require.NoError(t, err)
	assert.True(t, current.OnHoldAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, account.Version+1, current.Version)

	release := domain.NewPosting(current, "test", time.Now().UTC())
	releaseTx, err := release.Release(hold)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyPosting(ctx, *release))

	stored, err := repo.FindTransaction(ctx, account.ID, domain.TransactionTypeHold, "INTEROP", "PG1")
	require.NoError(t, err)
	require.True(t, stored.IsReleased())
	assert.Equal(t, releaseTx.ID, *stored.ReleasedBy)

	current, err = repo.GetByExternalID(ctx, "acc-pg-1")
	require.NoError(t, err)
	assert.True(t, current.OnHoldAmount.IsZero())
}

func TestIntegrationApplyPostingStaleVersionChangesNothing(t *testing.T) {
	ctx := context.Background()
	repo := setupLedgerDB(t)
	account := createTestAccount(t, repo)

	first, _ := holdPosting(t, account, 100, "PG-A")
	stale, _ := holdPosting(t, account, 200, "PG-B")
	require.NoError(t, repo.ApplyPosting(ctx, *first))

	err := repo.ApplyPosting(ctx, *stale)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	current, err := repo.GetByExternalID(ctx, "acc-pg-1")
	require.NoError(t, err)
	assert.True(t, current.OnHoldAmount.Equal(decimal.NewFromInt(100)))

	_, err = repo.FindTransaction(ctx, account.ID, domain.TransactionTypeHold, "INTEROP", "PG-B")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}

func TestIntegrationApplyPostingRollsBackWhenHoldAlreadyReleased(t *testing.T) {
	ctx := context.Background()
	repo := setupLedgerDB(t)
	account := createTestAccount(t, repo)

	postA, holdA := holdPosting(t, account, 10, "PG-A")
	require.NoError(t, repo.ApplyPosting(ctx, *postA))
	current, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	postB, _ := holdPosting(t, current, 10, "PG-B")
	require.NoError(t, repo.ApplyPosting(ctx, *postB))

	current, err = repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	release := domain.NewPosting(current, "test", time.Now().UTC())
	_, err = release.Release(holdA)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyPosting(ctx, *release))

	// holdA still looks open to a caller holding the old copy.
	current, err = repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	again := domain.NewPosting(current, "test", time.Now().UTC())
	_, err = again.Release(holdA)
	require.NoError(t, err)

	err = repo.ApplyPosting(ctx, *again)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	after, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, current.Version, after.Version)
	assert.True(t, after.OnHoldAmount.Equal(decimal.NewFromInt(10)))

	txs, err := repo.ListTransactions(ctx, account.ID, domain.TransactionFilter{Debit: true, Credit: true})
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}
