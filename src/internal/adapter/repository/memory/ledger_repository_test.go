package memory

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, repo *LedgerRepository, balance int64) domain.Account {
	t.Helper()

	account, err := repo.Create(context.Background(), domain.Account{
		ExternalID:       "ext-1",
		Currency:         "USD",
		AvailableBalance: decimal.NewFromInt(balance),
		Status:           domain.AccountStatusActive,
	})
	require.NoError(t, err)
	return account
}

func TestApplyPostingAppendsAndUpdatesAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	account := seedAccount(t, repo, 1000)

	posting := domain.NewPosting(account, "actor", time.Now().UTC())
	hold, err := posting.Hold(decimal.NewFromInt(100), domain.PaymentDetail{RoutingCode: "R", TransferCode: "T1"})
	require.NoError(t, err)
	require.NoError(t, repo.ApplyPosting(ctx, *posting))

	stored, err := repo.GetByExternalID(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.True(t, stored.OnHoldAmount.Equal(decimal.NewFromInt(100)))

	found, err := repo.FindTransaction(ctx, account.ID, domain.TransactionTypeHold, "R", "T1")
	require.NoError(t, err)
	assert.Equal(t, hold.ID, found.ID)
	assert.True(t, found.RunningBalance.Equal(decimal.NewFromInt(900)))
}

func TestApplyPostingRejectsStaleVersionWithoutMutation(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	account := seedAccount(t, repo, 1000)

	first := domain.NewPosting(account, "actor", time.Now().UTC())
	_, err := first.Hold(decimal.NewFromInt(10), domain.PaymentDetail{RoutingCode: "R", TransferCode: "A"})
	require.NoError(t, err)

	stale := domain.NewPosting(account, "actor", time.Now().UTC())
	_, err = stale.Hold(decimal.NewFromInt(20), domain.PaymentDetail{RoutingCode: "R", TransferCode: "B"})
	require.NoError(t, err)

	require.NoError(t, repo.ApplyPosting(ctx, *first))
	err = repo.ApplyPosting(ctx, *stale)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	txs, err := repo.ListTransactions(ctx, account.ID, domain.TransactionFilter{Debit: true, Credit: true})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestApplyPostingLinksReleaseToHold(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	account := seedAccount(t, repo, 500)

	holdPosting := domain.NewPosting(account, "actor", time.Now().UTC())
	hold, err := holdPosting.Hold(decimal.NewFromInt(50), domain.PaymentDetail{RoutingCode: "R", TransferCode: "T3"})
	require.NoError(t, err)
	require.NoError(t, repo.ApplyPosting(ctx, *holdPosting))

	account, err = repo.GetByExternalID(ctx, "ext-1")
	require.NoError(t, err)

	releasePosting := domain.NewPosting(account, "actor", time.Now().UTC())
	release, err := releasePosting.Release(hold)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyPosting(ctx, *releasePosting))

	stored, err := repo.FindTransaction(ctx, account.ID, domain.TransactionTypeHold, "R", "T3")
	require.NoError(t, err)
	require.NotNil(t, stored.ReleasedBy)
	assert.Equal(t, release.ID, *stored.ReleasedBy)

	holds, err := repo.ListUnreleasedHolds(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, holds)

	byCode, err := repo.FindByTransferCode(ctx, "R", "T3")
	require.NoError(t, err)
	assert.Len(t, byCode, 2)
}

func TestFindTransactionNotFound(t *testing.T) {
	repo := NewLedgerRepository()
	_, err := repo.FindTransaction(context.Background(), "missing", domain.TransactionTypeHold, "R", "T")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)

	_, err = repo.GetByExternalID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestIdentifierRepositoryUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewIdentifierRepository()

	created, err := repo.Create(ctx, domain.Identifier{IDType: domain.IdentifierTypeMSISDN, IDValue: "255700000001", AccountID: "a1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.Identifier{IDType: domain.IdentifierTypeMSISDN, IDValue: "255700000001", AccountID: "a2"})
	assert.ErrorIs(t, err, domain.ErrIdentifierExists)

	_, err = repo.Create(ctx, domain.Identifier{IDType: domain.IdentifierTypeMSISDN, IDValue: "255700000001", SubIDOrType: "wallet", AccountID: "a2"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Find(ctx, domain.IdentifierTypeMSISDN, "255700000001", "")
	assert.ErrorIs(t, err, domain.ErrIdentifierNotFound)
}

func TestCurrencyRepositoryGetByCode(t *testing.T) {
	repo := NewCurrencyRepository()

	c, err := repo.GetByCode(context.Background(), "ugx")
	require.NoError(t, err)
	assert.Equal(t, int32(0), c.DecimalPlaces)

	_, err = repo.GetByCode(context.Background(), "ZZZ")
	assert.ErrorIs(t, err, domain.ErrCurrencyNotFound)
}
