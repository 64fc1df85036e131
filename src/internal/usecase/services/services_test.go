package services_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/repository/memory"
	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/api-sage/interop-settlement/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewIdentifierService(f.identifiers, f.ledger)
	key := services.IdentifierKey{IDType: "msisdn", IDValue: " 255700000009 "}

	created, err := svc.RegisterIdentifier(ctx, testCaller, key, "acc-1000")
	require.NoError(t, err)
	assert.Equal(t, domain.IdentifierTypeMSISDN, created.IDType)
	assert.Equal(t, "255700000009", created.IDValue)
	assert.Equal(t, "scheme-adapter", created.CreatedBy)

	_, err = svc.RegisterIdentifier(ctx, testCaller, key, "acc-1000")
	assert.ErrorIs(t, err, domain.ErrIdentifierExists)

	_, err = svc.RegisterIdentifier(ctx, testCaller, services.IdentifierKey{IDType: "IBAN", IDValue: "X"}, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = svc.RegisterIdentifier(ctx, testCaller, services.IdentifierKey{IDType: "PHONE", IDValue: "1"}, "acc-1000")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	found, err := svc.LookupIdentifier(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "acc-1000", found.AccountID)

	listed, err := svc.ListAccountIdentifiers(ctx, "acc-1000")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	deleted, err := svc.DeleteIdentifier(ctx, testCaller, key)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.LookupIdentifier(ctx, key)
	assert.ErrorIs(t, err, domain.ErrIdentifierNotFound)
}

func TestAccountServiceFiltersHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewAccountService(f.ledger)

	req := debitRequest("H1", "100", money("5"), nil)
	_, err := f.svc.PrepareTransfer(ctx, testCaller, req)
	require.NoError(t, err)
	_, err = f.svc.CommitTransfer(ctx, testCaller, req)
	require.NoError(t, err)

	details, err := svc.GetAccountDetails(ctx, "acc-1000")
	require.NoError(t, err)
	assertDecimal(t, "895", details.WithdrawableBalance())

	all, err := svc.GetAccountTransactions(ctx, services.TransactionQuery{AccountID: "acc-1000"})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	debits, err := svc.GetAccountTransactions(ctx, services.TransactionQuery{AccountID: "acc-1000", Debit: true})
	require.NoError(t, err)
	require.Len(t, debits, 3)
	for _, tx := range debits {
		assert.Equal(t, domain.DirectionDebit, tx.Type.Direction())
	}

	credits, err := svc.GetAccountTransactions(ctx, services.TransactionQuery{AccountID: "acc-1000", Credit: true})
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, domain.TransactionTypeRelease, credits[0].Type)

	future := time.Now().Add(time.Hour)
	none, err := svc.GetAccountTransactions(ctx, services.TransactionQuery{AccountID: "acc-1000", From: &future})
	require.NoError(t, err)
	assert.Empty(t, none)

	past := time.Now().Add(-time.Hour)
	_, err = svc.GetAccountTransactions(ctx, services.TransactionQuery{AccountID: "acc-1000", From: &future, To: &past})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.GetAccountDetails(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func newQuoteService(t *testing.T, f *fixture, percent string) *services.QuoteService {
	t.Helper()
	charges, err := services.NewChargesService(decimal.RequireFromString(percent))
	require.NoError(t, err)
	validator := services.NewTransferValidator(f.ledger, f.identifiers, memory.NewCurrencyRepository())
	return services.NewQuoteService(validator, charges)
}

func TestQuoteServiceChargesDebitsOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newQuoteService(t, f, "1.5")

	quote, err := svc.CreateQuote(ctx, testCaller, domain.QuoteRequest{
		TransactionCode: "tx-q1",
		QuoteCode:       "Q1",
		Party:           domain.Party{AccountID: "acc-1000"},
		Amount:          *money("200.33"),
		Role:            domain.TransactionRolePayer,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStateAccepted, quote.State)
	assertDecimal(t, "3", quote.Fee.Amount)
	assert.Equal(t, "USD", quote.Fee.Currency)

	credit, err := svc.CreateQuote(ctx, testCaller, domain.QuoteRequest{
		QuoteCode: "Q2",
		Party:     domain.Party{AccountID: "acc-1000"},
		Amount:    *money("5000"),
		Role:      domain.TransactionRolePayee,
	})
	require.NoError(t, err)
	assert.True(t, credit.Fee.Amount.IsZero())

	_, err = svc.CreateQuote(ctx, testCaller, domain.QuoteRequest{
		QuoteCode: "Q3",
		Party:     domain.Party{AccountID: "acc-1000"},
		Amount:    *money("990"),
		Role:      domain.TransactionRolePayer,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Zero(t, f.logLength(t))
}

func TestNewChargesServiceRejectsNegativePercent(t *testing.T) {
	_, err := services.NewChargesService(decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestTransactionRequestService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewTransactionRequestService(services.NewTransferValidator(f.ledger, f.identifiers, memory.NewCurrencyRepository()))

	created, err := svc.CreateTransactionRequest(ctx, testCaller, domain.TransactionRequest{
		TransactionCode: "tx-r1",
		RequestCode:     "R1",
		Party:           domain.Party{AccountID: "acc-1000"},
		Amount:          *money("10"),
		Role:            domain.TransactionRolePayer,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStateAccepted, created.State)

	_, err = svc.CreateTransactionRequest(ctx, testCaller, domain.TransactionRequest{
		RequestCode: "R2",
		Party:       domain.Party{AccountID: "acc-1000"},
		Amount:      *money("10"),
		Role:        domain.TransactionRolePayee,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	got, err := svc.GetTransactionRequest(ctx, "tx-r1", "R1")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStateRejected, got.State)
}

func TestHoldMonitorReportsStaleHoldsWithoutReleasing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	posting := domain.NewPosting(f.account, "actor", time.Now().UTC().Add(-3*time.Hour))
	_, err := posting.Hold(decimal.NewFromInt(10), domain.PaymentDetail{RoutingCode: testRouting, TransferCode: "OLD"})
	require.NoError(t, err)
	require.NoError(t, f.ledger.ApplyPosting(ctx, *posting))

	_, err = f.svc.PrepareTransfer(ctx, testCaller, debitRequest("NEW", "10", nil, nil))
	require.NoError(t, err)

	monitor, err := services.NewHoldMonitor(f.ledger, "@every 15m", time.Hour)
	require.NoError(t, err)

	count, err := monitor.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, strings.Contains(buf.String(), `"transferCode":"OLD"`))
	assert.Equal(t, 2, f.logLength(t))
	assertDecimal(t, "20", f.current(t).OnHoldAmount)
}

func TestNewHoldMonitorValidatesArguments(t *testing.T) {
	_, err := services.NewHoldMonitor(memory.NewLedgerRepository(), "not a schedule", time.Hour)
	assert.Error(t, err)

	_, err = services.NewHoldMonitor(memory.NewLedgerRepository(), "@hourly", 0)
	assert.Error(t, err)
}

type brokenHolds struct {
	*memory.LedgerRepository
}

func (brokenHolds) ListUnreleasedHolds(context.Context, time.Time) ([]domain.Transaction, error) {
	return nil, errors.New("timeout")
}

func TestHoldMonitorSurfacesStorageFailure(t *testing.T) {
	monitor, err := services.NewHoldMonitor(brokenHolds{memory.NewLedgerRepository()}, "@hourly", time.Hour)
	require.NoError(t, err)

	_, err = monitor.Check(context.Background())
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
}
