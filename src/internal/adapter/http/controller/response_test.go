package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForMapsErrorClasses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: amount", domain.ErrInvalidRequest), http.StatusBadRequest, "INVALID_REQUEST"},
		{domain.ErrCurrencyMismatch, http.StatusBadRequest, "CURRENCY_MISMATCH"},
		{fmt.Errorf("%w: acc-9", domain.ErrAccountNotFound), http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{domain.ErrTransferNotFound, http.StatusNotFound, "TRANSFER_NOT_FOUND"},
		{domain.ErrDuplicateTransfer, http.StatusConflict, "DUPLICATE_TRANSFER"},
		{domain.ErrIdentifierExists, http.StatusConflict, "IDENTIFIER_EXISTS"},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{domain.ErrMissingHold, http.StatusUnprocessableEntity, "MISSING_HOLD"},
		{domain.ErrAmountMismatch, http.StatusUnprocessableEntity, "AMOUNT_MISMATCH"},
		{domain.ErrTransactionNotAllowed, http.StatusUnprocessableEntity, "TRANSACTION_NOT_ALLOWED"},
		{fmt.Errorf("%w: db down", domain.ErrInfrastructure), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("unclassified"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, statusFor(tc.err), tc.err.Error())
		if tc.status != http.StatusInternalServerError {
			assert.Equal(t, tc.code, errorCode(tc.err), tc.err.Error())
		}
	}
}

func TestFailHidesInfrastructureDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/interop/accounts/acc-1", nil)

	fail[struct{}](rr, req, time.Now(), fmt.Errorf("%w: dial tcp 10.0.0.5:5432", domain.ErrInfrastructure))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
	assert.Contains(t, rr.Body.String(), `"errorCode":"INTERNAL_ERROR"`)
}

func transactionQueryRequest(t *testing.T, rawQuery string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/interop/accounts/acc-1/transactions?"+rawQuery, nil)
	return mux.SetURLVars(req, map[string]string{"accountId": "acc-1"})
}

func TestParseTransactionQuery(t *testing.T) {
	query, err := parseTransactionQuery(transactionQueryRequest(t, "debit=true&from=2026-01-02T00:00:00Z&to=2026-01-03T00:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, "acc-1", query.AccountID)
	assert.True(t, query.Debit)
	assert.False(t, query.Credit)
	require.NotNil(t, query.From)
	require.NotNil(t, query.To)
	assert.Equal(t, 2, query.From.Day())
	assert.Equal(t, 3, query.To.Day())

	for _, raw := range []string{"debit=maybe", "credit=2", "from=yesterday", "to=2026-01-03"} {
		_, err := parseTransactionQuery(transactionQueryRequest(t, raw))
		assert.Error(t, err, raw)
	}
}
