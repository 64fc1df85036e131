package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/http/middleware"
	"github.com/api-sage/interop-settlement/src/internal/commons"
	"github.com/api-sage/interop-settlement/src/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respond writes a success envelope and logs it.
func respond[T any](w http.ResponseWriter, r *http.Request, start time.Time, status int, message string, data T) {
	response := commons.SuccessResponse(message, data)
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

// fail writes a failure envelope. Business errors are reported as they are;
// anything else is logged and hidden behind a generic message.
func fail[T any](w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	status := statusFor(err)
	var response commons.Response[T]
	if status == http.StatusInternalServerError {
		logError(r, err, nil)
		response = commons.ErrorResponse[T]("request failed", "Unable to process request right now").WithCode(errorCodeInternal)
	} else {
		response = commons.ErrorResponse[T]("request rejected", err.Error()).WithCode(errorCode(err))
	}
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func badRequest[T any](w http.ResponseWriter, r *http.Request, start time.Time, message string, err error) {
	response := commons.ErrorResponse[T](message, err.Error()).WithCode(errorCode(domain.ErrInvalidRequest))
	writeJSON(w, http.StatusBadRequest, response)
	logResponse(r, http.StatusBadRequest, response, start)
}

func decode[T any](w http.ResponseWriter, r *http.Request, start time.Time, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logError(r, err, nil)
		badRequest[T](w, r, start, "invalid request body", err)
		return false
	}
	logRequest(r, dst)
	return true
}

func statusFor(err error) int {
	switch {
	case !domain.IsBusinessError(err):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransferNotFound),
		errors.Is(err, domain.ErrIdentifierNotFound),
		errors.Is(err, domain.ErrCurrencyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateTransfer), errors.Is(err, domain.ErrIdentifierExists):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

const errorCodeInternal = "INTERNAL_ERROR"

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrInvalidRequest, "INVALID_REQUEST"},
	{domain.ErrCurrencyMismatch, "CURRENCY_MISMATCH"},
	{domain.ErrAccountNotFound, "ACCOUNT_NOT_FOUND"},
	{domain.ErrTransferNotFound, "TRANSFER_NOT_FOUND"},
	{domain.ErrIdentifierNotFound, "IDENTIFIER_NOT_FOUND"},
	{domain.ErrCurrencyNotFound, "CURRENCY_NOT_FOUND"},
	{domain.ErrDuplicateTransfer, "DUPLICATE_TRANSFER"},
	{domain.ErrIdentifierExists, "IDENTIFIER_EXISTS"},
	{domain.ErrTransactionNotAllowed, "TRANSACTION_NOT_ALLOWED"},
	{domain.ErrInsufficientFunds, "INSUFFICIENT_FUNDS"},
	{domain.ErrMissingHold, "MISSING_HOLD"},
	{domain.ErrAmountMismatch, "AMOUNT_MISMATCH"},
}

func errorCode(err error) string {
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return errorCodeInternal
}

func callerFrom(r *http.Request) domain.Caller {
	return domain.Caller{
		ActorID: middleware.ActorFromContext(r.Context()),
		Tenant:  middleware.Tenant(r),
	}
}
