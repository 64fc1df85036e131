package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/http/models"
	"github.com/api-sage/interop-settlement/src/internal/usecase/service_interfaces"
	"github.com/api-sage/interop-settlement/src/internal/usecase/services"
	"github.com/gorilla/mux"
)

type AccountController struct {
	accounts    service_interfaces.AccountService
	identifiers service_interfaces.IdentifierService
}

func NewAccountController(accounts service_interfaces.AccountService, identifiers service_interfaces.IdentifierService) *AccountController {
	return &AccountController{accounts: accounts, identifiers: identifiers}
}

func (c *AccountController) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/accounts/{accountId}", c.getAccount).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{accountId}/transactions", c.getTransactions).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{accountId}/identifiers", c.getIdentifiers).Methods(http.MethodGet)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	account, err := c.accounts.GetAccountDetails(r.Context(), mux.Vars(r)["accountId"])
	if err != nil {
		fail[models.AccountResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "account fetched successfully", models.NewAccountResponse(account))
}

// getTransactions accepts debit, credit (booleans) and from, to (RFC 3339).
func (c *AccountController) getTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	query, err := parseTransactionQuery(r)
	if err != nil {
		badRequest[[]models.TransactionResponse](w, r, start, "validation failed", err)
		return
	}

	txs, err := c.accounts.GetAccountTransactions(r.Context(), query)
	if err != nil {
		fail[[]models.TransactionResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "transactions fetched successfully", models.NewTransactionResponses(txs))
}

func (c *AccountController) getIdentifiers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	identifiers, err := c.identifiers.ListAccountIdentifiers(r.Context(), mux.Vars(r)["accountId"])
	if err != nil {
		fail[[]models.IdentifierResponse](w, r, start, err)
		return
	}

	resp := make([]models.IdentifierResponse, 0, len(identifiers))
	for _, identifier := range identifiers {
		resp = append(resp, models.NewIdentifierResponse(identifier))
	}
	respond(w, r, start, http.StatusOK, "identifiers fetched successfully", resp)
}

func parseTransactionQuery(r *http.Request) (services.TransactionQuery, error) {
	values := r.URL.Query()
	query := services.TransactionQuery{AccountID: mux.Vars(r)["accountId"]}

	for name, dst := range map[string]*bool{"debit": &query.Debit, "credit": &query.Credit} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return services.TransactionQuery{}, fmt.Errorf("%s must be true or false", name)
		}
		*dst = parsed
	}

	for name, dst := range map[string]**time.Time{"from": &query.From, "to": &query.To} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return services.TransactionQuery{}, fmt.Errorf("%s must be an RFC 3339 timestamp", name)
		}
		*dst = &parsed
	}

	return query, nil
}
