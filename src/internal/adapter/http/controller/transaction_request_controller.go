package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/http/models"
	"github.com/api-sage/interop-settlement/src/internal/usecase/service_interfaces"
	"github.com/gorilla/mux"
)

type TransactionRequestController struct {
	service service_interfaces.TransactionRequestService
}

func NewTransactionRequestController(service service_interfaces.TransactionRequestService) *TransactionRequestController {
	return &TransactionRequestController{service: service}
}

func (c *TransactionRequestController) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/requests", c.createRequest).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{transactionCode}/requests/{requestCode}", c.getRequest).Methods(http.MethodGet)
}

func (c *TransactionRequestController) createRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TransactionRequestRequest
	if !decode[models.TransactionRequestResponse](w, r, start, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		badRequest[models.TransactionRequestResponse](w, r, start, "validation failed", err)
		return
	}

	result, err := c.service.CreateTransactionRequest(r.Context(), callerFrom(r), req.ToDomain())
	if err != nil {
		fail[models.TransactionRequestResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "transaction request accepted", models.NewTransactionRequestResponse(result))
}

func (c *TransactionRequestController) getRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	vars := mux.Vars(r)
	result, err := c.service.GetTransactionRequest(r.Context(), vars["transactionCode"], vars["requestCode"])
	if err != nil {
		fail[models.TransactionRequestResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "transaction request fetched", models.NewTransactionRequestResponse(result))
}
