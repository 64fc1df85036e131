package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/http/models"
	"github.com/api-sage/interop-settlement/src/internal/usecase/service_interfaces"
	"github.com/gorilla/mux"
)

type TransferController struct {
	service service_interfaces.TransferService
}

func NewTransferController(service service_interfaces.TransferService) *TransferController {
	return &TransferController{service: service}
}

func (c *TransferController) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/transfers", c.transfer).Methods(http.MethodPost)
	r.HandleFunc("/transfers/{transferCode}/release", c.release).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{transactionCode}/transfers/{transferCode}", c.getTransfer).Methods(http.MethodGet)
}

// transfer dispatches on ?action=prepare|create.
func (c *TransferController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	action := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("action")))
	if action != "prepare" && action != "create" {
		badRequest[models.TransferResponse](w, r, start, "validation failed", errors.New("action must be prepare or create"))
		return
	}

	var req models.TransferRequest
	if !decode[models.TransferResponse](w, r, start, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		badRequest[models.TransferResponse](w, r, start, "validation failed", err)
		return
	}

	call := c.service.CommitTransfer
	message := "transfer committed"
	if action == "prepare" {
		call = c.service.PrepareTransfer
		message = "transfer prepared"
	}

	result, err := call(r.Context(), callerFrom(r), req.ToDomain())
	if err != nil {
		fail[models.TransferResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, message, models.NewTransferResponse(result))
}

func (c *TransferController) release(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ReleaseTransferRequest
	if !decode[models.TransferResponse](w, r, start, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		badRequest[models.TransferResponse](w, r, start, "validation failed", err)
		return
	}

	result, err := c.service.ReleaseTransfer(r.Context(), callerFrom(r), req.ToDomain(mux.Vars(r)["transferCode"]))
	if err != nil {
		fail[models.TransferResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "transfer released", models.NewTransferResponse(result))
}

func (c *TransferController) getTransfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	vars := mux.Vars(r)
	result, err := c.service.GetTransfer(r.Context(), vars["transactionCode"], vars["transferCode"])
	if err != nil {
		fail[models.TransferResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "transfer fetched successfully", models.NewTransferResponse(result))
}
