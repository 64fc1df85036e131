package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/http/models"
	"github.com/api-sage/interop-settlement/src/internal/usecase/service_interfaces"
	"github.com/gorilla/mux"
)

type QuoteController struct {
	service service_interfaces.QuoteService
}

func NewQuoteController(service service_interfaces.QuoteService) *QuoteController {
	return &QuoteController{service: service}
}

func (c *QuoteController) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/quotes", c.createQuote).Methods(http.MethodPost)
}

func (c *QuoteController) createQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.QuoteRequest
	if !decode[models.QuoteResponse](w, r, start, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		badRequest[models.QuoteResponse](w, r, start, "validation failed", err)
		return
	}

	result, err := c.service.CreateQuote(r.Context(), callerFrom(r), req.ToDomain())
	if err != nil {
		fail[models.QuoteResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "quote created", models.NewQuoteResponse(result))
}
