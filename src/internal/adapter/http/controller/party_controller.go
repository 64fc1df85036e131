package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/http/models"
	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/usecase/service_interfaces"
	"github.com/api-sage/interop-settlement/src/internal/usecase/services"
	"github.com/gorilla/mux"
)

type PartyController struct {
	service service_interfaces.IdentifierService
}

func NewPartyController(service service_interfaces.IdentifierService) *PartyController {
	return &PartyController{service: service}
}

func (c *PartyController) RegisterRoutes(r *mux.Router) {
	for _, path := range []string{"/parties/{idType}/{idValue}", "/parties/{idType}/{idValue}/{subIdOrType}"} {
		r.HandleFunc(path, c.lookup).Methods(http.MethodGet)
		r.HandleFunc(path, c.register).Methods(http.MethodPost)
		r.HandleFunc(path, c.remove).Methods(http.MethodDelete)
	}
}

func identifierKey(r *http.Request) services.IdentifierKey {
	vars := mux.Vars(r)
	return services.IdentifierKey{
		IDType:      domain.IdentifierType(vars["idType"]),
		IDValue:     vars["idValue"],
		SubIDOrType: vars["subIdOrType"],
	}
}

func (c *PartyController) lookup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	identifier, err := c.service.LookupIdentifier(r.Context(), identifierKey(r))
	if err != nil {
		fail[models.IdentifierResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "party fetched successfully", models.NewIdentifierResponse(identifier))
}

func (c *PartyController) register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RegisterPartyRequest
	if !decode[models.IdentifierResponse](w, r, start, &req) {
		return
	}

	identifier, err := c.service.RegisterIdentifier(r.Context(), callerFrom(r), identifierKey(r), req.AccountID)
	if err != nil {
		fail[models.IdentifierResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusCreated, "party registered", models.NewIdentifierResponse(identifier))
}

func (c *PartyController) remove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	identifier, err := c.service.DeleteIdentifier(r.Context(), callerFrom(r), identifierKey(r))
	if err != nil {
		fail[models.IdentifierResponse](w, r, start, err)
		return
	}
	respond(w, r, start, http.StatusOK, "party removed", models.NewIdentifierResponse(identifier))
}
