package router

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// RouteRegistrar mounts a controller's routes under /interop.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

// New builds the API router. /health and /swagger are public; everything
// under /interop passes through the given middlewares in order.
func New(controllers []RouteRegistrar, middlewares ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	registerSwaggerRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/interop").Subrouter()
	for _, mw := range middlewares {
		if mw != nil {
			api.Use(mw)
		}
	}
	for _, controller := range controllers {
		if controller != nil {
			controller.RegisterRoutes(api)
		}
	}

	return r
}
