package emulator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/rs/zerolog"
)

// Options controla latência e falhas simuladas.
type Options struct {
	Latency     time.Duration
	FailUpdates bool
	FailMessage string
}

// Backend serve a API REST de serviços mockados sobre um MemoryGateway.
type Backend struct {
	store  *gateway.MemoryGateway
	opts   Options
	logger zerolog.Logger
}

func NewBackend(store *gateway.MemoryGateway, opts Options, logger zerolog.Logger) *Backend {
	if opts.FailMessage == "" {
		opts.FailMessage = "simulated backend failure"
	}
	return &Backend{store: store, opts: opts, logger: logger}
}

// Router registra GET /api/services, GET /api/services/{id} e
// PUT /api/services/{id}/operation?operationName=.
func (b *Backend) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(b.latency)
	r.HandleFunc("/api/services", b.listServices).Methods(http.MethodGet)
	r.HandleFunc("/api/services/{id}", b.getService).Methods(http.MethodGet)
	r.HandleFunc("/api/services/{id}/operation", b.updateOperation).
		Queries("operationName", "{operationName}").
		Methods(http.MethodPut)
	return r
}

func (b *Backend) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.opts.Latency > 0 {
			select {
			case <-time.After(b.opts.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) listServices(w http.ResponseWriter, _ *http.Request) {
	sendResponse(w, http.StatusOK, b.store.List())
}

func (b *Backend) getService(w http.ResponseWriter, r *http.Request) {
	view, err := b.store.GetServiceView(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendResponse(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	// ?messages=false omite o mapa de mensagens.
	if r.URL.Query().Get("messages") == "false" {
		view.MessagesMap = nil
	}
	sendResponse(w, http.StatusOK, view)
}

func (b *Backend) updateOperation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if b.opts.FailUpdates {
		sendResponse(w, http.StatusInternalServerError, map[string]string{"message": b.opts.FailMessage})
		return
	}

	var props model.OperationProperties
	if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
		sendResponse(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON body"})
		return
	}

	if err := b.update(r.Context(), vars["id"], vars["operationName"], props); err != nil {
		sendResponse(w, statusFor(err), map[string]string{"message": err.Error()})
		return
	}

	b.logger.Info().
		Str("service", vars["id"]).
		Str("operation", vars["operationName"]).
		Str("dispatcher", props.Dispatcher).
		Msg("Propriedades de dispatch atualizadas")
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) update(ctx context.Context, serviceID, operationName string, props model.OperationProperties) error {
	view, err := b.store.GetServiceView(ctx, serviceID)
	if err != nil {
		return err
	}
	return b.store.UpdateOperationProperties(ctx, view.Service, operationName, props)
}

func statusFor(err error) int {
	if errors.Is(err, gateway.ErrServiceNotFound) || errors.Is(err, gateway.ErrOperationNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func sendResponse(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
