package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raywall/dispatch-console/pkg/dispatch"
	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/raywall/dispatch-console/pkg/notify"
	"github.com/raywall/dispatch-console/pkg/override"
	"github.com/raywall/dispatch-console/pkg/rules"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 30 * time.Second

// API expõe as sessões de sobrescrita e a central de notificações via REST.
type API struct {
	sessions *override.Sessions
	center   *notify.Center
	timeout  time.Duration
}

// NewAPI cria os handlers. timeout limita cada chamada ao backend.
func NewAPI(sessions *override.Sessions, center *notify.Center, timeout time.Duration) *API {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &API{sessions: sessions, center: center, timeout: timeout}
}

type openResponse struct {
	SessionID string         `json:"sessionId"`
	State     override.State `json:"state"`
}

type rulesRequest struct {
	Rules string `json:"rules"`
}

type examplesResponse struct {
	Payload  string            `json:"payload"`
	Examples map[string]string `json:"examples"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor traduz erros do controller para códigos HTTP.
func statusFor(err error) int {
	var guardErr *rules.GuardError
	switch {
	case errors.As(err, &guardErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gateway.ErrServiceNotFound),
		errors.Is(err, override.ErrOperationNotFound),
		errors.Is(err, override.ErrUnknownExample):
		return http.StatusNotFound
	case errors.Is(err, override.ErrNotInitialized):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (a *API) session(w http.ResponseWriter, r *http.Request) (*override.Session, bool) {
	s, ok := a.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
	}
	return s, ok
}

func (a *API) openOverride(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, name := vars["serviceId"], vars["name"]

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	s := a.sessions.Open(serviceID)
	err := s.Controller.Initialize(ctx, serviceID, name)
	if err == nil {
		writeJSON(w, http.StatusCreated, openResponse{SessionID: s.ID, State: s.Controller.State()})
		return
	}

	a.sessions.Close(s.ID)
	log.Ctx(r.Context()).Warn().Err(err).Str("service_id", serviceID).Str("operation", name).Msg("override não inicializado")

	if errors.Is(err, override.ErrOperationNotFound) {
		writeJSON(w, http.StatusNotFound, openResponse{SessionID: s.ID, State: s.Controller.State()})
		return
	}
	writeError(w, statusFor(err), err)
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	if s, ok := a.session(w, r); ok {
		writeJSON(w, http.StatusOK, s.Controller.State())
	}
}

func (a *API) patchDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var patch model.PropertiesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if err := s.Controller.EditDraft(patch); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Controller.State())
}

func (a *API) reset(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := s.Controller.Reset(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Controller.State())
}

func (a *API) applyRules(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var req rulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if err := s.Controller.ApplyExampleRule(req.Rules); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Controller.State())
}

func (a *API) applyExample(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := s.Controller.ApplyExample(mux.Vars(r)["example"]); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Controller.State())
}

func (a *API) save(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	if err := s.Controller.Save(ctx); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Controller.State())
}

func (a *API) closeSession(w http.ResponseWriter, r *http.Request) {
	if !a.sessions.Close(mux.Vars(r)["id"]) {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, examplesResponse{Payload: dispatch.ExamplePayload, Examples: dispatch.Examples()})
}

func (a *API) listDispatchers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dispatch.Dispatchers())
}

func (a *API) listNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.center.Notifications())
}

func (a *API) dismissNotification(w http.ResponseWriter, r *http.Request) {
	if !a.center.RemoveByID(mux.Vars(r)["id"]) {
		writeError(w, http.StatusNotFound, errors.New("notification not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
