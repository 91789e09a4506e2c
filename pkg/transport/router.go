package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/raywall/dispatch-console/pkg/graphql"
	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/rs/zerolog"
)

// RouterOptions liga superfícies opcionais ao roteador.
type RouterOptions struct {
	GraphQL      *graphql.Engine
	GraphQLRoute string
	Metrics      http.Handler
	MetricsRoute string
}

// NewRouter registra as rotas do console e envolve tudo no middleware de observabilidade,
// inclusive as respostas 404/405 do próprio mux.
func NewRouter(api *API, logger zerolog.Logger, m metrics.Provider, opts RouterOptions) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/services/{serviceId}/operations/{name}/override", api.openOverride).Methods(http.MethodPost)

	s := r.PathPrefix("/api/sessions/{id}").Subrouter()
	s.HandleFunc("", api.getSession).Methods(http.MethodGet)
	s.HandleFunc("", api.closeSession).Methods(http.MethodDelete)
	s.HandleFunc("/draft", api.patchDraft).Methods(http.MethodPatch)
	s.HandleFunc("/reset", api.reset).Methods(http.MethodPost)
	s.HandleFunc("/rules", api.applyRules).Methods(http.MethodPost)
	s.HandleFunc("/examples/{example}", api.applyExample).Methods(http.MethodPost)
	s.HandleFunc("/save", api.save).Methods(http.MethodPost)

	r.HandleFunc("/api/examples", api.listExamples).Methods(http.MethodGet)
	r.HandleFunc("/api/dispatchers", api.listDispatchers).Methods(http.MethodGet)
	r.HandleFunc("/api/notifications/stream", api.streamNotifications).Methods(http.MethodGet)
	r.HandleFunc("/api/notifications", api.listNotifications).Methods(http.MethodGet)
	r.HandleFunc("/api/notifications/{id}", api.dismissNotification).Methods(http.MethodDelete)

	if opts.GraphQL != nil {
		route := opts.GraphQLRoute
		if route == "" {
			route = "/graphql"
		}
		logger.Info().Msgf("Registrando GraphQL em %s", route)
		r.HandleFunc(route, graphQLHandler(opts.GraphQL)).Methods(http.MethodPost)
	}

	if opts.Metrics != nil {
		route := opts.MetricsRoute
		if route == "" {
			route = "/metrics"
		}
		logger.Info().Msgf("Expondo métricas em %s", route)
		r.Handle(route, opts.Metrics).Methods(http.MethodGet)
	}

	return ObservabilityMiddleware(logger, m)(r)
}

func graphQLHandler(engine *graphql.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		writeJSON(w, http.StatusOK, engine.Execute(r.Context(), p.Query, p.Variables))
	}
}
