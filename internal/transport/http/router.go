package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

type RouterConfig struct {
	Events      *EventHandlers
	Ping        PingFunc
	Metrics     *Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Log         *slog.Logger
}

// NewRouter assembles the API: event routes, /health, /metrics when a gatherer
// is set, and a JSON 404 for anything else. Requests pass through metrics,
// logging and CORS in that order.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", HandleHealth(cfg.Ping))
	if cfg.Gatherer != nil {
		mux.Handle("/metrics", MetricsHandler(cfg.Gatherer))
	}
	if cfg.Events != nil {
		cfg.Events.Register(mux)
	}
	mux.Handle("/", NotFoundHandler())

	var handler http.Handler = CORS(cfg.CORSOrigins, mux)
	handler = RequestLogger(handler, cfg.Log)
	if cfg.Metrics != nil {
		handler = cfg.Metrics.Middleware(handler)
	}
	return handler
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
}
