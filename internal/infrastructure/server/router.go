package server

import (
	"log/slog"
	"net/http"

	"github.com/opschat/icinga-chatops/internal/adapter/handler"
	"github.com/opschat/icinga-chatops/internal/adapter/handler/middleware"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	Health  *handler.HealthHandler
	Metrics *handler.MetricsHandler
}

// NewRouter creates the HTTP router with all handlers.
func NewRouter(handlers *Handlers, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", handlers.Health)
	mux.Handle("/ready", handlers.Health)
	mux.Handle("/", handlers.Health)

	if handlers.Metrics != nil {
		mux.Handle("/metrics", handlers.Metrics)
	}

	var h http.Handler = mux
	h = middleware.RequestID(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
