package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds the dependencies needed by the HTTP router.
type RouterServices struct {
	Logger      *slog.Logger
	ReadyChecks []ReadyCheck
}

// NewRouter creates the router for everything the migrations endpoint
// middleware passes through: health and readiness.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.Handle("/readyz", readyHandler(logger, services.ReadyChecks))
	return mux
}
