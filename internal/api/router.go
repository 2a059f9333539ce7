package api

import (
	"net/http"

	"package-organizer/internal/api/handlers"
	"package-organizer/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with the organizer and returns an http.Handler.
// gatherer may be nil, in which case /metrics is not served.
func NewRouter(org *services.Organizer, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	intents := &handlers.IntentHandler{Organizer: org}
	backup := &handlers.BackupHandler{Organizer: org}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/state", intents.State)
	mux.HandleFunc("/intents/selection", intents.Selection)
	mux.HandleFunc("/intents/assign", intents.Assign)
	mux.HandleFunc("/intents/remove", intents.Remove)
	mux.HandleFunc("/intents/deliver", intents.Deliver)
	mux.HandleFunc("/intents/undo", intents.Undo)
	mux.HandleFunc("/intents/reset", intents.Reset)
	mux.HandleFunc("/intents/settings", intents.Settings)
	mux.HandleFunc("/intents/phase", intents.Phase)
	mux.HandleFunc("/export", backup.Export)
	mux.HandleFunc("/import", backup.Import)

	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}
