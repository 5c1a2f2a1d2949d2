package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
)

func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())
		logger.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
	}
}
