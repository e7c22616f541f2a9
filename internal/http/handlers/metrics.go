package handlers

import (
	"net/http"
)

// MetricsExport serves the Prometheus exposition of the app's registry.
func (a *App) MetricsExport(w http.ResponseWriter, r *http.Request) {
	if a.Metrics == nil {
		a.error(w, http.StatusNotFound, "not_found", "metrics disabled")
		return
	}
	a.Metrics.Handler().ServeHTTP(w, r)
}
