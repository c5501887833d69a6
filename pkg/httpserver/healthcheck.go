package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthCheck is a named readiness probe for one dependency.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

// HealthcheckHandler runs every check with a shared deadline and reports
// per-dependency status. Any failure yields 503.
func HealthcheckHandler(timeout time.Duration, checks ...HealthCheck) http.HandlerFunc {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		status := http.StatusOK
		details := make(map[string]string, len(checks))
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				details[hc.Name] = err.Error()
			} else {
				details[hc.Name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": http.StatusText(status),
			"checks": details,
		})
	}
}
