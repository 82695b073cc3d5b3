package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const probeTimeout = 5 * time.Second

// HealthCheckHandler runs each probe with a bounded timeout and reports
// 200 only when all of them pass. Failures are logged, not exposed.
func HealthCheckHandler(log *slog.Logger, probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		for _, probe := range probes {
			if err := probe(ctx); err != nil {
				if log != nil {
					log.ErrorContext(ctx, "healthcheck probe failed", "error", err)
				}
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
