package watch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger checks the store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	LastCycle *CycleSummary     `json:"last_cycle,omitempty"`
}

type CycleSummary struct {
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
	Statuses      int       `json:"statuses"`
	AlertsCreated int       `json:"alerts_created"`
	Scores        int       `json:"scores"`
	Failures      int       `json:"failures"`
	Error         string    `json:"error,omitempty"`
}

// NewRouter exposes /metrics from g and /healthz from the runner and store.
func NewRouter(runner *Runner, store Pinger, g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", healthHandler(runner, store))
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}

func healthHandler(runner *Runner, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "ok", Checks: map[string]string{}}
		code := http.StatusOK
		if err := store.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks["database"] = "unhealthy: " + err.Error()
			code = http.StatusServiceUnavailable
		} else {
			resp.Checks["database"] = "healthy"
		}

		if rep, ok := runner.Last(); ok {
			sum := &CycleSummary{
				StartedAt:     rep.StartedAt,
				DurationMS:    rep.Duration.Milliseconds(),
				Statuses:      rep.Statuses,
				AlertsCreated: rep.AlertsCreated,
				Scores:        rep.Scores,
				Failures:      len(rep.Failures),
			}
			if rep.Err != nil {
				sum.Error = rep.Err.Error()
			}
			resp.LastCycle = sum
		}
		writeJSON(w, code, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Serve runs h on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
