package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodinspect/internal/bootstrap/logging"
	"foodinspect/internal/errs"
)

var (
	PagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodinspect_pages_fetched_total",
		Help: "Total dataset pages fetched from the upstream API",
	})

	RowsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodinspect_rows_fetched_total",
		Help: "Total raw rows fetched from the upstream API",
	})

	RowsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodinspect_rows_rejected_total",
		Help: "Raw rows rejected during transform (missing or unparseable fields)",
	})

	GeocodeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodinspect_geocode_requests_total",
		Help: "Reverse geocoding lookups by outcome",
	}, []string{"outcome"}) // hit, resolved, failed

	RowsLoadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodinspect_rows_loaded_total",
		Help: "Rows offered to the loader by table and outcome",
	}, []string{"table", "outcome"}) // outcome=persisted, skipped

	FetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodinspect_fetch_duration_seconds",
		Help:    "Duration of one full extraction pass",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

// Serve exposes /metrics on addr for the lifetime of ctx. It returns once the
// listener is shut down; callers run it in a goroutine alongside the pipeline.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info(ctx, "metrics listener started", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errs.Wrap(err, "serve metrics")
	}
	return nil
}
