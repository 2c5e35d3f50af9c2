// Package metrics exposes Prometheus-format metrics for the envelope ingest
// service on a dedicated listen address, separate from the API server.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
)

// MetricsServer serves the /metrics endpoint.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service name and listen address.
func New(name, listenAddr string) (*MetricsServer, error) {
	if listenAddr == "" {
		return nil, fmt.Errorf("metrics listen address is empty")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		vm.WritePrometheus(w, true)
	})

	return &MetricsServer{
		srv: &http.Server{
			Addr:         listenAddr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving metrics until Shutdown is called.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Counters and histograms for the ingest path. Rejections are labeled by
// error kind so operators can tell client-side encoding mistakes apart from
// key or configuration problems.
var (
	envelopesAccepted = vm.NewCounter(`envelope_ingest_accepted_total`)
	processDuration   = vm.NewHistogram(`envelope_ingest_process_duration_seconds`)
)

// RecordAccepted counts a successfully ingested envelope.
func RecordAccepted() {
	envelopesAccepted.Inc()
}

// RecordRejected counts a rejected envelope by error kind.
func RecordRejected(kind string) {
	vm.GetOrCreateCounter(fmt.Sprintf(`envelope_ingest_rejected_total{kind=%q}`, kind)).Inc()
}

// ObserveProcessDuration records end-to-end pipeline latency.
func ObserveProcessDuration(d time.Duration) {
	processDuration.Update(d.Seconds())
}
