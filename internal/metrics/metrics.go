package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/fleetadmin/fleet-api/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fleetapi",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetapi",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Auth metrics

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetapi",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	SignupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetapi",
		Name:      "signups_total",
		Help:      "Total signup attempts, by outcome.",
	}, []string{"outcome"})

	// Outbox metrics

	OutboxDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetapi",
		Name:      "outbox_deliveries_total",
		Help:      "Total outbox email deliveries, by outcome.",
	}, []string{"outcome"})

	OutboxDeliveryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fleetapi",
		Name:      "outbox_delivery_duration_seconds",
		Help:      "Duration of one outbound email send.",
		Buckets:   prometheus.DefBuckets,
	})

	OutboxPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetapi",
		Name:      "outbox_purged_total",
		Help:      "Total sent outbox rows removed by the janitor.",
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		LoginsTotal,
		SignupsTotal,
		OutboxDeliveriesTotal,
		OutboxDeliveryDuration,
		OutboxPurgedTotal,
	)
}

// NewServer exposes /metrics plus the liveness and readiness probes on
// a separate port from the API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
