// Package metrics provides Prometheus instrumentation for the calc engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CalculationsTotal counts completed calculator runs by calculator.
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calcengine_calculations_total",
		Help: "Total number of calculator runs completed",
	}, []string{"calculator"})

	// CalculationDuration tracks calculator run time.
	CalculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calcengine_calculation_duration_seconds",
		Help:    "Calculator run duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"calculator"})

	// MonteCarloPaths counts simulated Monte Carlo paths.
	MonteCarloPaths = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calcengine_montecarlo_paths_total",
		Help: "Total Monte Carlo paths simulated",
	})

	// StoredCalculations tracks history size per calculator.
	StoredCalculations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "calcengine_stored_calculations",
		Help: "Number of calculations in the history store",
	}, []string{"calculator"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "calcengine_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calcengine_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calcengine_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveCalculation records one completed run for a calculator.
func ObserveCalculation(calculator string, start time.Time) {
	CalculationsTotal.WithLabelValues(calculator).Inc()
	CalculationDuration.WithLabelValues(calculator).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
