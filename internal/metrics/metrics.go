// Package metrics holds the prometheus collectors exported at /metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitledger/internal/calculator"
)

const namespace = "splitledger"

// Scopes for BalanceRecomputes.
const (
	ScopeUser  = "user"
	ScopeGroup = "group"
	ScopePush  = "push"
)

// Metrics groups every collector on its own registry so tests can create
// as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	RPCRequests       *prometheus.CounterVec
	RPCDuration       *prometheus.HistogramVec
	BalanceRecomputes *prometheus.CounterVec
	ValidationErrors  *prometheus.CounterVec
	IntegrityErrors   prometheus.Counter
	Sessions          prometheus.Gauge
}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Unary RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Unary RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		BalanceRecomputes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_recomputes_total",
			Help:      "Full snapshot balance calculations.",
		}, []string{"scope"}),
		ValidationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_validation_errors_total",
			Help:      "Rejected split inputs, by method and reason.",
		}, []string{"method", "reason"}),
		IntegrityErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_integrity_errors_total",
			Help:      "Malformed records found while aggregating.",
		}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_sessions",
			Help:      "Connected websocket sessions.",
		}),
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveRPC counts one call. A nil err is reported as code "ok".
func (m *Metrics) ObserveRPC(procedure string, err error, elapsed time.Duration) {
	code := "ok"
	if err != nil {
		code = connect.CodeOf(err).String()
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// ObserveRecompute counts one balance calculation in scope.
func (m *Metrics) ObserveRecompute(scope string) {
	m.BalanceRecomputes.WithLabelValues(scope).Inc()
}

// ObserveError counts engine errors found in err. Other errors are ignored.
func (m *Metrics) ObserveError(err error) {
	var ve *calculator.ValidationError
	if errors.As(err, &ve) {
		m.ValidationErrors.WithLabelValues(string(ve.Method), string(ve.Reason)).Inc()
	}
	if n := len(calculator.IntegrityErrors(err)); n > 0 {
		m.IntegrityErrors.Add(float64(n))
	}
}
