package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PaymentMetrics tracks the payment pipeline. Reconciliation outcomes use the
// outcome label: completed, failed, duplicate.
type PaymentMetrics struct {
	Initiated      *prometheus.CounterVec
	Reconciled     *prometheus.CounterVec
	GatewayLatency *prometheus.HistogramVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	initiated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "comanda",
		Subsystem: "payments",
		Name:      "initiated_total",
		Help:      "Total number of payment initiations.",
	}, []string{"provider"})
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "comanda",
		Subsystem: "payments",
		Name:      "reconciled_total",
		Help:      "Total number of reconciliation results applied.",
	}, []string{"provider", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "comanda",
		Subsystem: "payments",
		Name:      "gateway_request_duration_ms",
		Help:      "Payment gateway request latency in milliseconds.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000},
	}, []string{"provider"})

	reg.MustRegister(initiated, reconciled, latency)
	return &PaymentMetrics{Initiated: initiated, Reconciled: reconciled, GatewayLatency: latency}
}

func (m *PaymentMetrics) ObserveGateway(provider string, start time.Time) {
	m.GatewayLatency.WithLabelValues(provider).Observe(float64(time.Since(start).Milliseconds()))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
