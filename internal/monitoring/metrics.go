package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Trading metrics
	positionsOpenedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_engine_positions_opened_total",
			Help: "Total number of positions opened",
		},
		[]string{"symbol", "kind", "direction"},
	)

	positionsClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_engine_positions_closed_total",
			Help: "Total number of positions closed",
		},
		[]string{"symbol"},
	)

	realizedPnl = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "decision_engine_realized_pnl",
			Help:    "Distribution of realized PnL per closed position",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	// Risk metrics
	totalRisk = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "decision_engine_total_risk",
			Help: "Aggregate open risk as a fraction of portfolio value",
		},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "decision_engine_open_positions",
			Help: "Number of currently open positions",
		},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_engine_rejections_total",
			Help: "Trade candidates rejected by risk validation",
		},
		[]string{"reason"},
	)

	// Signal metrics
	opportunitiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_engine_opportunities_total",
			Help: "Trade opportunities surfaced by aggregation",
		},
		[]string{"kind", "strength"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "decision_engine_current_price",
			Help: "Current price of a tracked symbol",
		},
		[]string{"symbol"},
	)

	// Loop metrics
	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "decision_engine_cycle_duration_seconds",
			Help:    "Trading cycle wall clock duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_engine_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(positionsOpenedTotal)
	prometheus.MustRegister(positionsClosedTotal)
	prometheus.MustRegister(realizedPnl)
	prometheus.MustRegister(totalRisk)
	prometheus.MustRegister(openPositions)
	prometheus.MustRegister(rejectionsTotal)
	prometheus.MustRegister(opportunitiesTotal)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(cycleDuration)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordOpen records a newly opened position
func RecordOpen(symbol, kind, direction string) {
	positionsOpenedTotal.WithLabelValues(symbol, kind, direction).Inc()
}

// RecordClose records a closed position and its realized PnL
func RecordClose(symbol string, pnl float64) {
	positionsClosedTotal.WithLabelValues(symbol).Inc()
	realizedPnl.WithLabelValues(symbol).Observe(pnl)
}

// UpdateRisk updates the aggregate risk and open position gauges
func UpdateRisk(risk float64, positions int) {
	totalRisk.Set(risk)
	openPositions.Set(float64(positions))
}

// RecordRejection records a risk validation rejection
func RecordRejection(reason string) {
	rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordOpportunity records a surfaced trade opportunity
func RecordOpportunity(kind, strength string) {
	opportunitiesTotal.WithLabelValues(kind, strength).Inc()
}

// UpdatePrice updates the current price gauge
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// RecordCycleDuration records one trading cycle's duration
func RecordCycleDuration(seconds float64) {
	cycleDuration.Observe(seconds)
}

// RecordError records an error metric by category
func RecordError(category string) {
	errorsTotal.WithLabelValues(category).Inc()
}
