package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registration outcomes
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// Draw outcomes
const (
	OutcomeSelected       = "selected"
	OutcomeNoParticipants = "no_participants"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Registrations    *prometheus.CounterVec
	CouponCollisions prometheus.Counter
	CouponLookups    *prometheus.CounterVec
	Draws            *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates and registers all metrics on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers all metrics on reg and serves them from gatherer
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "giveaway_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		CouponCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "giveaway_coupon_collisions_total",
			Help: "Generated coupon codes rejected by the unique index",
		}),
		CouponLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "giveaway_coupon_lookups_total",
			Help: "Coupon lookups by result",
		}, []string{"found"}),
		Draws: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "giveaway_draws_total",
			Help: "Lucky draws by outcome",
		}, []string{"outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "giveaway_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giveaway_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: gatherer,
	}
}

// IncRegistration increments the registration counter for outcome
func (m *Metrics) IncRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// IncCouponCollision increments the coupon collision counter by 1
func (m *Metrics) IncCouponCollision() {
	m.CouponCollisions.Inc()
}

// IncCouponLookup records a coupon lookup result
func (m *Metrics) IncCouponLookup(found bool) {
	label := "false"
	if found {
		label = "true"
	}
	m.CouponLookups.WithLabelValues(label).Inc()
}

// IncDraw increments the draw counter for outcome
func (m *Metrics) IncDraw(outcome string) {
	m.Draws.WithLabelValues(outcome).Inc()
}

// Handler serves the exposition format for the registered metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
