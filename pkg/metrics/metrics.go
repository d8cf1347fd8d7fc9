// Package metrics exposes ledger activity to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/proplanet/ecoledger/core"
)

const namespace = "ecoledger"

// Recorder implements core.Recorder on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	signups       prometheus.Counter
	tasks         *prometheus.CounterVec
	coinsAwarded  *prometheus.CounterVec
	redemptions   *prometheus.CounterVec
	coinsRedeemed *prometheus.CounterVec
	rejections    *prometheus.CounterVec
}

var _ core.Recorder = (*Recorder)(nil)

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "signups_total",
			Help: "Accounts registered.",
		}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_completed_total",
			Help: "Tasks completed, by category.",
		}, []string{"category"}),
		coinsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "coins_awarded_total",
			Help: "Eco-coins earned from tasks, by category.",
		}, []string{"category"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "redemptions_total",
			Help: "Redemptions created, by payout method.",
		}, []string{"method"}),
		coinsRedeemed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "coins_redeemed_total",
			Help: "Eco-coins converted to payouts, by payout method.",
		}, []string{"method"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "redemptions_rejected_total",
			Help: "Redemption requests refused, by reason.",
		}, []string{"reason"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.signups, r.tasks, r.coinsAwarded, r.redemptions, r.coinsRedeemed, r.rejections,
	)
	return r
}

func (r *Recorder) SignUp() {
	r.signups.Inc()
}

func (r *Recorder) TaskCompleted(category core.Category, coins int64) {
	r.tasks.WithLabelValues(string(category)).Inc()
	r.coinsAwarded.WithLabelValues(string(category)).Add(float64(coins))
}

func (r *Recorder) RedemptionCreated(method core.PayoutMethod, coins int64) {
	r.redemptions.WithLabelValues(string(method)).Inc()
	r.coinsRedeemed.WithLabelValues(string(method)).Add(float64(coins))
}

func (r *Recorder) RedemptionRejected(reason error) {
	r.rejections.WithLabelValues(rejectionReason(reason)).Inc()
}

// WatchCache publishes the cache counters as they are read at scrape time.
func (r *Recorder) WatchCache(cache core.CacheWithStats) {
	counter := func(name, help string, read func(core.CacheStats) int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session_cache", Name: name, Help: help,
		}, func() float64 { return float64(read(cache.Stats())) })
	}

	r.registry.MustRegister(
		counter("hits_total", "Session cache hits.", func(s core.CacheStats) int64 { return s.Hits }),
		counter("misses_total", "Session cache misses.", func(s core.CacheStats) int64 { return s.Misses }),
		counter("evictions_total", "Session cache evictions.", func(s core.CacheStats) int64 { return s.Evictions }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "session_cache", Name: "entries",
			Help: "Sessions currently cached.",
		}, func() float64 { return float64(cache.Stats().Size) }),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, core.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, core.ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, core.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, core.ErrMissingDestination):
		return "missing_destination"
	case errors.Is(err, core.ErrInvalidPayoutMethod):
		return "invalid_method"
	case errors.Is(err, core.ErrRedemptionInProgress):
		return "in_progress"
	default:
		return "internal"
	}
}
