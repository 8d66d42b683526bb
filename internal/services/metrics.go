package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	checkIns     *prometheus.CounterVec
	unlocks      *prometheus.CounterVec
	completions  *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		checkIns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dailyglow_check_ins_total",
				Help: "Check-ins by period and outcome",
			},
			[]string{"period", "outcome"},
		),
		unlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dailyglow_unlocks_total",
				Help: "Achievement and badge unlocks by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dailyglow_challenge_completions_total",
				Help: "Daily challenge completion attempts by outcome",
			},
			[]string{"outcome"},
		),
		storeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dailyglow_store_call_duration_seconds",
				Help:    "Duration of persistence calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	if registerer != nil {
		registerer.MustRegister(metrics.checkIns, metrics.unlocks, metrics.completions, metrics.storeLatency)
	}
	return metrics
}

func (metrics *Metrics) CheckIn(period string, outcome string) {
	if metrics == nil {
		return
	}
	metrics.checkIns.WithLabelValues(period, outcome).Inc()
}

func (metrics *Metrics) Unlock(kind string, outcome string) {
	if metrics == nil {
		return
	}
	metrics.unlocks.WithLabelValues(kind, outcome).Inc()
}

func (metrics *Metrics) Completion(outcome string) {
	if metrics == nil {
		return
	}
	metrics.completions.WithLabelValues(outcome).Inc()
}

// ObserveStore is meant to be deferred: defer metrics.ObserveStore("op", time.Now()).
func (metrics *Metrics) ObserveStore(op string, startedAt time.Time) {
	if metrics == nil {
		return
	}
	metrics.storeLatency.WithLabelValues(op).Observe(time.Since(startedAt).Seconds())
}
