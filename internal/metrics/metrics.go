// Package metrics exposes prometheus collectors for persistence and the ledger.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taller"

// FlushMetrics records persistence flush attempts.
type FlushMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewFlushMetrics registers the flush metrics on reg. A nil registerer yields a no-op value.
func NewFlushMetrics(reg prometheus.Registerer) *FlushMetrics {
	if reg == nil {
		return &FlushMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "flush_duration_seconds",
		Help:      "Duration of snapshot flushes in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flush_success_total",
		Help:      "Successful snapshot flushes.",
	}, []string{"backend"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flush_failure_total",
		Help:      "Failed snapshot flushes.",
	}, []string{"backend"})
	reg.MustRegister(duration, success, failure)
	return &FlushMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

func (m *FlushMetrics) ObserveDuration(backend string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(backend)).Observe(d.Seconds())
}

func (m *FlushMetrics) IncSuccess(backend string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(backend)).Inc()
}

func (m *FlushMetrics) IncFailure(backend string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(backend)).Inc()
}

// LedgerMetrics counts production records and payment transitions.
type LedgerMetrics struct {
	created   *prometheus.CounterVec
	rejected  prometheus.Counter
	paid      prometheus.Counter
	paidTotal prometheus.Counter
}

func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_created_total",
		Help:      "Production records created, by source.",
	}, []string{"source"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capacity_rejections_total",
		Help:      "Records rejected because the operation had no pieces left.",
	})
	paid := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_paid_total",
		Help:      "Production records moved from pending to paid.",
	})
	paidTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "paid_amount_total",
		Help:      "Sum of earnings marked as paid.",
	})
	reg.MustRegister(created, rejected, paid, paidTotal)
	return &LedgerMetrics{
		created:   created,
		rejected:  rejected,
		paid:      paid,
		paidTotal: paidTotal,
	}
}

func (m *LedgerMetrics) IncCreated(source string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *LedgerMetrics) IncCapacityRejected() {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.Inc()
}

func (m *LedgerMetrics) AddPaid(records int, amount float64) {
	if m == nil || m.paid == nil {
		return
	}
	m.paid.Add(float64(records))
	m.paidTotal.Add(amount)
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
