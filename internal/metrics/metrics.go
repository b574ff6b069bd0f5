// Package metrics exposes Prometheus collectors for the enforcement core.
//
// Metrics Categories:
//   - Ban list: bans and unbans by source, current list size
//   - Enforcement: active targets, no-op messages sent, failed actions
//   - Network filter: dropped inbound events
//   - Authority: host steal attempts by detection path
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests and offline tools.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "session_guard"

// Ban sources.
const (
	SourceManual    = "manual"
	SourceDetector  = "detector"
	SourceAuthority = "authority"
)

type Metrics struct {
	BansTotal          *prometheus.CounterVec
	UnbansTotal        prometheus.Counter
	BanListSize        prometheus.Gauge
	ActiveTargets      prometheus.Gauge
	NoopMessagesTotal  prometheus.Counter
	ActionFailures     *prometheus.CounterVec
	EventsDroppedTotal prometheus.Counter
	HijackAttempts     *prometheus.CounterVec
	PersistFailures    prometheus.Counter
}

// New creates the collectors and registers them with reg when it is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bans_total",
				Help:      "Total number of bans added, by source",
			},
			[]string{"source"},
		),
		UnbansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unbans_total",
			Help:      "Total number of bans removed",
		}),
		BanListSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ban_list_size",
			Help:      "Number of records in the ban list",
		}),
		ActiveTargets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enforcement_targets",
			Help:      "Participants currently targeted by enforcement",
		}),
		NoopMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noop_messages_sent_total",
			Help:      "No-op messages sent to targeted participants",
		}),
		ActionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "action_failures_total",
				Help:      "Enforcement actions that failed, by action",
			},
			[]string{"action"},
		),
		EventsDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Inbound session events dropped because the sender is banned",
		}),
		HijackAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authority_hijack_attempts_total",
				Help:      "Detected authority hijack attempts, by detection path",
			},
			[]string{"path"},
		),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ban_list_persist_failures_total",
			Help:      "Ban list writes that failed",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.BansTotal,
			m.UnbansTotal,
			m.BanListSize,
			m.ActiveTargets,
			m.NoopMessagesTotal,
			m.ActionFailures,
			m.EventsDroppedTotal,
			m.HijackAttempts,
			m.PersistFailures,
		)
	}

	return m
}

func (m *Metrics) RecordBan(source string, listSize int) {
	if m == nil {
		return
	}
	m.BansTotal.WithLabelValues(source).Inc()
	m.BanListSize.Set(float64(listSize))
}

func (m *Metrics) RecordUnban(listSize int) {
	if m == nil {
		return
	}
	m.UnbansTotal.Inc()
	m.BanListSize.Set(float64(listSize))
}

func (m *Metrics) SetBanListSize(size int) {
	if m == nil {
		return
	}
	m.BanListSize.Set(float64(size))
}

func (m *Metrics) SetActiveTargets(n int) {
	if m == nil {
		return
	}
	m.ActiveTargets.Set(float64(n))
}

func (m *Metrics) AddNoopMessages(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.NoopMessagesTotal.Add(float64(n))
}

func (m *Metrics) RecordActionFailure(action string) {
	if m == nil {
		return
	}
	m.ActionFailures.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordDroppedEvent() {
	if m == nil {
		return
	}
	m.EventsDroppedTotal.Inc()
}

func (m *Metrics) RecordHijackAttempt(path string) {
	if m == nil {
		return
	}
	m.HijackAttempts.WithLabelValues(path).Inc()
}

func (m *Metrics) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}
