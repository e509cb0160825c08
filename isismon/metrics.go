package main

import (
	"github.com/nrybowski/isis-parser/isismon/update"
	"github.com/prometheus/client_golang/prometheus"
)

// Decode error kinds used as the "kind" label of isismon_decode_errors_total.
const (
	errKindFrame       = "frame"
	errKindNotISIS     = "not-isis"
	errKindUnsupported = "unsupported"
	errKindTruncated   = "truncated"
	errKindMalformed   = "malformed"
	errKindVerify      = "verify"
	errKindInvalid     = "invalid"
	errKindOther       = "other"
)

// Metrics are the monitor's prometheus collectors.
type Metrics struct {
	Frames  prometheus.Counter
	PDUs    *prometheus.CounterVec
	Errors  *prometheus.CounterVec
	Changes *prometheus.CounterVec
	LSPs    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isismon",
			Name:      "frames_total",
			Help:      "Frames read from the capture source.",
		}),
		PDUs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isismon",
			Name:      "pdus_total",
			Help:      "IS-IS PDUs decoded, by PDU type.",
		}, []string{"type"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isismon",
			Name:      "decode_errors_total",
			Help:      "Frames that could not be decoded, by kind.",
		}, []string{"kind"}),
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isismon",
			Name:      "topology_changes_total",
			Help:      "Topology changes recorded in the LSP database, by kind.",
		}, []string{"kind"}),
		LSPs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "isismon",
			Name:      "lsps",
			Help:      "LSPs held in the database.",
		}),
	}
	reg.MustRegister(m.Frames, m.PDUs, m.Errors, m.Changes, m.LSPs)
	return m
}

func (m *Metrics) addChanges(changes []update.Change) {
	for _, c := range changes {
		m.Changes.WithLabelValues(c.Kind.String()).Inc()
	}
}
