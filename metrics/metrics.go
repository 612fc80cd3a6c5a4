/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package metrics exposes the optional Prometheus instrumentation for
// the RBCP register server and DAQ client. Every constructor accepts
// a *Set and treats nil as "instrumentation disabled" so the core
// packages never require a registry to function.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set bundles every collector this module registers. A nil *Set is a
// valid, fully inert value: every method on it is a no-op.
type Set struct {
	RBCPRequests  *prometheus.CounterVec
	RBCPBusErrors prometheus.Counter
	RBCPTimeouts  prometheus.Counter

	DAQThroughputBytes prometheus.Counter
	DAQSpoolQueueDepth prometheus.Gauge
}

// NewSet creates and registers the collector set against reg. reg
// must not be nil (MustRegister is called on it); use a nil *Set
// instead to disable instrumentation entirely.
func NewSet(reg prometheus.Registerer, namespace string) *Set {
	s := &Set{
		RBCPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rbcp_server",
			Name:      "requests_total",
			Help:      "RBCP datagrams handled, partitioned by outcome.",
		}, []string{"outcome"}),
		RBCPBusErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rbcp_server",
			Name:      "bus_errors_total",
			Help:      "RBCP requests that resolved to no region (bus error reply).",
		}),
		RBCPTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rbcp_client",
			Name:      "timeouts_total",
			Help:      "RBCP client requests that timed out waiting for a reply.",
		}),
		DAQThroughputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "daq",
			Name:      "bytes_total",
			Help:      "Cumulative bytes delivered to OnDaqData.",
		}),
		DAQSpoolQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "daq",
			Name:      "spool_queue_depth",
			Help:      "Number of raw records waiting to be written by the spool worker.",
		}),
	}

	reg.MustRegister(
		s.RBCPRequests,
		s.RBCPBusErrors,
		s.RBCPTimeouts,
		s.DAQThroughputBytes,
		s.DAQSpoolQueueDepth,
	)
	return s
}

// IncRequest records one RBCP request with the given outcome label
// ("read_ok", "write_ok", "read_out_of_range", "write_out_of_range",
// "unknown_command", "short_packet", "bad_version"). Safe on a nil Set.
func (s *Set) IncRequest(outcome string) {
	if s == nil {
		return
	}
	s.RBCPRequests.WithLabelValues(outcome).Inc()
}

// IncBusError is safe on a nil Set.
func (s *Set) IncBusError() {
	if s == nil {
		return
	}
	s.RBCPBusErrors.Inc()
}

// IncTimeout is safe on a nil Set.
func (s *Set) IncTimeout() {
	if s == nil {
		return
	}
	s.RBCPTimeouts.Inc()
}

// AddDAQBytes is safe on a nil Set.
func (s *Set) AddDAQBytes(n int) {
	if s == nil {
		return
	}
	s.DAQThroughputBytes.Add(float64(n))
}

// SetSpoolQueueDepth is safe on a nil Set.
func (s *Set) SetSpoolQueueDepth(depth int) {
	if s == nil {
		return
	}
	s.DAQSpoolQueueDepth.Set(float64(depth))
}
