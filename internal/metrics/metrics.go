// Package metrics exposes the provider's Prometheus collectors.
//
// The live session gauge exists so a leaked enumeration (a caller
// that never sends end-of-enumeration) is visible from the outside
// instead of silently accumulating in the table.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LiveSessions tracks enumeration sessions currently held in the
	// session table.
	LiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hivefs",
		Name:      "live_enumeration_sessions",
		Help:      "Number of directory enumeration sessions currently open.",
	})

	// Callbacks counts dispatched callbacks by kind and result status.
	Callbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hivefs",
		Name:      "callbacks_total",
		Help:      "Virtualization callbacks dispatched, by kind and status.",
	}, []string{"kind", "status"})
)
