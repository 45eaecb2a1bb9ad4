// Package metrics exposes Prometheus counters for the pointer event grabber.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/offlinefirst/grabber/pkg/eventtap"
)

const namespace = "grabber"

var (
	// Registry is a dedicated Prometheus registry for all grabber metrics.
	Registry = prometheus.NewRegistry()

	// EventsTotal counts intercepted events by type.
	EventsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Pointer events intercepted by the event tap",
		},
		[]string{"type"},
	)

	// FlagRewritesTotal counts events whose modifier flags were changed.
	FlagRewritesTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flag_rewrites_total",
			Help:      "Intercepted events whose modifier flags were rewritten",
		},
	)

	// TapArmed is 1 while the event tap is installed.
	TapArmed = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tap_armed",
			Help:      "Whether the pointer event tap is installed (1) or not (0)",
		},
	)
)

// Observe counts every event and then calls next, if any.
func Observe(next eventtap.Observer) eventtap.Observer {
	return func(typ eventtap.EventType) {
		EventsTotal.WithLabelValues(typ.String()).Inc()
		if next != nil {
			next(typ)
		}
	}
}

// Instrument wraps t to count rewrites that change the flags.
func Instrument(t eventtap.FlagTransformer) eventtap.FlagTransformer {
	return eventtap.FlagTransformerFunc(func(raw eventtap.Flags, key eventtap.KeyCode) eventtap.Flags {
		out := t.EventFlags(raw, key)
		if out != raw {
			FlagRewritesTotal.Inc()
		}
		return out
	})
}

// SetArmed records the tap state.
func SetArmed(armed bool) {
	if armed {
		TapArmed.Set(1)
		return
	}
	TapArmed.Set(0)
}
