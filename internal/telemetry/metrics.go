package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wguard"

var (
	// FramesCaptured counts raw frames received per interface
	FramesCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_captured_total",
			Help:      "Total number of frames received from capture interfaces",
		},
		[]string{"interface"},
	)

	// FramesDecoded counts frames that produced a radio event
	FramesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_decoded_total",
			Help:      "Total number of frames decoded into radio events",
		},
		[]string{"interface", "kind"},
	)

	// FramesDropped counts frames or events discarded before reaching a consumer
	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Total number of frames or events dropped",
		},
		[]string{"interface", "reason"},
	)

	// InjectionsTotal counts deauth frames handed to a transport
	InjectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "injection_total",
			Help:      "Total number of frame injection attempts",
		},
		[]string{"interface"},
	)

	// InjectionErrors counts failed injection attempts
	InjectionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "injection_errors_total",
			Help:      "Total number of failed frame injection attempts",
		},
		[]string{"interface"},
	)

	// Verdicts counts evil-twin verdicts issued
	Verdicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Total number of rogue access point verdicts",
		},
	)

	// AlertsTotal counts alerts dispatched
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Total number of alerts dispatched",
		},
		[]string{"subtype", "severity"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// Drop reasons used with FramesDropped.
const (
	DropSubscriberFull = "subscriber_full"
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		// Already-registered errors are ignored so tests can share the default registry
		prometheus.DefaultRegisterer.Register(FramesCaptured)
		prometheus.DefaultRegisterer.Register(FramesDecoded)
		prometheus.DefaultRegisterer.Register(FramesDropped)
		prometheus.DefaultRegisterer.Register(InjectionsTotal)
		prometheus.DefaultRegisterer.Register(InjectionErrors)
		prometheus.DefaultRegisterer.Register(Verdicts)
		prometheus.DefaultRegisterer.Register(AlertsTotal)
	})
}
