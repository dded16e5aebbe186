package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commandsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "magnet_bot",
		Name:      "commands_total",
		Help:      "Total number of chat commands handled by command name",
	}, []string{"command"})
	actionsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "magnet_bot",
		Name:      "actions_total",
		Help:      "Total number of menu selections handled by action name",
	}, []string{"action"})
	failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "magnet_bot",
		Name:      "failures_total",
		Help:      "Total number of requests answered with an error, by kind",
	}, []string{"kind"})
	renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "magnet_bot",
		Name:      "render_duration_seconds",
		Help:      "Histogram of report rendering durations by report kind",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 8),
	}, []string{"report"})
)

// Register adds the collectors to the default Prometheus registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commandsHandled, actionsHandled, failures, renderDuration)
	})
}

func IncCommand(name string) { commandsHandled.WithLabelValues(name).Inc() }
func IncAction(name string)  { actionsHandled.WithLabelValues(name).Inc() }
func IncFailure(kind string) { failures.WithLabelValues(kind).Inc() }

func ObserveRender(report string, d time.Duration) {
	renderDuration.WithLabelValues(report).Observe(d.Seconds())
}
