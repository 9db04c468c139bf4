// Package metrics records attempt counts and phase durations of a runner
// lifecycle run and exports them in the Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hcloud_runner"

// Result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder holds the metrics of one invocation. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	attemptsTotal *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	apiCallsTotal *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Total number of attempts by phase and result",
			},
			[]string{"phase", "result"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of lifecycle phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 13), // 1s to ~68min
			},
			[]string{"phase", "result"},
		),
		apiCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "github",
				Name:      "api_calls_total",
				Help:      "Total number of GitHub API calls by operation and result",
			},
			[]string{"operation", "result"},
		),
	}
	r.registry.MustRegister(r.attemptsTotal, r.phaseDuration, r.apiCallsTotal)
	return r
}

// Registerer exposes the registry so API clients can add their own collectors.
func (r *Recorder) Registerer() prometheus.Registerer {
	if r == nil {
		return nil
	}
	return r.registry
}

// Gatherer returns the registry for export.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordAttempt counts one attempt of phase.
func (r *Recorder) RecordAttempt(phase string, err error) {
	if r == nil {
		return
	}
	r.attemptsTotal.WithLabelValues(phase, result(err)).Inc()
}

// ObservePhase records how long phase took.
func (r *Recorder) ObservePhase(phase string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.phaseDuration.WithLabelValues(phase, result(err)).Observe(d.Seconds())
}

// RecordAPICall counts one GitHub API call.
func (r *Recorder) RecordAPICall(operation string, err error) {
	if r == nil {
		return
	}
	r.apiCallsTotal.WithLabelValues(operation, result(err)).Inc()
}

// WriteToFile writes all metrics to path in the text exposition format,
// suitable for the node exporter textfile collector.
func (r *Recorder) WriteToFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
