// SPDX-License-Identifier: EPL-2.0

// Package metrics exposes Prometheus metrics for transcode runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "audxcode"

// Metrics contains the Prometheus metrics of the transcoder. A nil *Metrics
// records nothing.
type Metrics struct {
	// Run metrics
	RunsStarted   prometheus.Counter
	RunsSucceeded prometheus.Counter
	RunFailures   *prometheus.CounterVec
	ActiveRuns    prometheus.Gauge
	RunDuration   prometheus.Histogram

	// Sample metrics
	FramesDecoded  prometheus.Counter
	SamplesDecoded prometheus.Counter

	// Output metrics
	PacketsWritten prometheus.Counter
	BytesWritten   prometheus.Counter
	OutputSize     prometheus.Histogram
}

// New creates the metrics and registers them with reg. A nil reg registers
// with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Total number of transcode runs started",
		}),
		RunsSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_succeeded_total",
			Help:      "Total number of transcode runs that produced an output file",
		}),
		RunFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Total number of failed transcode runs by error kind",
		}, []string{"kind"}),
		ActiveRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Number of transcode runs in progress",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of transcode runs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),

		FramesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_decoded_total",
			Help:      "Total number of decoded frames handed to the pipeline",
		}),
		SamplesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_decoded_total",
			Help:      "Total number of decoded samples per channel",
		}),

		PacketsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_written_total",
			Help:      "Total number of encoded packets written",
		}),
		BytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Total encoded payload bytes written",
		}),
		OutputSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "output_size_bytes",
			Help:      "Encoded payload size of successful runs",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),
	}
}

func (m *Metrics) RecordRunStarted() {
	if m == nil {
		return
	}
	m.RunsStarted.Inc()
	m.ActiveRuns.Inc()
}

// RecordRunSucceeded records a finished run and the payload it wrote.
func (m *Metrics) RecordRunSucceeded(durationSeconds float64, packets, bytes int64) {
	if m == nil {
		return
	}
	m.ActiveRuns.Dec()
	m.RunsSucceeded.Inc()
	m.RunDuration.Observe(durationSeconds)
	m.PacketsWritten.Add(float64(packets))
	m.BytesWritten.Add(float64(bytes))
	m.OutputSize.Observe(float64(bytes))
}

// RecordRunFailed records a failed run under the given error kind.
func (m *Metrics) RecordRunFailed(durationSeconds float64, kind string) {
	if m == nil {
		return
	}
	m.ActiveRuns.Dec()
	m.RunFailures.WithLabelValues(kind).Inc()
	m.RunDuration.Observe(durationSeconds)
}

func (m *Metrics) RecordFrameDecoded(samples int) {
	if m == nil {
		return
	}
	m.FramesDecoded.Inc()
	m.SamplesDecoded.Add(float64(samples))
}
