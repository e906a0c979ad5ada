package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	symbolsScanned *prometheus.CounterVec
	symbolsSkipped *prometheus.CounterVec
	signalsTotal   *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	scanDuration   prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		symbolsScanned: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_symbols_scanned_total",
				Help: "Total number of symbols scanned",
			},
			[]string{"symbol"},
		),
		symbolsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_symbols_skipped_total",
				Help: "Total number of symbols skipped during scans",
			},
			[]string{"reason"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_signals_total",
				Help: "Total number of signals emitted",
			},
			[]string{"type", "strength"},
		),
		resolutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_resolutions_total",
				Help: "Total number of prediction resolutions",
			},
			[]string{"type", "status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		scanDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "volscan_scan_duration_seconds",
				Help:    "Duration of full pipeline scans in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
	}
}

// RecordSymbolScanned records one symbol passing through the pipeline.
func (r *Recorder) RecordSymbolScanned(symbol string) {
	r.symbolsScanned.WithLabelValues(symbol).Inc()
}

// RecordSymbolSkipped records a symbol dropped from a scan.
func (r *Recorder) RecordSymbolSkipped(reason string) {
	r.symbolsSkipped.WithLabelValues(reason).Inc()
}

// RecordSignal records an emitted signal.
func (r *Recorder) RecordSignal(signalType string, strength int) {
	r.signalsTotal.WithLabelValues(signalType, strconv.Itoa(strength)).Inc()
}

// RecordResolution records one prediction transition.
func (r *Recorder) RecordResolution(signalType, status string) {
	r.resolutions.WithLabelValues(signalType, status).Inc()
}

// RecordScanDuration records one full scan's wall time in seconds.
func (r *Recorder) RecordScanDuration(seconds float64) {
	r.scanDuration.Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
