// Package metrics exposes Prometheus counters for the submission pipeline:
// per-slot upload outcomes, uploaded bytes and submission outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// Metrics is safe to use through a nil pointer; every method is a no-op then.
type Metrics struct {
	uploadsTotal       *prometheus.CounterVec
	uploadBytesTotal   prometheus.Counter
	submissionsTotal   *prometheus.CounterVec
	submissionDuration prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		uploadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vr_artifact_uploads_total",
			Help: "Photo uploads by slot and outcome (succeeded, network, rejected, missing, source, cancelled).",
		}, []string{"slot", "outcome"}),

		uploadBytesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "vr_artifact_upload_bytes_total",
			Help: "Bytes of successfully uploaded photos.",
		}),

		submissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vr_submissions_total",
			Help: "Finished submissions by outcome.",
		}, []string{"outcome"}),

		submissionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vr_submission_duration_seconds",
			Help:    "Time from submit to terminal state.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}
}

// ObserveUpload counts one slot attempt. bytes is only added for successes.
func (m *Metrics) ObserveUpload(slot vehicle.Slot, outcome string, bytes int) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(string(slot), outcome).Inc()
	if outcome == OutcomeSucceeded && bytes > 0 {
		m.uploadBytesTotal.Add(float64(bytes))
	}
}

// ObserveSubmission counts a submission reaching a terminal state.
func (m *Metrics) ObserveSubmission(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.submissionDuration.Observe(d.Seconds())
}

const (
	OutcomeSucceeded = "succeeded"
	OutcomeComplete  = "complete"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)
