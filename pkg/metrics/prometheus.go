package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	jobsStarted     prometheus.Counter
	jobsFinished    *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	symbolsScreened *prometheus.CounterVec
	jobProgress     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		jobsStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "screenpull_jobs_started_total",
				Help: "Total number of screening jobs started",
			},
		),
		jobsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screenpull_jobs_finished_total",
				Help: "Total number of screening jobs finished by terminal status",
			},
			[]string{"status"},
		),
		jobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screenpull_job_duration_seconds",
				Help:    "Screening job duration in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"status"},
		),
		symbolsScreened: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screenpull_symbols_screened_total",
				Help: "Total number of symbols screened by outcome",
			},
			[]string{"outcome"},
		),
		jobProgress: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screenpull_job_progress_percent",
				Help: "Current progress percentage per running job",
			},
			[]string{"job_id"},
		),
	}
}

// JobStarted records a job transitioning to running.
func (r *Recorder) JobStarted() {
	r.jobsStarted.Inc()
}

// JobFinished records a job reaching a terminal status with its duration.
func (r *Recorder) JobFinished(status string, seconds float64) {
	r.jobsFinished.WithLabelValues(status).Inc()
	r.jobDuration.WithLabelValues(status).Observe(seconds)
}

// SymbolScreened records one per-symbol outcome: match, reject, or error.
func (r *Recorder) SymbolScreened(outcome string) {
	r.symbolsScreened.WithLabelValues(outcome).Inc()
}

// RecordProgress sets the progress gauge for a job. Finished jobs should be
// removed with ClearProgress to keep the label set bounded.
func (r *Recorder) RecordProgress(jobID string, progress float64) {
	r.jobProgress.WithLabelValues(jobID).Set(progress)
}

// ClearProgress drops the progress series for a finished job.
func (r *Recorder) ClearProgress(jobID string) {
	r.jobProgress.DeleteLabelValues(jobID)
}
