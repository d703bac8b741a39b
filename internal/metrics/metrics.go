// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from rsv runs.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems (Prometheus Pushgateway, DogStatsD) live in
//     subpackages so the rest of the code depends only on this interface.
//
// Metric names:
//
//	rsv_step_total{step,status}             counter
//	rsv_step_duration_seconds{step,status}  histogram
//	rsv_records_total{kind}                 counter (processed, skipped)
//	rsv_chunks_total                        counter
//	rsv_bytes_total                         counter
package metrics

import "time"

// Metric names shared with the backends.
const (
	StepTotal           = "rsv_step_total"
	StepDurationSeconds = "rsv_step_duration_seconds"
	RecordsTotal        = "rsv_records_total"
	ChunksTotal         = "rsv_chunks_total"
	BytesTotal          = "rsv_bytes_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
// It must be called before any run starts.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures latency and success/failure of one stage of a run
// (infer, scan, render, export).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments the record counter for the given job and kind
// ("processed" or "skipped").
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordChunk counts one merged chunk and its size in bytes.
func RecordChunk(job string, bytes int64) {
	lbls := Labels{"job": job}
	backend.IncCounter(ChunksTotal, 1, lbls)
	if bytes > 0 {
		backend.IncCounter(BytesTotal, float64(bytes), lbls)
	}
}
