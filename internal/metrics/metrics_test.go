package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	// Success case.
	RecordStep("jobA", "reader", nil, 2*time.Second)

	// Failure case.
	err := errors.New("boom")
	RecordStep("jobB", "loader", err, 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	if len(fb.callsHistograms) != 2 {
		t.Fatalf("expected 2 histogram calls, got %d", len(fb.callsHistograms))
	}

	// First call: success.
	cc0 := fb.callsCounters[0]
	if cc0.name != "rsv_step_total" || cc0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want name=rsv_step_total, delta=1", cc0)
	}
	if got := cc0.labels["job"]; got != "jobA" {
		t.Fatalf("counter[0].labels[job]=%q; want %q", got, "jobA")
	}
	if got := cc0.labels["step"]; got != "reader" {
		t.Fatalf("counter[0].labels[step]=%q; want %q", got, "reader")
	}
	if got := cc0.labels["status"]; got != "success" {
		t.Fatalf("counter[0].labels[status]=%q; want %q", got, "success")
	}

	h0 := fb.callsHistograms[0]
	if h0.name != "rsv_step_duration_seconds" {
		t.Fatalf("hist[0].name=%q; want rsv_step_duration_seconds", h0.name)
	}
	if h0.value < 2.0-0.001 || h0.value > 2.0+0.001 {
		t.Fatalf("hist[0].value=%v; want ~2.0", h0.value)
	}

	// Second call: failure.
	cc1 := fb.callsCounters[1]
	if cc1.labels["job"] != "jobB" || cc1.labels["step"] != "loader" {
		t.Fatalf("counter[1] labels job/step = %v; want jobB/loader", cc1.labels)
	}
	if cc1.labels["status"] != "failure" {
		t.Fatalf("counter[1].labels[status]=%q; want %q", cc1.labels["status"], "failure")
	}

	h1 := fb.callsHistograms[1]
	if h1.value < 1.5-0.001 || h1.value > 1.5+0.001 {
		t.Fatalf("hist[1].value=%v; want ~1.5", h1.value)
	}
}

func TestRecordRowAndChunk(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordRow("jobX", "processed", 3)
	RecordRow("jobX", "processed", 0) // should be ignored
	RecordRow("jobY", "skipped", 5)
	RecordChunk("jobZ", 1024)
	RecordChunk("jobZ", 0) // counts the chunk, not the bytes

	if len(fb.callsCounters) != 5 {
		t.Fatalf("expected 5 counter calls, got %d", len(fb.callsCounters))
	}

	// 1) processed
	c0 := fb.callsCounters[0]
	if c0.name != "rsv_records_total" || c0.delta != 3 {
		t.Fatalf("counter[0] = %#v; want name=rsv_records_total, delta=3", c0)
	}
	if c0.labels["job"] != "jobX" || c0.labels["kind"] != "processed" {
		t.Fatalf("counter[0] labels = %v; want job=jobX, kind=processed", c0.labels)
	}

	// 2) skipped
	c1 := fb.callsCounters[1]
	if c1.name != "rsv_records_total" || c1.delta != 5 {
		t.Fatalf("counter[1] = %#v; want name=rsv_records_total, delta=5", c1)
	}
	if c1.labels["job"] != "jobY" || c1.labels["kind"] != "skipped" {
		t.Fatalf("counter[1] labels = %v; want job=jobY, kind=skipped", c1.labels)
	}

	// 3) chunk + bytes
	if c := fb.callsCounters[2]; c.name != ChunksTotal || c.delta != 1 || c.labels["job"] != "jobZ" {
		t.Fatalf("counter[2] = %#v; want %s delta=1 job=jobZ", c, ChunksTotal)
	}
	if c := fb.callsCounters[3]; c.name != BytesTotal || c.delta != 1024 {
		t.Fatalf("counter[3] = %#v; want %s delta=1024", c, BytesTotal)
	}
	if c := fb.callsCounters[4]; c.name != ChunksTotal {
		t.Fatalf("counter[4] = %#v; want %s", c, ChunksTotal)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)

	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}

	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	// SetBackend(nil) should not nil out the backend.
	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}
