package pipeline

import (
	"log"
	"sync"
)

// Diagnostics collects soft failures (skipped rows) reported by workers.
// Only the first limit messages are kept; the rest are counted. It is safe
// for concurrent use and a nil *Diagnostics discards everything.
type Diagnostics struct {
	mu    sync.Mutex
	limit int
	count int64
	first []string
}

// NewDiagnostics keeps at most limit messages.
func NewDiagnostics(limit int) *Diagnostics {
	return &Diagnostics{limit: limit}
}

// Add records one diagnostic message.
func (d *Diagnostics) Add(msg string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	if len(d.first) < d.limit {
		d.first = append(d.first, msg)
	}
	d.count++
	d.mu.Unlock()
}

// Count returns the number of messages recorded.
func (d *Diagnostics) Count() int64 {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// First returns a copy of the retained messages.
func (d *Diagnostics) First() []string {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.first...)
}

// Log prints a summary of the recorded messages under the given title.
func (d *Diagnostics) Log(title string) {
	n := d.Count()
	if n == 0 {
		return
	}
	first := d.First()
	log.Printf("%s: %d (showing first %d)", title, n, len(first))
	for i, s := range first {
		log.Printf("  #%03d: %s", i+1, s)
	}
}
