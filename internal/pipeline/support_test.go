package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ---------- unbounded queue ---------- */

func TestUnboundedQueue_SendsNeverBlock(t *testing.T) {
	t.Parallel()

	in, out := unboundedQueue[int](context.Background())
	for i := range 1000 {
		in <- i
	}
	close(in)

	var got []int
	for v := range out {
		got = append(got, v)
	}
	require.Len(t, got, 1000)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestUnboundedQueue_CancelClosesOutput(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in, out := unboundedQueue[int](ctx)
	in <- 1
	cancel()

	select {
	case <-drain(out):
	case <-time.After(5 * time.Second):
		t.Fatal("output not closed after cancel")
	}
}

func drain[T any](ch <-chan T) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	return done
}

/* ---------- diagnostics ---------- */

func TestDiagnostics_KeepsFirstAndCountsAll(t *testing.T) {
	t.Parallel()

	d := NewDiagnostics(3)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Add(fmt.Sprintf("row %d", i))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), d.Count())
	assert.Len(t, d.First(), 3)
}

func TestDiagnostics_Nil(t *testing.T) {
	t.Parallel()

	var d *Diagnostics
	d.Add("x")
	d.Log("ignored")
	assert.Zero(t, d.Count())
	assert.Nil(t, d.First())
}

/* ---------- progress ---------- */

func TestProgress_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewProgress(&buf, false)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.start = base
	p.now = func() time.Time { return base.Add(2 * time.Second) }

	p.Update(1000, 1024)
	p.Update(234, 1024)
	p.Done()

	assert.Equal(t, "chunks: 2, rows: 1,234, read: 2.0 kB (1.0 kB/s), elapsed: 2s\n", buf.String())
}

func TestProgress_QuietAndNil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewProgress(&buf, true)
	p.Update(1, 1)
	p.Done()
	assert.Empty(t, buf.String())
	_, lines, _ := p.Snapshot()
	assert.Equal(t, int64(1), lines)

	var nilP *Progress
	nilP.Update(1, 1)
	nilP.Done()
	c, l, b := nilP.Snapshot()
	assert.Zero(t, c+l+b)
}
