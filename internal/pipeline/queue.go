package pipeline

import "context"

// unboundedQueue connects workers to the reducer. Sends never wait on the
// reducer: a mover goroutine buffers values in a slice until they are
// received. Close the input channel to flush and close the output.
//
// If ctx is cancelled the mover drops whatever it holds and closes the
// output; senders must then select on ctx.Done themselves.
func unboundedQueue[T any](ctx context.Context) (chan<- T, <-chan T) {
	in := make(chan T)
	out := make(chan T)

	go func(src <-chan T) {
		defer close(out)
		var buf []T
		for src != nil || len(buf) > 0 {
			var (
				send chan<- T
				next T
			)
			if len(buf) > 0 {
				send = out
				next = buf[0]
			}
			select {
			case v, ok := <-src:
				if !ok {
					src = nil
					continue
				}
				buf = append(buf, v)
			case send <- next:
				var zero T
				buf[0] = zero
				buf = buf[1:]
			case <-ctx.Done():
				return
			}
		}
	}(in)

	return in, out
}
