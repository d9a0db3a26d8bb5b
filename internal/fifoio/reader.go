package fifoio

import (
	"context"
	"os"
	"time"
)

// pollDeadline bounds how long a single Read call blocks before the
// cancellable reader re-checks ctx. It is the realization of the "poll +
// short timeout" cancellation strategy spec.md's design notes call out as
// a valid substitute for signal-driven interruption of a blocking read,
// keeping cancellation latency to at most about one poll interval.
const pollDeadline = 10 * time.Millisecond

// CancelReader wraps a FIFO file descriptor so a blocking Read can be
// interrupted by cancelling a context, without relying on a delivered
// Unix signal. The wrapped file must have been opened non-blocking so
// SetReadDeadline takes effect.
type CancelReader struct {
	f *os.File
}

// NewCancelReader wraps f for cancellable reads.
func NewCancelReader(f *os.File) *CancelReader {
	return &CancelReader{f: f}
}

// Read blocks until at least one byte is available, ctx is cancelled, or
// the underlying read fails with anything other than a deadline timeout
// (for a FIFO with no writer attached, that includes io.EOF). It returns
// ctx.Err() on cancellation.
func (r *CancelReader) Read(ctx context.Context, buf []byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := r.f.SetReadDeadline(time.Now().Add(pollDeadline)); err != nil {
			// Deadlines unsupported for this fd type; fall back to a
			// single uncancellable read.
			return r.f.Read(buf)
		}
		n, err := r.f.Read(buf)
		if n > 0 || (err != nil && !isTimeout(err)) {
			return n, err
		}
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
