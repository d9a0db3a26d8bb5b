package control

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/fifomesh/mpa/internal/fifoio"
)

// DefaultBufSize is the default size of the per-read buffer the server
// hands to Callback, matching spec.md's 1 KiB default.
const DefaultBufSize = 1024

// DefaultCapacity is the default kernel pipe buffer size for the control
// FIFO, matching spec.md's 64 KiB default.
const DefaultCapacity = 64 * 1024

// FileName is the well-known name of the control FIFO inside an endpoint
// directory.
const FileName = "control"

// Callback is invoked once per command received on the control FIFO,
// with the data truncated/null-terminated at the first NUL byte.
type Callback func(data []byte)

// Server owns the server-side control FIFO and its background reader
// task.
type Server struct {
	log     *slog.Logger
	file    *os.File
	reader  *fifoio.CancelReader
	bufSize int
	cb      Callback

	cancel context.CancelFunc
	group  *errgroup.Group
}

// Start creates (if needed) and opens the control FIFO at dir+FileName
// read+write (so the kernel never reports EOF with no writer present),
// sets its kernel buffer to capacity, and spawns the background reader
// task that invokes cb for every command received.
func Start(dir string, capacity, bufSize int, cb Callback, log *slog.Logger) (*Server, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	path := dir + FileName
	if err := fifoio.Create(path, 0o666); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	if _, err := fifoio.SetCapacity(f, capacity); err != nil {
		log.Warn("failed to set control pipe capacity", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	s := &Server{
		log:     log.With("component", "control-server"),
		file:    f,
		reader:  fifoio.NewCancelReader(f),
		bufSize: bufSize,
		cb:      cb,
		cancel:  cancel,
		group:   g,
	}

	g.Go(func() error {
		s.loop(ctx)
		return nil
	})

	return s, nil
}

func (s *Server) loop(ctx context.Context) {
	buf := make([]byte, s.bufSize)
	for {
		n, err := s.reader.Read(ctx, buf)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.log.Debug("control read error", "error", err)
			continue
		}
		if n == 0 {
			continue
		}
		data := nullTerminate(buf[:n])
		if s.cb != nil {
			s.cb(data)
		}
	}
}

// Stop cancels the background reader and waits up to 1 second for it to
// exit, then closes and unlinks the control FIFO.
func (s *Server) Stop(dir string) {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.group.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-timeoutTimer():
		s.log.Warn("control reader did not exit within the join deadline")
	}
	s.file.Close()
	_ = fifoio.Remove(dir + FileName)
}

func nullTerminate(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
