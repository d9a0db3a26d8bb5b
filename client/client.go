package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/fifomesh/mpa/control"
	"github.com/fifomesh/mpa/endpoint"
	"github.com/fifomesh/mpa/errcode"
	"github.com/fifomesh/mpa/internal/fifoio"
)

// MaxNameAttempts bounds how many numeric suffixes a Client will try
// when claiming a handle before giving up with
// errcode.ReachedMaxNameIndex.
const MaxNameAttempts = 8

// handshakeAttempts bounds how long a single candidate suffix waits for
// the server to create the data FIFO node before the Client moves on to
// the next suffix. The non-blocking read-side open succeeds as soon as
// the node exists; it does not wait for the server to open its write end.
const handshakeAttempts = 200

// JoinDeadline bounds how long Pause/Close wait for the helper loop to
// exit before giving up and tearing the data FIFO down anyway.
const JoinDeadline = 2 * time.Second

// Client is one attachment to a published endpoint.
type Client struct {
	dir        string
	baseHandle string
	log        *slog.Logger
	opts       options

	mu         sync.Mutex
	handle     string
	file       *os.File
	reader     *fifoio.CancelReader
	paused     bool
	closed     bool
	reconnects int

	cancel context.CancelFunc
	group  *errgroup.Group

	ctrl *os.File
}

// Stats is a point-in-time snapshot of a Client's attach state.
type Stats struct {
	Handle     string
	Connected  bool
	Reconnects int
}

// Stats returns a snapshot of the client's current attach state.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Handle:     c.handle,
		Connected:  c.file != nil,
		Reconnects: c.reconnects,
	}
}

// Open claims a handle at the endpoint named name (under opts' base, or
// endpoint.DefaultBase) and, unless WithStartPaused was given, performs
// the rendezvous handshake immediately.
func Open(name, baseHandle string, opts ...Option) (*Client, error) {
	if err := endpoint.ValidateName(baseHandle, false); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	dir, err := endpoint.Expand(o.base, name)
	if err != nil {
		return nil, err
	}
	if !endpoint.Exists(dir) {
		return nil, errcode.New(errcode.ServerNotAvailable, fmt.Sprintf("no endpoint published at %q", dir))
	}

	c := &Client{
		dir:        dir,
		baseHandle: baseHandle,
		log:        slog.Default().With("component", "mpa-client", "endpoint", name),
		opts:       o,
		paused:     o.startPaused,
	}

	if o.startPaused {
		return c, nil
	}
	if err := c.Resume(); err != nil {
		return nil, err
	}
	return c, nil
}

// Resume performs the rendezvous handshake (if not already attached) and
// starts the background helper loop, if one is configured.
func (c *Client) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errcode.New(errcode.NotConnected, "client is closed")
	}
	if c.file != nil {
		c.paused = false
		return nil
	}

	f, handle, err := rendezvous(c.dir, c.baseHandle, c.opts.maxNameAttempts, c.log)
	if err != nil {
		return err
	}
	c.handle = handle
	c.file = f
	c.reader = fifoio.NewCancelReader(f)
	c.paused = false

	if ctrl, err := control.Dial(c.dir); err == nil {
		c.ctrl = ctrl
	}

	if c.opts.mode != HelperNone {
		ctx, cancel := context.WithCancel(context.Background())
		g, ctx := errgroup.WithContext(ctx)
		c.cancel = cancel
		c.group = g
		g.Go(func() error {
			c.helperLoop(ctx)
			return nil
		})
	}
	return nil
}

// Pause stops the background helper loop, closes the data FIFO and
// unlinks its node, without releasing the client's handle identity; a
// later Resume reattaches under the same handle.
func (c *Client) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pauseLocked()
}

func (c *Client) pauseLocked() error {
	if c.file == nil {
		c.paused = true
		return nil
	}
	if c.cancel != nil {
		c.cancel()
		group := c.group
		c.mu.Unlock()
		done := make(chan struct{})
		go func() {
			group.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(JoinDeadline):
			c.log.Warn("helper loop did not exit within the join deadline")
		}
		c.mu.Lock()
		c.cancel = nil
		c.group = nil
	}
	c.file.Close()
	c.file = nil
	c.reader = nil
	// Unlinking the node leaves this handle's suffix free, so the next
	// rendezvous claims the same handle again.
	_ = fifoio.Remove(c.dir + c.handle)
	if c.ctrl != nil {
		c.ctrl.Close()
		c.ctrl = nil
	}
	c.paused = true
	return nil
}

// Close pauses the client (if attached) and marks it permanently
// unusable.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	err := c.pauseLocked()
	c.closed = true
	return err
}

// Read reads one chunk of data directly from the client's data FIFO,
// bypassing any configured helper loop. It is the caller's
// responsibility to not mix direct Read calls with a helper mode.
func (c *Client) Read(ctx context.Context, buf []byte) (int, error) {
	c.mu.Lock()
	reader := c.reader
	c.mu.Unlock()
	if reader == nil {
		return 0, errcode.New(errcode.NotConnected, "client is not attached")
	}
	return reader.Read(ctx, buf)
}

// Handle returns the handle string the client ultimately claimed,
// including any numeric disambiguation suffix.
func (c *Client) Handle() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// rendezvous claims a free handle suffix in [0, attempts) under
// baseHandle and returns the opened read end of the claimed data FIFO.
// The server creates every data FIFO node; this function never unlinks one
// itself, a plain existence check is enough to move past a taken suffix.
// Apart from Pause unlinking the client's own data FIFO, the one unlink
// right a client holds is sweeping the whole endpoint tree when the
// rendezvous FIFO itself turns out to be dead.
func rendezvous(dir, baseHandle string, attempts int, log *slog.Logger) (*os.File, string, error) {
	req, err := os.OpenFile(dir+endpoint.RequestFile, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		if errors.Is(err, unix.ENXIO) {
			endpoint.SweepIfDead(dir)
		}
		return nil, "", errcode.Wrap(errcode.ServerNotAvailable, err)
	}
	defer req.Close()

	for i := 0; i < attempts; i++ {
		handle := fmt.Sprintf("%s%d", baseHandle, i)
		path := dir + handle

		if _, err := os.Stat(path); err == nil {
			continue
		}

		if _, err := req.Write([]byte(handle + "\x00")); err != nil {
			return nil, "", errcode.Wrap(errcode.ServerNotAvailable, err)
		}

		f, err := fifoio.OpenNonblockRetry(path, os.O_RDONLY|unix.O_NONBLOCK, handshakeAttempts)
		if err != nil {
			log.Debug("candidate handle did not attach in time", "handle", handle, "error", err)
			continue
		}
		return f, handle, nil
	}

	return nil, "", errcode.New(errcode.ReachedMaxNameIndex,
		fmt.Sprintf("no free handle for %q after %d attempts", baseHandle, attempts))
}
