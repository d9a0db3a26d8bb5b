package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sys/unix"

	"github.com/fifomesh/mpa/control"
	"github.com/fifomesh/mpa/endpoint"
	"github.com/fifomesh/mpa/internal/fifoio"
)

// MaxClientsPerChannel bounds the number of distinct handles a Channel
// will ever track simultaneously, matching spec.md's fixed-size
// per-channel client table.
const MaxClientsPerChannel = 16

// JoinDeadline bounds how long Close waits for the channel's background
// goroutines to exit before giving up and cleaning up anyway.
const JoinDeadline = time.Second

var ignoreSIGPIPEOnce sync.Once

func ignoreSIGPIPE() {
	ignoreSIGPIPEOnce.Do(func() {
		signal.Ignore(syscall.SIGPIPE)
	})
}

// Channel is one published endpoint: a rendezvous FIFO, an info
// descriptor, an optional control FIFO, and a bounded table of attached
// client data FIFOs.
type Channel struct {
	mgr  *Manager
	log  *slog.Logger
	name string
	dir  string
	opts options

	lifecycleMu sync.Mutex
	running     bool
	requestFile *os.File
	ctrl        *control.Server
	cancel      context.CancelFunc
	group       *errgroup.Group

	slotSem *semaphore.Weighted
	claimMu sync.RWMutex
	clients []*clientSlot

	videoMu          sync.Mutex
	hasHeader        bool
	cachedHeader     []byte
}

func newChannel(mgr *Manager, name, dir string, o options) *Channel {
	return &Channel{
		mgr:     mgr,
		log:     slog.Default().With("component", "mpa-server", "channel", name),
		name:    name,
		dir:     dir,
		opts:    o,
		slotSem: semaphore.NewWeighted(MaxClientsPerChannel),
		clients: make([]*clientSlot, MaxClientsPerChannel),
	}
}

// Name returns the channel's endpoint name.
func (ch *Channel) Name() string { return ch.name }

// Dir returns the channel's expanded endpoint directory.
func (ch *Channel) Dir() string { return ch.dir }

func clampCapacity(requested int) int {
	switch {
	case requested <= 0:
		return fifoio.DefaultPipeCapacity
	case requested < fifoio.MinPipeCapacity:
		return fifoio.DefaultPipeCapacity
	case requested > fifoio.MaxPipeCapacity:
		return fifoio.MaxPipeCapacity
	default:
		return requested
	}
}

// open creates the endpoint directory and rendezvous FIFO, advertises
// the descriptor, optionally starts the control reader, and spawns the
// background rendezvous-accept loop.
func (ch *Channel) open(payloadType, serverName string) error {
	ch.lifecycleMu.Lock()
	defer ch.lifecycleMu.Unlock()

	ignoreSIGPIPE()

	if err := endpoint.CreateDirs(ch.dir); err != nil {
		return err
	}

	capacity := clampCapacity(ch.opts.capacity)
	desc := endpoint.Descriptor{
		Name:              ch.name,
		Location:          ch.dir,
		Type:              payloadType,
		ServerName:        serverName,
		SizeBytes:         capacity,
		ServerPID:         os.Getpid(),
		AvailableCommands: ch.opts.availableCommands,
	}
	if err := endpoint.WriteDescriptor(ch.dir, desc, nil); err != nil {
		return err
	}
	if ch.opts.legacyInfoFIFO {
		// Legacy clients rendezvous on the descriptor by opening a FIFO
		// node rather than reading the plain info file. We only need the
		// node to exist for their open() to succeed; the document itself
		// already lives in the regular info file above.
		if err := fifoio.Create(ch.dir+"info_fifo", 0o666); err != nil {
			ch.log.Warn("failed to create legacy info FIFO", "error", err)
		}
	}

	if err := fifoio.Create(ch.dir+endpoint.RequestFile, 0o666); err != nil {
		return err
	}
	reqFile, err := os.OpenFile(ch.dir+endpoint.RequestFile, os.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return err
	}
	ch.requestFile = reqFile

	if ch.opts.controlPipe {
		ctrl, err := control.Start(ch.dir, 0, 0, ch.onControl, ch.log)
		if err != nil {
			ch.log.Warn("failed to start control channel", "error", err)
		} else {
			ch.ctrl = ctrl
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	ch.cancel = cancel
	ch.group = g

	g.Go(func() error {
		ch.rendezvousLoop(ctx)
		return nil
	})

	ch.running = true
	return nil
}

func (ch *Channel) onControl(data []byte) {
	ch.log.Debug("control command received", "data", string(data))
}

// rendezvousLoop reads null-terminated client handles off the request
// FIFO and attaches (or reattaches) each one.
func (ch *Channel) rendezvousLoop(ctx context.Context) {
	reader := fifoio.NewCancelReader(ch.requestFile)
	buf := make([]byte, 256)
	for {
		n, err := reader.Read(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			ch.log.Debug("rendezvous read error", "error", err)
			continue
		}
		if n == 0 {
			continue
		}
		handle := sanitizeHandle(buf[:n])
		if handle == "" {
			continue
		}
		ch.addClient(handle)
	}
}

func sanitizeHandle(b []byte) string {
	for i, c := range b {
		if c < 0x20 {
			return string(b[:i])
		}
	}
	return string(b)
}

// addClient reconnects an existing handle or claims a free slot for a
// new one, then attaches its data FIFO.
func (ch *Channel) addClient(handle string) {
	ch.claimMu.Lock()
	for _, c := range ch.clients {
		if c != nil && c.handle == handle {
			ch.claimMu.Unlock()
			ch.connectClient(c)
			return
		}
	}

	idx := -1
	for i, c := range ch.clients {
		if c == nil {
			idx = i
			break
		}
	}
	if idx == -1 {
		ch.claimMu.Unlock()
		ch.log.Warn("no free client slot for new handle", "handle", handle)
		return
	}
	if !ch.slotSem.TryAcquire(1) {
		ch.claimMu.Unlock()
		ch.log.Warn("client table already at capacity", "handle", handle)
		return
	}
	slot := &clientSlot{handle: handle}
	ch.clients[idx] = slot
	ch.claimMu.Unlock()

	ch.connectClient(slot)
}

// connectClient opens (or reopens) slot's data FIFO, negotiates its
// kernel buffer capacity, and replays any cached stream header before
// marking the slot steady-state connected.
func (ch *Channel) connectClient(slot *clientSlot) {
	path := ch.dir + slot.handle
	if err := fifoio.Create(path, 0o666); err != nil {
		ch.log.Warn("failed to create client FIFO", "handle", slot.handle, "error", err)
		return
	}
	f, err := fifoio.OpenNonblockRetry(path, os.O_WRONLY|unix.O_NONBLOCK, 500)
	if err != nil {
		ch.log.Warn("failed to open client FIFO for writing", "handle", slot.handle, "error", err)
		return
	}

	capacity := clampCapacity(ch.opts.capacity)
	got, err := fifoio.SetCapacity(f, capacity)
	if err != nil {
		ch.log.Warn("failed to set client FIFO capacity", "handle", slot.handle, "error", err)
		got = capacity
	}

	slot.ioMu.Lock()
	slot.path = path
	slot.file = f
	slot.capacity = got
	slot.state = slotInitialized
	slot.acceptingP = false
	slot.ioMu.Unlock()

	if ch.opts.onConnect != nil {
		ch.opts.onConnect(slot.handle)
	}

	ch.videoMu.Lock()
	header := ch.cachedHeader
	hasHeader := ch.hasHeader
	ch.videoMu.Unlock()
	if hasHeader {
		ch.writeToClient(slot, header)
	}

	slot.ioMu.Lock()
	if slot.state == slotInitialized {
		slot.state = slotConnected
	}
	slot.ioMu.Unlock()
}

// disconnectClientLocked closes and unlinks slot's data FIFO. Callers
// must hold slot.ioMu, and must call notifyDisconnect after releasing it
// if this returns true.
func (ch *Channel) disconnectClientLocked(slot *clientSlot) bool {
	wasLive := slot.state != slotDisconnected && slot.state != slotUnused
	if slot.file != nil {
		slot.file.Close()
		fifoio.Remove(slot.path)
		slot.file = nil
	}
	slot.state = slotDisconnected
	slot.acceptingP = false
	return wasLive
}

// notifyDisconnect invokes the channel's disconnect callback, if any,
// outside the slot's ioMu. Callers on the publish path still hold
// claimMu for reading.
func (ch *Channel) notifyDisconnect(slot *clientSlot) {
	if ch.opts.onDisconnect != nil {
		ch.opts.onDisconnect(slot.handle)
	}
}

// Close tears the channel down: cancels the background goroutines,
// joins them with a bounded deadline, closes every client and control
// FIFO, and removes the endpoint directory.
func (ch *Channel) Close() error {
	ch.lifecycleMu.Lock()
	if !ch.running {
		ch.lifecycleMu.Unlock()
		return nil
	}
	ch.running = false
	ch.cancel()
	group := ch.group
	ch.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		group.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(JoinDeadline):
		ch.log.Warn("channel background tasks did not exit within the join deadline")
	}

	if ch.requestFile != nil {
		ch.requestFile.Close()
	}
	if ch.ctrl != nil {
		ch.ctrl.Stop(ch.dir)
	}

	ch.claimMu.Lock()
	clients := ch.clients
	ch.clients = nil
	ch.claimMu.Unlock()

	for _, c := range clients {
		if c == nil {
			continue
		}
		c.ioMu.Lock()
		wasLive := ch.disconnectClientLocked(c)
		c.ioMu.Unlock()
		if wasLive {
			ch.notifyDisconnect(c)
		}
	}

	endpoint.RemoveAll(ch.dir)

	if ch.mgr != nil {
		ch.mgr.remove(ch)
	}
	return nil
}
