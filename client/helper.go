package client

import (
	"context"
	"errors"

	"github.com/fifomesh/mpa/frame"
	"github.com/fifomesh/mpa/internal/fifoio"
)

// payloadReadTries bounds how many separate reads the structured helper
// loops spend accumulating one record's payload. A server normally
// writes a frame's payload in one or two calls (e.g. a stereo pair's
// left then right eye, or a YUV frame's Y plane then UV plane), so this
// is a generous margin rather than a tight budget.
const payloadReadTries = 10

// helperLoop reads records off the client's data FIFO and dispatches
// them to the configured callback until the client is paused or closed,
// or (unless auto-reconnect is disabled) reattaches after a read failure
// and keeps going. Camera and point cloud helpers read a fixed-size
// metadata record first, then the payload it declares; the simple
// helper treats each read as a complete record on its own.
func (c *Client) helperLoop(ctx context.Context) {
	switch c.opts.mode {
	case HelperCamera:
		c.structuredLoop(ctx, frame.CameraMetadataSize, c.decodeCameraRecord, c.dispatchCameraRecord)
	case HelperPointCloud:
		c.structuredLoop(ctx, frame.PointCloudMetadataSize, c.decodePointCloudRecord, c.dispatchPointCloudRecord)
	default:
		c.simpleLoop(ctx)
	}
}

// simpleLoop treats each Read result as one complete record, matching
// the raw passthrough helper's contract: no framing is imposed on the
// bytes a caller chose to publish with Publish.
func (c *Client) simpleLoop(ctx context.Context) {
	buf := make([]byte, c.opts.readBufSize)
	for {
		reader := c.currentReader()
		if reader == nil {
			return
		}
		n, err := reader.Read(ctx, buf)
		if err != nil {
			if !c.handleReadError(ctx, err) {
				return
			}
			continue
		}
		if n == 0 {
			continue
		}
		if c.opts.simpleCB != nil {
			c.opts.simpleCB(append([]byte(nil), buf[:n]...))
		}
	}
}

// structuredLoop implements the two-phase record protocol shared by the
// camera and point cloud helpers: a fixed-size metadata read, then a
// bounded-retry accumulation of the payload length the metadata
// declares. A record whose metadata fails to decode, or that declares
// an unreasonable payload size, flushes the pipe and resynchronizes on
// the next iteration rather than letting the next read misinterpret
// stale bytes as a fresh metadata record.
func (c *Client) structuredLoop(ctx context.Context, metaSize int, decode func([]byte) (int, bool), dispatch func(meta, payload []byte)) {
	for {
		reader := c.currentReader()
		if reader == nil {
			return
		}

		metaBuf := make([]byte, metaSize)
		n, err := reader.Read(ctx, metaBuf)
		if err != nil {
			if !c.handleReadError(ctx, err) {
				return
			}
			continue
		}
		if n == 0 {
			continue
		}

		payloadSize, ok := decode(metaBuf[:n])
		if !ok {
			if c.opts.debugPrints {
				c.log.Debug("dropping malformed record, resyncing")
			}
			c.flush()
			continue
		}

		payload := make([]byte, payloadSize)
		total := 0
		tries := 0
		for tries < payloadReadTries && total < payloadSize {
			reader := c.currentReader()
			if reader == nil {
				return
			}
			n, err := reader.Read(ctx, payload[total:])
			if err != nil {
				if !c.handleReadError(ctx, err) {
					return
				}
				break
			}
			total += n
			tries++
		}
		if total != payloadSize {
			if c.opts.debugPrints {
				c.log.Debug("short payload read, dropping record",
					"read", total, "want", payloadSize, "tries", tries)
			}
			continue
		}

		dispatch(metaBuf[:n], payload)
	}
}

func (c *Client) decodeCameraRecord(meta []byte) (int, bool) {
	m, err := frame.DecodeCameraMetadata(meta)
	if err != nil || !frame.ValidateSize(m) {
		if err != nil && c.opts.debugPrints {
			c.log.Debug("bad camera metadata", "error", err)
		}
		return 0, false
	}
	return int(m.SizeBytes), true
}

func (c *Client) dispatchCameraRecord(meta, payload []byte) {
	if c.opts.cameraCB == nil {
		return
	}
	m, err := frame.DecodeCameraMetadata(meta)
	if err != nil {
		return
	}
	c.opts.cameraCB(m, payload)
}

func (c *Client) decodePointCloudRecord(meta []byte) (int, bool) {
	m, err := frame.DecodePointCloudMetadata(meta)
	if err != nil {
		if c.opts.debugPrints {
			c.log.Debug("bad point cloud metadata", "error", err)
		}
		return 0, false
	}
	size, err := m.PayloadSize()
	if err != nil {
		if c.opts.debugPrints {
			c.log.Debug("bad point cloud format", "error", err)
		}
		return 0, false
	}
	return size, true
}

func (c *Client) dispatchPointCloudRecord(meta, payload []byte) {
	if c.opts.pointCloudCB == nil {
		return
	}
	m, err := frame.DecodePointCloudMetadata(meta)
	if err != nil {
		return
	}
	c.opts.pointCloudCB(m, payload)
}

// currentReader returns the client's reader under lock, or nil once the
// client has been paused or closed.
func (c *Client) currentReader() *fifoio.CancelReader {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reader
}

// handleReadError reacts to a read failure the way every helper mode
// must: give up quietly on cancellation, give up loudly (by returning)
// when auto-reconnect is disabled, and otherwise attempt one reconnect
// and report whether the helper loop should keep going.
func (c *Client) handleReadError(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if c.opts.debugPrints {
		c.log.Debug("helper read error", "error", err)
	}
	if c.opts.disableAutoReconnect {
		return false
	}
	return c.reconnect(ctx)
}

// flush drains whatever is currently queued in the data FIFO. It is the
// client's resync mechanism after a malformed or oversized metadata
// record: without it, bytes left behind in the pipe would be misread as
// the start of the next record. A record whose payload arrives short is
// dropped without a flush.
func (c *Client) flush() {
	c.mu.Lock()
	f := c.file
	c.mu.Unlock()
	if f == nil {
		return
	}
	queued, err := fifoio.QueuedBytes(f)
	if err != nil || queued == 0 {
		return
	}
	discard := make([]byte, queued)
	_, _ = f.Read(discard)
}

// reconnect re-runs the rendezvous handshake in place, reusing the same
// base handle, after the data FIFO has gone bad. It reports whether the
// client is still usable afterward.
func (c *Client) reconnect(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || ctx.Err() != nil {
		return false
	}
	if c.file != nil {
		c.file.Close()
		c.file = nil
	}

	f, handle, err := rendezvous(c.dir, c.baseHandle, c.opts.maxNameAttempts, c.log)
	if err != nil {
		c.log.Warn("reconnect failed", "error", err)
		return false
	}
	c.handle = handle
	c.file = f
	c.reader = fifoio.NewCancelReader(f)
	c.reconnects++
	return true
}
