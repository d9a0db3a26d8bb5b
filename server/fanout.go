package server

import (
	"github.com/fifomesh/mpa/frame"
	"github.com/fifomesh/mpa/internal/fifoio"
)

// Publish fans a raw record out to every attached client, regardless of
// payload shape. Simple, camera, and point-cloud streams all use this
// path directly; encoded-video streams use PublishVideoFrame instead so
// I/P-frame gating and header caching apply.
func (ch *Channel) Publish(record []byte) {
	ch.claimMu.RLock()
	defer ch.claimMu.RUnlock()
	for _, c := range ch.clients {
		if c == nil {
			continue
		}
		ch.writeToClient(c, record)
	}
}

// PublishCameraFrame publishes a camera metadata+pixel record built by
// the caller (see frame.EncodeCameraMetadata) to every attached client.
func (ch *Channel) PublishCameraFrame(record []byte) { ch.Publish(record) }

// PublishPointCloudFrame publishes a point-cloud metadata+point-buffer
// record to every attached client.
func (ch *Channel) PublishPointCloudFrame(record []byte) { ch.Publish(record) }

// PublishStereoFrame publishes a stereo camera pair as a single record:
// metadata followed by the left then right eye's pixel payload. Sending
// all three segments as one write() means the per-client back-pressure
// check (and the write itself) is atomic across the whole triple — a
// client either gets the complete stereo pair or none of it.
func (ch *Channel) PublishStereoFrame(meta, left, right []byte) {
	record := make([]byte, 0, len(meta)+len(left)+len(right))
	record = append(record, meta...)
	record = append(record, left...)
	record = append(record, right...)
	ch.Publish(record)
}

// PublishVideoFrame classifies an encoded-video payload and fans it out
// with I/P-frame gating: header (parameter set) records are cached and
// sent to every client (marking them not yet ready for P-frames), I
// frames are sent to every client and mark successful recipients ready,
// and P frames are sent only to clients already marked ready.
func (ch *Channel) PublishVideoFrame(codec frame.Codec, record []byte, payload []byte) {
	kind, err := frame.ClassifyFrame(codec, payload)
	if err != nil {
		ch.log.Warn("could not classify video frame", "error", err)
		return
	}

	switch kind {
	case frame.KindHeader:
		ch.videoMu.Lock()
		ch.cachedHeader = append([]byte(nil), record...)
		ch.hasHeader = true
		ch.videoMu.Unlock()
		ch.fanoutAndGate(record, true, false)
	case frame.KindI:
		ch.fanoutAndGate(record, false, true)
	case frame.KindP:
		ch.fanoutAcceptingOnly(record)
	default:
		ch.log.Warn("skipping frame of unsupported kind", "kind", kind.String())
	}
}

// fanoutAndGate fans record out to every client and sets each client's
// accepting-P flag to gateValue. With alwaysGate (header records) the
// flag is set whether or not the record was delivered (false is always a
// safe state to fall back to); otherwise (I-frame records) it is set only
// on successful delivery, so a client that never received the I-frame is
// not later handed P-frames it cannot decode.
func (ch *Channel) fanoutAndGate(record []byte, alwaysGate bool, gateValue bool) {
	ch.claimMu.RLock()
	defer ch.claimMu.RUnlock()
	for _, c := range ch.clients {
		if c == nil {
			continue
		}
		delivered := ch.writeToClient(c, record)
		if alwaysGate {
			c.setAccepting(gateValue)
		} else if delivered {
			c.setAccepting(gateValue)
		}
	}
}

func (ch *Channel) fanoutAcceptingOnly(record []byte) {
	ch.claimMu.RLock()
	defer ch.claimMu.RUnlock()
	for _, c := range ch.clients {
		if c == nil {
			continue
		}
		if _, accepting := c.snapshot(); !accepting {
			continue
		}
		ch.writeToClient(c, record)
	}
}

// writeToClient delivers data to a single client, applying back-pressure
// (drop, no disconnect) when the record would not fit in the client's
// kernel pipe buffer without blocking, and disconnecting the client on
// any write error (the reader is gone or the pipe is broken).
func (ch *Channel) writeToClient(slot *clientSlot, data []byte) bool {
	slot.ioMu.Lock()

	if slot.file == nil || slot.state == slotDisconnected || slot.state == slotUnused {
		slot.ioMu.Unlock()
		return false
	}

	queued, err := fifoio.QueuedBytes(slot.file)
	if err != nil {
		wasLive := ch.disconnectClientLocked(slot)
		slot.ioMu.Unlock()
		if wasLive {
			ch.notifyDisconnect(slot)
		}
		return false
	}
	if queued+len(data) > slot.capacity {
		slot.bytesDropped += uint64(len(data))
		if ch.opts.debugPrints {
			ch.log.Debug("dropping record for client, would exceed pipe capacity",
				"handle", slot.handle, "queued", queued, "record", len(data))
		}
		slot.ioMu.Unlock()
		return false
	}

	n, err := slot.file.Write(data)
	if err != nil {
		wasLive := ch.disconnectClientLocked(slot)
		slot.ioMu.Unlock()
		if wasLive {
			ch.notifyDisconnect(slot)
		}
		return false
	}
	if n != len(data) {
		// A short write without an error is back-pressure, not a fatal
		// condition for the client: the kernel accepted as much as fit.
		slot.bytesDropped += uint64(len(data))
		slot.ioMu.Unlock()
		return false
	}

	slot.bytesWritten += uint64(n)
	if slot.state == slotInitialized {
		slot.state = slotConnected
	}
	slot.ioMu.Unlock()
	return true
}
