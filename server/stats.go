package server

// ClientStats is a point-in-time snapshot of one attached client slot.
type ClientStats struct {
	Handle       string
	State        string
	Capacity     int
	AcceptingP   bool
	BytesWritten uint64
	BytesDropped uint64
}

// ChannelStats is a point-in-time snapshot of a Channel's client table.
type ChannelStats struct {
	Name      string
	Connected int
	Clients   []ClientStats
}

// Stats returns a snapshot of the channel's currently claimed client
// slots, for diagnostics and tests.
func (ch *Channel) Stats() ChannelStats {
	ch.claimMu.RLock()
	defer ch.claimMu.RUnlock()

	out := ChannelStats{Name: ch.name}
	for _, c := range ch.clients {
		if c == nil {
			continue
		}
		c.ioMu.Lock()
		stats := ClientStats{
			Handle:       c.handle,
			State:        c.state.String(),
			Capacity:     c.capacity,
			AcceptingP:   c.acceptingP,
			BytesWritten: c.bytesWritten,
			BytesDropped: c.bytesDropped,
		}
		c.ioMu.Unlock()
		out.Clients = append(out.Clients, stats)
		if stats.State == slotConnected.String() {
			out.Connected++
		}
	}
	return out
}

// ChannelStats aggregated across every channel a Manager holds open.
func (m *Manager) Stats() []ChannelStats {
	m.mu.Lock()
	channels := make([]*Channel, 0, len(m.byDir))
	for _, ch := range m.byDir {
		channels = append(channels, ch)
	}
	m.mu.Unlock()

	stats := make([]ChannelStats, 0, len(channels))
	for _, ch := range channels {
		stats = append(stats, ch.Stats())
	}
	return stats
}
