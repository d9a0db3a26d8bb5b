package server

import (
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/fifomesh/mpa/endpoint"
)

// MaxChannels bounds the number of endpoints a single Manager will hold
// open at once, matching the fixed-size channel table spec.md describes.
const MaxChannels = 16

// Manager owns a bounded set of published endpoints ("channels") rooted
// under a common base directory. Callers that only ever publish one
// endpoint can still use a Manager; it costs one semaphore and one map
// entry.
type Manager struct {
	base string

	mu       sync.Mutex
	sem      *semaphore.Weighted
	byDir    map[string]*Channel
}

// NewManager creates a Manager whose bare (non-absolute) endpoint names
// resolve under base. An empty base defaults to endpoint.DefaultBase.
func NewManager(base string) *Manager {
	if base == "" {
		base = endpoint.DefaultBase
	}
	return &Manager{
		base:  base,
		sem:   semaphore.NewWeighted(MaxChannels),
		byDir: make(map[string]*Channel),
	}
}

// Create publishes a new endpoint named name, serving payloadType
// records under serverName. It fails with errcode.ChannelOOB if the
// manager already holds MaxChannels open channels, or errcode.InvalidArg
// if an endpoint at the resolved directory is already managed.
func (m *Manager) Create(name, payloadType, serverName string, opts ...Option) (*Channel, error) {
	if err := endpoint.ValidateName(name, true); err != nil {
		return nil, err
	}
	dir, err := endpoint.Expand(m.base, name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, exists := m.byDir[dir]; exists {
		m.mu.Unlock()
		return nil, newInvalidArg("endpoint %q is already published by this manager", dir)
	}
	if !m.sem.TryAcquire(1) {
		m.mu.Unlock()
		return nil, newChannelOOB("manager already holds the maximum of %d channels", MaxChannels)
	}
	m.mu.Unlock()

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ch := newChannel(m, name, dir, o)
	if err := ch.open(payloadType, serverName); err != nil {
		m.sem.Release(1)
		return nil, err
	}

	m.mu.Lock()
	m.byDir[dir] = ch
	m.mu.Unlock()
	return ch, nil
}

// remove drops ch from the manager's bookkeeping and frees its channel
// slot. Called by Channel.Close; safe to call more than once.
func (m *Manager) remove(ch *Channel) {
	m.mu.Lock()
	if _, ok := m.byDir[ch.dir]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.byDir, ch.dir)
	m.mu.Unlock()
	m.sem.Release(1)
}

// CloseAll closes every channel the manager currently holds open.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	channels := make([]*Channel, 0, len(m.byDir))
	for _, ch := range m.byDir {
		channels = append(channels, ch)
	}
	m.mu.Unlock()

	for _, ch := range channels {
		ch.Close()
	}
}
