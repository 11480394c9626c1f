package runtime

import (
	"dm-lab/contract"
	"sync"
)

type Set map[string]struct{}

// Registry maps channels to the live connections subscribed to them.
// A connection owns exactly one sink and may sit in several channels.
type Registry struct {
	mu          sync.RWMutex
	Sessions    map[string]contract.EventSink // map connection -> Sink
	Channels    map[string]Set                // map channel -> connections
	Memberships map[string]Set                // map connection -> channels
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:    make(map[string]contract.EventSink),
		Channels:    make(map[string]Set),
		Memberships: make(map[string]Set),
	}
}

// GetSinksForChannels returns a snapshot of the sinks listening on any of the channels.
// A connection present in several of them appears once, so it is never notified twice.
// The snapshot is detached from the registry: callers iterate it without holding the lock,
// and connections joining or leaving meanwhile cannot invalidate it.
func (r *Registry) GetSinksForChannels(channels ...string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(Set)
	var activeSinks []contract.EventSink
	for _, channel := range channels {
		for connectionID := range r.Channels[channel] {
			if _, ok := seen[connectionID]; ok {
				continue
			}
			seen[connectionID] = struct{}{}
			if sink, exists := r.Sessions[connectionID]; exists {
				activeSinks = append(activeSinks, sink)
			}
		}
	}
	return activeSinks
}

// Subscribe registers the connection's sink and adds it to channel.
// The channel set is created on the fly.
func (r *Registry) Subscribe(connectionID, channel string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[connectionID] = sink

	if _, ok := r.Channels[channel]; !ok {
		r.Channels[channel] = make(Set)
	}
	r.Channels[channel][connectionID] = struct{}{}

	if _, ok := r.Memberships[connectionID]; !ok {
		r.Memberships[connectionID] = make(Set)
	}
	r.Memberships[connectionID][channel] = struct{}{}
}

// Unsubscribe removes the connection from a single channel. The connection itself stays registered.
func (r *Registry) Unsubscribe(connectionID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leave(connectionID, channel)
	if channels, ok := r.Memberships[connectionID]; ok {
		delete(channels, channel)
	}
}

// Disconnect forgets the connection and every channel membership it held.
// Empty channels are removed to prevent the maps from growing forever.
func (r *Registry) Disconnect(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for channel := range r.Memberships[connectionID] {
		r.leave(connectionID, channel)
	}
	delete(r.Memberships, connectionID)
	delete(r.Sessions, connectionID)
}

func (r *Registry) Stats() contract.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return contract.RegistryStats{Connections: len(r.Sessions), Channels: len(r.Channels)}
}

func (r *Registry) leave(connectionID, channel string) {
	if members, ok := r.Channels[channel]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(r.Channels, channel)
		}
	}
}
