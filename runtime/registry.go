// Package runtime holds the realtime connection subsystem: the registry of
// live connections, per-connection liveness, presence fan-out, message
// routing, and the session lifecycle tying them together.
package runtime

import (
	"chat-relay/contract"
	"sync"
)

// Registry is the concurrency-safe set of live, authenticated connections.
// A connection is present here if and only if it is authenticated and not
// terminated. Multiple connections may share one identity (multi-device);
// uniqueness is per connection id.
type Registry struct {
	mu    sync.RWMutex
	peers map[string]contract.Peer
}

func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]contract.Peer)}
}

// Register adds a connection. Registering an id that is already present is
// a programmer error upstream; the existing entry is kept so a snapshot
// never observes a half-replaced connection.
func (r *Registry) Register(connID string, peer contract.Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.peers[connID]; ok {
		return
	}
	r.peers[connID] = peer
}

// Unregister removes a connection. Idempotent: removing an absent id is a
// silent no-op, which absorbs double-termination races (explicit close and
// liveness timeout firing near-simultaneously).
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, connID)
}

// Snapshot returns a consistent point-in-time view of every live
// connection, for presence computation and recipient lookup.
func (r *Registry) Snapshot() []contract.Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]contract.Peer, 0, len(r.peers))
	for _, peer := range r.peers {
		peers = append(peers, peer)
	}
	return peers
}

// Find returns all live connections for a given identity: zero, one, or
// many.
func (r *Registry) Find(identityID string) []contract.Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []contract.Peer
	for _, peer := range r.peers {
		if peer.Identity().ID == identityID {
			matches = append(matches, peer)
		}
	}
	return matches
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}
