package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakePeer is a hand-rolled connection double shared by the runtime tests.
type fakePeer struct {
	id       string
	identity domain.Identity

	mu       sync.Mutex
	frames   [][]byte
	failPush bool
}

func newFakePeer(identity domain.Identity) *fakePeer {
	return &fakePeer{id: uuid.NewString(), identity: identity}
}

func (p *fakePeer) ID() string                { return p.id }
func (p *fakePeer) Identity() domain.Identity { return p.identity }

func (p *fakePeer) Push(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPush {
		return errors.ErrSlowConsumer
	}
	p.frames = append(p.frames, frame)
	return nil
}

func (p *fakePeer) pushed() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.frames...)
}

func TestRegistry_Register_And_Find(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := domain.Identity{ID: uuid.NewString(), Username: "alice"}

	// Given an empty registry
	req.Empty(registry.Snapshot())
	req.Zero(registry.Len())

	// When one connection registers
	peer := newFakePeer(alice)
	registry.Register(peer.ID(), peer)

	// Then it is visible in snapshots and identity lookups
	req.Len(registry.Snapshot(), 1)
	req.Equal(1, registry.Len())
	req.Len(registry.Find(alice.ID), 1)
	req.Empty(registry.Find("someone-else"))
}

func TestRegistry_Multiple_Connections_Same_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := domain.Identity{ID: uuid.NewString(), Username: "alice"}

	// Given the same identity connected twice (multi-device)
	first := newFakePeer(alice)
	second := newFakePeer(alice)
	registry.Register(first.ID(), first)
	registry.Register(second.ID(), second)

	// Then both connections are live and both resolve for the identity
	req.Len(registry.Snapshot(), 2)
	req.Len(registry.Find(alice.ID), 2)
}

func TestRegistry_Unregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := domain.Identity{ID: uuid.NewString(), Username: "alice"}
	peer := newFakePeer(alice)
	registry.Register(peer.ID(), peer)

	// When the connection is removed twice (double-termination race)
	registry.Unregister(peer.ID())
	registry.Unregister(peer.ID())

	// Then the registry holds no dangling reference
	req.Empty(registry.Snapshot())
	req.Empty(registry.Find(alice.ID))
}

func TestRegistry_Duplicate_Register_Keeps_Existing(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := domain.Identity{ID: uuid.NewString(), Username: "alice"}
	bob := domain.Identity{ID: uuid.NewString(), Username: "bob"}

	peer := newFakePeer(alice)
	registry.Register(peer.ID(), peer)

	// When another peer reuses the same connection id
	intruder := newFakePeer(bob)
	registry.Register(peer.ID(), intruder)

	// Then the original entry is preserved
	snapshot := registry.Snapshot()
	req.Len(snapshot, 1)
	req.Equal(alice.ID, snapshot[0].Identity().ID)
}

func TestRegistry_Concurrent_Mutations(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When many goroutines register, read, and unregister at once
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			peer := newFakePeer(domain.Identity{ID: uuid.NewString()})
			registry.Register(peer.ID(), peer)
			registry.Snapshot()
			registry.Find(peer.Identity().ID)
			registry.Unregister(peer.ID())
		}()
	}
	wg.Wait()

	// Then every connection was reclaimed and no state leaked
	req.Zero(registry.Len())
}
