package runtime

import (
	"chat-relay/domain"
	"chat-relay/observability"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func lastPresence(t *testing.T, peer *fakePeer) domain.PresenceSnapshot {
	t.Helper()
	frames := peer.pushed()
	require.NotEmpty(t, frames)

	var snapshot domain.PresenceSnapshot
	require.NoError(t, json.Unmarshal(frames[len(frames)-1], &snapshot))
	return snapshot
}

func onlineUsernames(snapshot domain.PresenceSnapshot) []string {
	return lo.Map(snapshot.Online, func(user domain.OnlineUser, _ int) string {
		return user.Username
	})
}

func TestBroadcaster_Every_Connection_Gets_The_Full_Snapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, observability.NewMetrics(), slog.Default())

	// Given three connected identities
	peers := []*fakePeer{
		newFakePeer(domain.Identity{ID: uuid.NewString(), Username: "alice"}),
		newFakePeer(domain.Identity{ID: uuid.NewString(), Username: "bob"}),
		newFakePeer(domain.Identity{ID: uuid.NewString(), Username: "clara"}),
	}
	for _, peer := range peers {
		registry.Register(peer.ID(), peer)
	}

	// When presence is broadcast
	broadcaster.Broadcast()

	// Then each connection receives exactly {alice, bob, clara}
	for _, peer := range peers {
		snapshot := lastPresence(t, peer)
		req.ElementsMatch([]string{"alice", "bob", "clara"}, onlineUsernames(snapshot))
	}
}

func TestBroadcaster_Reflects_Departures(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, observability.NewMetrics(), slog.Default())

	alice := newFakePeer(domain.Identity{ID: uuid.NewString(), Username: "alice"})
	bob := newFakePeer(domain.Identity{ID: uuid.NewString(), Username: "bob"})
	registry.Register(alice.ID(), alice)
	registry.Register(bob.ID(), bob)
	broadcaster.Broadcast()

	// When bob disconnects and presence is rebroadcast
	registry.Unregister(bob.ID())
	broadcaster.Broadcast()

	// Then alice sees only herself
	req.ElementsMatch([]string{"alice"}, onlineUsernames(lastPresence(t, alice)))
}

func TestBroadcaster_Deduplicates_Multi_Device_Identities(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, observability.NewMetrics(), slog.Default())

	// Given alice connected from two devices
	alice := domain.Identity{ID: uuid.NewString(), Username: "alice"}
	first := newFakePeer(alice)
	second := newFakePeer(alice)
	registry.Register(first.ID(), first)
	registry.Register(second.ID(), second)

	broadcaster.Broadcast()

	// Then the snapshot lists her once but both devices receive it
	req.Len(lastPresence(t, first).Online, 1)
	req.Len(lastPresence(t, second).Online, 1)
}

func TestBroadcaster_One_Failing_Connection_Does_Not_Abort_The_Loop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	metrics := observability.NewMetrics()
	broadcaster := NewBroadcaster(registry, metrics, slog.Default())

	broken := newFakePeer(domain.Identity{ID: uuid.NewString(), Username: "broken"})
	broken.failPush = true
	healthy := newFakePeer(domain.Identity{ID: uuid.NewString(), Username: "healthy"})
	registry.Register(broken.ID(), broken)
	registry.Register(healthy.ID(), healthy)

	// When a push fails mid-broadcast
	broadcaster.Broadcast()

	// Then the healthy connection still got the snapshot and the failure
	// was only counted
	req.NotEmpty(healthy.pushed())
	req.Equal(uint64(1), metrics.DeliveryFailures.Load())
}
