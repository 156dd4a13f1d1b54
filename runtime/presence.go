package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"encoding/json"
	"log/slog"

	"github.com/samber/lo"
)

// Broadcaster pushes the "who is online" view to every live connection
// whenever membership changes. Presence is advisory: delivery is best
// effort per connection and a lost push is corrected by the next
// triggering event, so there is no acknowledgement or retry.
type Broadcaster struct {
	registry contract.IRegistry
	metrics  *observability.Metrics
	log      *slog.Logger
}

func NewBroadcaster(registry contract.IRegistry, metrics *observability.Metrics, log *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, metrics: metrics, log: log}
}

// Broadcast projects one registry snapshot to a presence frame and pushes
// it to every connection of that same snapshot. A send failure to one
// connection never aborts delivery to the others.
func (b *Broadcaster) Broadcast() {
	peers := b.registry.Snapshot()

	snapshot := domain.PresenceSnapshot{
		Online: lo.UniqBy(
			lo.Map(peers, func(peer contract.Peer, _ int) domain.OnlineUser {
				identity := peer.Identity()
				return domain.OnlineUser{UserID: identity.ID, Username: identity.Username}
			}),
			func(user domain.OnlineUser) string { return user.UserID },
		),
	}

	frame, err := json.Marshal(snapshot)
	if err != nil {
		b.log.Error("Presence snapshot marshal failed", "error", err)
		return
	}

	for _, peer := range peers {
		if err := peer.Push(frame); err != nil {
			b.metrics.IncrDeliveryFailures()
			b.log.Warn("Presence push failed",
				"conn_id", peer.ID(),
				"user_id", peer.Identity().ID,
				"error", err)
		}
	}
	b.metrics.IncrPresenceBroadcasts()
}
