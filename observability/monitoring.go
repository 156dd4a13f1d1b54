// Package observability aggregates runtime counters for logging and the
// stats endpoint. Counters are atomic so any connection goroutine can bump
// them without coordination.
package observability

import "sync/atomic"

type Metrics struct {
	ConnectionsOpened    atomic.Uint64
	ConnectionsClosed    atomic.Uint64
	MessagesRouted       atomic.Uint64
	MessagesDropped      atomic.Uint64
	DeliveryFailures     atomic.Uint64
	PresenceBroadcasts   atomic.Uint64
	LivenessTerminations atomic.Uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrConnectionsOpened()    { m.ConnectionsOpened.Add(1) }
func (m *Metrics) IncrConnectionsClosed()    { m.ConnectionsClosed.Add(1) }
func (m *Metrics) IncrMessagesRouted()       { m.MessagesRouted.Add(1) }
func (m *Metrics) IncrMessagesDropped()      { m.MessagesDropped.Add(1) }
func (m *Metrics) IncrDeliveryFailures()     { m.DeliveryFailures.Add(1) }
func (m *Metrics) IncrPresenceBroadcasts()   { m.PresenceBroadcasts.Add(1) }
func (m *Metrics) IncrLivenessTerminations() { m.LivenessTerminations.Add(1) }

// Snapshot returns a point-in-time copy of every counter, keyed for JSON.
func (m *Metrics) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"connections_opened":    m.ConnectionsOpened.Load(),
		"connections_closed":    m.ConnectionsClosed.Load(),
		"messages_routed":       m.MessagesRouted.Load(),
		"messages_dropped":      m.MessagesDropped.Load(),
		"delivery_failures":     m.DeliveryFailures.Load(),
		"presence_broadcasts":   m.PresenceBroadcasts.Load(),
		"liveness_terminations": m.LivenessTerminations.Load(),
	}
}
