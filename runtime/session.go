package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionConfig carries the per-connection tunables.
type SessionConfig struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	WriteTimeout time.Duration
	MaxFrameSize int64
	SendBuffer   int
}

// Session orchestrates one connection's lifecycle: registration, liveness,
// the inbound frame loop, and idempotent teardown. It owns the transport
// exclusively; the registry only holds a reference through the Peer
// interface.
//
// An unauthenticated session (failed handshake resolution) is held open for
// inbound frames but never registered, never probed, and never routed:
// fail-soft rather than immediate close, to tolerate races between
// transport open and cookie availability.
type Session struct {
	id       string
	identity domain.Identity
	authed   bool

	conn     *websocket.Conn
	cfg      SessionConfig
	registry contract.IRegistry
	presence contract.IPresence
	router   *Router
	monitor  *Monitor
	metrics  *observability.Metrics
	log      *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(
	conn *websocket.Conn,
	identity domain.Identity,
	authed bool,
	cfg SessionConfig,
	registry contract.IRegistry,
	presence contract.IPresence,
	router *Router,
	metrics *observability.Metrics,
	log *slog.Logger,
) *Session {
	s := &Session{
		id:       uuid.NewString(),
		identity: identity,
		authed:   authed,
		conn:     conn,
		cfg:      cfg,
		registry: registry,
		presence: presence,
		router:   router,
		metrics:  metrics,
		send:     make(chan []byte, cfg.SendBuffer),
		done:     make(chan struct{}),
	}
	s.log = log.With("conn_id", s.id, "user_id", identity.ID)
	s.monitor = NewMonitor(cfg.PingInterval, cfg.PongTimeout, s.sendPing, s.terminated, s.log)
	return s
}

func (s *Session) ID() string                { return s.id }
func (s *Session) Identity() domain.Identity { return s.identity }

// Run drives the session until the transport closes, the application closes
// it, or the liveness monitor terminates it. It blocks on the read loop, so
// inbound frames of one connection are processed strictly in arrival order.
func (s *Session) Run() {
	defer s.Close()

	s.conn.SetReadLimit(s.cfg.MaxFrameSize)
	s.conn.SetPongHandler(func(string) error {
		s.monitor.Pong()
		return nil
	})

	go s.writeLoop()

	if s.authed {
		s.registry.Register(s.id, s)
		s.metrics.IncrConnectionsOpened()
		s.monitor.Start()
		s.presence.Broadcast()
		s.log.Info("Session registered", "username", s.identity.Username)
	} else {
		s.log.Info("Unauthenticated session held outside registry")
	}

	s.readLoop()
}

func (s *Session) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if !s.authed {
			continue
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.metrics.IncrMessagesDropped()
			s.log.Debug("Malformed frame dropped", "error", err)
			continue
		}
		s.router.Route(s.identity, frame)
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				// The broken transport surfaces in the read loop too,
				// which triggers the teardown.
				return
			}
		}
	}
}

// Push enqueues an outbound frame without blocking. Callers hold the
// registry read path, so any network slowness is absorbed by the buffer and
// a full buffer is reported as a delivery failure, not a stall.
func (s *Session) Push(frame []byte) error {
	select {
	case <-s.done:
		return errors.ErrSessionClosed
	default:
	}

	select {
	case s.send <- frame:
		return nil
	default:
		return errors.ErrSlowConsumer
	}
}

// sendPing emits a transport-level ping control frame. Safe to call
// concurrently with the write loop.
func (s *Session) sendPing() error {
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout))
}

// terminated is the liveness monitor's dead-peer callback.
func (s *Session) terminated() {
	s.metrics.IncrLivenessTerminations()
	s.log.Info("Liveness timeout, reclaiming connection")
	s.Close()
}

// Close tears the session down: timers cancelled, transport closed,
// registry reference removed, final presence broadcast. It may be entered
// from multiple concurrent triggers (client close, application close,
// liveness timeout) and executes its effects at most once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.monitor.Stop()
		close(s.done)
		_ = s.conn.Close()

		if s.authed {
			s.registry.Unregister(s.id)
			s.metrics.IncrConnectionsClosed()
			s.presence.Broadcast()
		}
		s.log.Debug("Session closed")
	})
}
