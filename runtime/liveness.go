package runtime

import (
	"log/slog"
	"sync"
	"time"
)

// LivenessState is the per-connection heartbeat state.
type LivenessState int32

const (
	Alive LivenessState = iota
	AwaitingPong
	Terminated
)

// Monitor is the dead-peer-reclamation mechanism: on a fixed interval it
// sends a ping probe and arms a pong timeout; a peer that misses the
// timeout is terminated. Without it, half-open transports would accumulate
// forever and present stale users as online.
//
// All transitions go through one mutex-guarded state, so a pong arriving
// just as the timeout fires is resolved by a single authoritative
// transition rather than flag inspection from multiple places.
type Monitor struct {
	mu         sync.Mutex
	state      LivenessState
	deathTimer *time.Timer

	interval time.Duration
	timeout  time.Duration
	ping     func() error
	onDead   func()

	done     chan struct{}
	stopOnce sync.Once
	log      *slog.Logger
}

// NewMonitor wires the probe and termination callbacks. ping must be safe
// to call from the monitor goroutine; onDead is invoked at most once, after
// the state has already moved to Terminated.
func NewMonitor(interval, timeout time.Duration, ping func() error, onDead func(), log *slog.Logger) *Monitor {
	return &Monitor{
		state:    Alive,
		interval: interval,
		timeout:  timeout,
		ping:     ping,
		onDead:   onDead,
		done:     make(chan struct{}),
		log:      log,
	}
}

// Start launches the probe loop in its own goroutine.
func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.probe()
		}
	}
}

// probe sends a ping and arms the pong timeout. Skipped unless the state is
// Alive: a probe already in flight keeps its own timeout, and a terminated
// connection never probes again.
func (m *Monitor) probe() {
	m.mu.Lock()
	if m.state != Alive {
		m.mu.Unlock()
		return
	}
	m.state = AwaitingPong
	m.deathTimer = time.AfterFunc(m.timeout, m.expire)
	m.mu.Unlock()

	if err := m.ping(); err != nil {
		m.log.Debug("Ping probe failed", "error", err)
	}
}

// Pong cancels the armed timeout and returns to Alive. A pong received
// while not awaiting one is ignored, no transition.
func (m *Monitor) Pong() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != AwaitingPong {
		return
	}
	m.deathTimer.Stop()
	m.state = Alive
}

// expire fires when the pong timeout elapses. Only the AwaitingPong state
// terminates; any other state means a pong won the race or the connection
// already stopped.
func (m *Monitor) expire() {
	m.mu.Lock()
	if m.state != AwaitingPong {
		m.mu.Unlock()
		return
	}
	m.state = Terminated
	m.mu.Unlock()

	m.stopOnce.Do(func() { close(m.done) })
	m.onDead()
}

// Stop cancels the interval timer and any armed timeout deterministically:
// after Stop returns, no timer fires against a torn-down connection.
// Idempotent, callable concurrently with expire.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.state = Terminated
	if m.deathTimer != nil {
		m.deathTimer.Stop()
	}
	m.mu.Unlock()

	m.stopOnce.Do(func() { close(m.done) })
}

// State reports the current liveness state.
func (m *Monitor) State() LivenessState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
