package runtime

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonitor_Pong_Keeps_Connection_Alive(t *testing.T) {
	req := require.New(t)
	var pings atomic.Int32
	var deaths atomic.Int32

	// Given a monitor whose peer answers every probe
	var monitor *Monitor
	monitor = NewMonitor(20*time.Millisecond, 10*time.Millisecond,
		func() error {
			pings.Add(1)
			go monitor.Pong()
			return nil
		},
		func() { deaths.Add(1) },
		slog.Default(),
	)
	monitor.Start()
	defer monitor.Stop()

	// When several probe intervals elapse
	time.Sleep(120 * time.Millisecond)

	// Then probes kept flowing and the peer was never declared dead
	req.GreaterOrEqual(pings.Load(), int32(2))
	req.Zero(deaths.Load())
	req.NotEqual(Terminated, monitor.State())
}

func TestMonitor_Missing_Pong_Terminates_Once(t *testing.T) {
	req := require.New(t)
	var deaths atomic.Int32

	// Given a peer that never answers probes
	monitor := NewMonitor(20*time.Millisecond, 10*time.Millisecond,
		func() error { return nil },
		func() { deaths.Add(1) },
		slog.Default(),
	)
	monitor.Start()

	// Then the connection is reclaimed after interval + timeout
	req.Eventually(func() bool { return monitor.State() == Terminated },
		time.Second, 5*time.Millisecond)
	req.Equal(int32(1), deaths.Load())

	// And a later pong or stop changes nothing
	monitor.Pong()
	monitor.Stop()
	time.Sleep(50 * time.Millisecond)
	req.Equal(int32(1), deaths.Load())
}

func TestMonitor_Pong_Outside_Probe_Window_Is_Ignored(t *testing.T) {
	req := require.New(t)

	monitor := NewMonitor(time.Hour, time.Hour,
		func() error { return nil },
		func() {},
		slog.Default(),
	)
	defer monitor.Stop()

	// When a pong arrives while no probe is in flight
	monitor.Pong()

	// Then no transition happens
	req.Equal(Alive, monitor.State())
}

func TestMonitor_Stop_Cancels_Armed_Timeout(t *testing.T) {
	req := require.New(t)
	var deaths atomic.Int32

	probed := make(chan struct{}, 1)
	monitor := NewMonitor(10*time.Millisecond, 200*time.Millisecond,
		func() error {
			select {
			case probed <- struct{}{}:
			default:
			}
			return nil
		},
		func() { deaths.Add(1) },
		slog.Default(),
	)
	monitor.Start()

	// Given a probe in flight with its timeout armed
	<-probed
	req.Equal(AwaitingPong, monitor.State())

	// When the session stops the monitor before the timeout fires
	monitor.Stop()
	time.Sleep(300 * time.Millisecond)

	// Then no timer fires against the torn-down connection
	req.Zero(deaths.Load())
	req.Equal(Terminated, monitor.State())
}

func TestMonitor_Concurrent_Stop_And_Expiry_Fire_Once(t *testing.T) {
	req := require.New(t)
	var deaths atomic.Int32

	monitor := NewMonitor(5*time.Millisecond, 5*time.Millisecond,
		func() error { return nil },
		func() { deaths.Add(1) },
		slog.Default(),
	)
	monitor.Start()

	// When explicit close races the liveness timeout
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(8 * time.Millisecond)
			monitor.Stop()
		}()
	}
	wg.Wait()
	time.Sleep(50 * time.Millisecond)

	// Then the dead-peer callback ran at most once
	req.LessOrEqual(deaths.Load(), int32(1))
	req.Equal(Terminated, monitor.State())
}
