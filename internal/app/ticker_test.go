package app

import (
	"sync"
	"testing"
	"time"
)

// manualTickers hands out tickers that only fire when the test says so.
type manualTickers struct {
	mu  sync.Mutex
	all []*fakeTicker
}

type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (m *fakeTicker) C() <-chan time.Time { return m.c }
func (m *fakeTicker) Stop()               { m.once.Do(func() { close(m.stopped) }) }

func (m *fakeTicker) isStopped() bool {
	select {
	case <-m.stopped:
		return true
	default:
		return false
	}
}

// New satisfies TickerFunc.
func (m *manualTickers) New(time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	m.all = append(m.all, t)
	return t
}

// Created reports how many tickers were handed out.
func (m *manualTickers) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.all)
}

// Live reports how many tickers have not been stopped.
func (m *manualTickers) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := 0
	for _, t := range m.all {
		if !t.isStopped() {
			live++
		}
	}
	return live
}

// Fire delivers one tick to the newest ticker. It returns false if that ticker is stopped.
func (m *manualTickers) Fire() bool {
	m.mu.Lock()
	if len(m.all) == 0 {
		m.mu.Unlock()
		return false
	}
	t := m.all[len(m.all)-1]
	m.mu.Unlock()

	select {
	case t.c <- time.Time{}:
		return true
	case <-t.stopped:
		return false
	case <-time.After(2 * time.Second):
		return false
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
