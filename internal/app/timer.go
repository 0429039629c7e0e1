package app

import (
	"context"
	"sync"
	"time"
)

// TickInterval is the countdown resolution.
const TickInterval = time.Second

// Ticker is the subset of time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewStdTicker wraps time.NewTicker.
func NewStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Timer runs at most one countdown goroutine. Starting a new countdown cancels the previous one
// before the new ticker is created.
type Timer struct {
	interval  time.Duration
	newTicker TickerFunc

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewTimer(interval time.Duration, newTicker TickerFunc) *Timer {
	if interval <= 0 {
		interval = TickInterval
	}
	if newTicker == nil {
		newTicker = NewStdTicker
	}
	return &Timer{interval: interval, newTicker: newTicker}
}

// Start replaces any running countdown with one that calls tick on every interval until tick
// returns false or the timer is stopped.
func (t *Timer) Start(tick func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	ticker := t.newTicker(t.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				// A cancel may race with a pending tick; prefer the cancel.
				if ctx.Err() != nil {
					return
				}
				if !tick() {
					return
				}
			}
		}
	}()
}

// Stop cancels the running countdown, if any.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
