package clock

import (
	"sync"
	"time"
)

// ManualTicker is a Ticker that only ticks when Fire is called.
type ManualTicker struct {
	Period time.Duration

	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

// C returns the tick channel. It is unbuffered, so Fire returns only once the
// consumer has taken the tick.
func (m *ManualTicker) C() <-chan time.Time { return m.ch }

// Stop marks the ticker stopped; subsequent Fire calls fail.
func (m *ManualTicker) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

// Stopped reports whether Stop has been called.
func (m *ManualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Fire delivers one tick, waiting at most timeout for the consumer to receive it.
// It returns false if the ticker is stopped or nobody received the tick.
func (m *ManualTicker) Fire(timeout time.Duration) bool {
	if m.Stopped() {
		return false
	}
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(timeout):
		return false
	}
}

// ManualFactory hands out ManualTickers and remembers every one it created.
type ManualFactory struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

// New is a TickerFactory.
func (f *ManualFactory) New(period time.Duration) Ticker {
	t := &ManualTicker{Period: period, ch: make(chan time.Time)}
	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()
	return t
}

// Count returns how many tickers have been created.
func (f *ManualFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

// Latest returns the most recently created ticker, or nil.
func (f *ManualFactory) Latest() *ManualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

// Active returns the tickers that have not been stopped.
func (f *ManualFactory) Active() []*ManualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*ManualTicker
	for _, t := range f.tickers {
		if !t.Stopped() {
			out = append(out, t)
		}
	}
	return out
}
