// Package clock abstracts periodic tickers so that time-driven components can be
// driven step by step in tests.
package clock

import "time"

// Ticker delivers ticks on C until Stop is called.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a running Ticker with the given period.
type TickerFactory func(period time.Duration) Ticker

// NewRealTicker is the TickerFactory backed by time.Ticker.
func NewRealTicker(period time.Duration) Ticker {
	return realTicker{t: time.NewTicker(period)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Ensure realTicker implements Ticker.
var _ Ticker = realTicker{}
