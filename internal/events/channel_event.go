package events

// Delivery selects what Notify does when a listener's channel is full.
type Delivery int

const (
	// DropNewest skips the listener for this value and keeps what is already queued.
	DropNewest Delivery = iota
	// LatestWins discards one queued value to make room for the new one. Suited to
	// state snapshots where only the most recent value matters to a renderer.
	LatestWins
)

// ChannelEvent fans values out to registered channels without ever blocking the notifier.
type ChannelEvent[T any] struct {
	reg      registry[chan T, T]
	delivery Delivery
}

// NewChannelEvent creates a ChannelEvent.
// replay: new listeners immediately receive the most recent value, if one was notified.
func NewChannelEvent[T any](replay bool, delivery Delivery) *ChannelEvent[T] {
	return &ChannelEvent[T]{
		reg:      newRegistry[chan T, T](replay),
		delivery: delivery,
	}
}

// Listen registers ch and returns a function that deregisters it.
// The event takes ownership of closing ch when Close is called; after deregistration
// ch is left open and belongs to the caller again.
// Listening on a closed event closes ch straight away so range/ok loops terminate.
func (e *ChannelEvent[T]) Listen(ch chan T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}

	id, replayValue, ok := e.reg.add(ch)
	if !ok {
		close(ch)
		return func() {}
	}
	if replayValue != nil {
		e.send(ch, *replayValue)
	}

	return func() {
		e.reg.remove(id)
	}
}

// Notify sends value to every listener, applying the configured Delivery policy.
func (e *ChannelEvent[T]) Notify(value T) {
	listeners, ok := e.reg.record(value)
	if !ok {
		return
	}
	for _, ch := range listeners {
		e.send(ch, value)
	}
}

// Close closes every registered channel. Further Notify calls are ignored.
func (e *ChannelEvent[T]) Close() {
	for _, ch := range e.reg.drain() {
		close(ch)
	}
}

// ListenerCount returns the number of registered listeners.
func (e *ChannelEvent[T]) ListenerCount() int {
	return e.reg.count()
}

func (e *ChannelEvent[T]) send(ch chan T, value T) {
	select {
	case ch <- value:
		return
	default:
	}
	if e.delivery != LatestWins {
		return
	}
	// Make room by dropping the stale value. Another sender may refill the slot in
	// between, in which case this value is skipped like DropNewest would.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- value:
	default:
	}
}
