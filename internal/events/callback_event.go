package events

// CallbackEvent invokes registered callbacks synchronously on the notifying goroutine.
// Callbacks must therefore return quickly.
type CallbackEvent[T any] struct {
	reg registry[func(T), T]
}

// NewCallbackEvent creates a CallbackEvent.
// replay: new listeners are called immediately with the most recent value, if any.
func NewCallbackEvent[T any](replay bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{reg: newRegistry[func(T), T](replay)}
}

// Listen registers callback and returns a function that deregisters it.
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}

	id, replayValue, ok := e.reg.add(callback)
	if !ok {
		return func() {}
	}
	if replayValue != nil {
		callback(*replayValue)
	}

	return func() {
		e.reg.remove(id)
	}
}

// Notify calls every registered callback with value.
func (e *CallbackEvent[T]) Notify(value T) {
	callbacks, ok := e.reg.record(value)
	if !ok {
		return
	}
	for _, callback := range callbacks {
		callback(value)
	}
}

// Close drops all callbacks; later Listen and Notify calls are no-ops.
func (e *CallbackEvent[T]) Close() {
	e.reg.drain()
}

// ListenerCount returns the number of registered callbacks.
func (e *CallbackEvent[T]) ListenerCount() int {
	return e.reg.count()
}
