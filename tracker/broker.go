package tracker

import "time"

// Broker passes block events from a player to consumers that want to
// pull them from a channel instead of registering callbacks. Sends are
// always non-blocking so that a slow consumer can never stall the
// update loop; events overflowing the buffer are dropped.
type Broker struct {
	Events chan BlockEvent
}

func NewBroker() *Broker {
	return &Broker{Events: make(chan BlockEvent, 1024)}
}

// TrySend is a helper function to send a value to a channel if it is
// not full. It is guaranteed to be non-blocking. Returns true if the
// value was sent, false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is
// received from a channel, or timing out after t. ok is false if the
// timeout occurred or if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
