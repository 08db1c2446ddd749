package core

import "errors"

// Frame is a compressed binary payload as it travels on the wire.
type Frame []byte

// ErrBackpressure is returned by TrySend when a connection's outbound
// buffer is full. The frame is dropped; the engine never blocks on a
// slow consumer.
var ErrBackpressure = errors.New("backpressure")

// SignalConnection abstracts the messaging transport for one client.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
