// If you are AI: This file tracks received bytes against the acknowledgement window.
// Every byte read from the socket counts, handshake bytes included.

package rtmp

// ackCounterLimit is where the received byte counter wraps back to zero.
const ackCounterLimit = 0xF0000000

// AckWindow counts received bytes and decides when an Acknowledgement is due.
// It is owned by the connection's read loop and is not safe for concurrent use.
type AckWindow struct {
	window   uint32
	received uint32
	lastAck  uint32
}

// SetWindow sets the acknowledgement window. Zero disables acknowledgements.
func (a *AckWindow) SetWindow(size uint32) {
	a.window = size
}

// Window returns the acknowledgement window.
func (a *AckWindow) Window() uint32 {
	return a.window
}

// Received returns the running byte counter.
func (a *AckWindow) Received() uint32 {
	return a.received
}

// Add records n bytes. When a full window has passed since the last
// acknowledgement it returns the sequence number to acknowledge and true.
func (a *AckWindow) Add(n uint32) (uint32, bool) {
	a.received += n
	if a.received >= ackCounterLimit {
		a.received = 0
		a.lastAck = 0
	}
	if a.window > 0 && a.received-a.lastAck >= a.window {
		a.lastAck = a.received
		return a.received, true
	}
	return 0, false
}
