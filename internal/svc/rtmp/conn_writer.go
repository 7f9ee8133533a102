// If you are AI: This file implements the buffered, corked socket writer shared by a session
// and the publishers relaying into it.

package rtmp

import (
	"bufio"
	"net"
	"sync"
	"time"

	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

// corkLimit is the number of relayed messages buffered before a flush.
const corkLimit = 10

// writeBufferSize is the socket write buffer of one session.
const writeBufferSize = 64 << 10

// connWriter serializes every write to one connection.
type connWriter struct {
	mu        sync.Mutex
	conn      net.Conn
	w         *bufio.Writer
	timeout   time.Duration
	chunkSize uint32
	corked    int
	count     func(int)
}

// newConnWriter wraps conn. count receives the size of every accepted write.
func newConnWriter(conn net.Conn, timeout time.Duration, count func(int)) *connWriter {
	return &connWriter{
		conn:      conn,
		w:         bufio.NewWriterSize(conn, writeBufferSize),
		timeout:   timeout,
		chunkSize: rtmpprotocol.DefaultChunkSize,
		count:     count,
	}
}

// SetChunkSize changes the outbound chunk size used by WriteMessage.
func (w *connWriter) SetChunkSize(size uint32) {
	w.mu.Lock()
	w.chunkSize = size
	w.mu.Unlock()
}

// write buffers b. Caller holds mu.
func (w *connWriter) write(b []byte) error {
	if w.timeout > 0 {
		w.conn.SetWriteDeadline(time.Now().Add(w.timeout))
	}
	n, err := w.w.Write(b)
	if n > 0 && w.count != nil {
		w.count(n)
	}
	return err
}

// flush drains the buffer. Caller holds mu.
func (w *connWriter) flush() error {
	w.corked = 0
	if w.w.Buffered() == 0 {
		return nil
	}
	return w.w.Flush()
}

// WriteRaw writes bytes that are not chunked, such as the handshake reply.
func (w *connWriter) WriteRaw(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.write(b); err != nil {
		return err
	}
	return w.flush()
}

// WriteMessage chunks m and sends it immediately.
func (w *connWriter) WriteMessage(m *rtmpprotocol.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.write(rtmpprotocol.EncodeMessage(m, w.chunkSize)); err != nil {
		return err
	}
	return w.flush()
}

// Cork buffers pre-chunked bytes and flushes every corkLimit messages.
func (w *connWriter) Cork(chunks []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.write(chunks); err != nil {
		return err
	}
	w.corked++
	if w.corked >= corkLimit {
		return w.flush()
	}
	return nil
}

// Flush sends anything corked.
func (w *connWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flush()
}

// Batch runs fn with the writer held so nothing else interleaves, then flushes.
func (w *connWriter) Batch(fn func(send func(*rtmpprotocol.Message) error) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	send := func(m *rtmpprotocol.Message) error {
		return w.write(rtmpprotocol.EncodeMessage(m, w.chunkSize))
	}
	if err := fn(send); err != nil {
		return err
	}
	return w.flush()
}
