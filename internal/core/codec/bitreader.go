// If you are AI: This file implements the MSB-first bit reader and writer used by codec header parsers.
// Reads past the end yield zero bits and latch an error instead of panicking.

package codec

import (
	"errors"
)

var (
	// ErrTruncated is reported when a parser runs out of input bits.
	ErrTruncated = errors.New("codec: truncated bitstream")
	// ErrUnsupported is reported for records the parsers do not understand.
	ErrUnsupported = errors.New("codec: unsupported configuration")
)

// BitReader extracts bits and bytes sequentially from a fixed buffer.
type BitReader struct {
	buf []byte
	pos int // bit position
	err error
}

// NewBitReader creates a reader positioned at the first bit of buf.
func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

// Read returns the next n bits (0..32) as an unsigned value.
func (r *BitReader) Read(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<1 | r.bit()
	}
	return v
}

// bit returns the next bit, or 0 after latching ErrTruncated.
func (r *BitReader) bit() uint32 {
	idx := r.pos >> 3
	if idx >= len(r.buf) {
		r.err = ErrTruncated
		return 0
	}
	b := r.buf[idx] >> (7 - uint(r.pos&7)) & 1
	r.pos++
	return uint32(b)
}

// ReadBool reads a single bit flag.
func (r *BitReader) ReadBool() bool {
	return r.bit() == 1
}

// ReadByte reads the next 8 bits.
func (r *BitReader) ReadByte() byte {
	return byte(r.Read(8))
}

// Skip advances the reader by n bits.
func (r *BitReader) Skip(n int) {
	if r.pos+n > len(r.buf)*8 {
		r.pos = len(r.buf) * 8
		r.err = ErrTruncated
		return
	}
	r.pos += n
}

// Remaining returns the number of unread bits.
func (r *BitReader) Remaining() int {
	return len(r.buf)*8 - r.pos
}

// Err returns ErrTruncated if any read went past the end of the buffer.
func (r *BitReader) Err() error {
	return r.err
}

// ReadGolomb decodes an unsigned Exp-Golomb value ue(v).
func (r *BitReader) ReadGolomb() uint32 {
	n := 0
	for r.bit() == 0 {
		if r.err != nil || n >= 31 {
			r.err = ErrTruncated
			return 0
		}
		n++
	}
	return (1 << uint(n)) + r.Read(n) - 1
}

// ReadSignedGolomb decodes a signed Exp-Golomb value se(v).
func (r *BitReader) ReadSignedGolomb() int32 {
	k := r.ReadGolomb()
	if k&1 == 1 {
		return int32((k + 1) / 2)
	}
	return -int32(k / 2)
}

// BitWriter builds MSB-first bitstreams, mostly for fixtures.
type BitWriter struct {
	buf  []byte
	nbit int
}

// PutBits appends the low n bits of v.
func (w *BitWriter) PutBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		if w.nbit&7 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>uint(i)&1 == 1 {
			w.buf[len(w.buf)-1] |= 1 << (7 - uint(w.nbit&7))
		}
		w.nbit++
	}
}

// PutBool appends a single flag bit.
func (w *BitWriter) PutBool(b bool) {
	if b {
		w.PutBits(1, 1)
		return
	}
	w.PutBits(0, 1)
}

// PutGolomb appends v as unsigned Exp-Golomb.
func (w *BitWriter) PutGolomb(v uint32) {
	x := uint64(v) + 1
	n := 0
	for x>>uint(n+1) != 0 {
		n++
	}
	w.PutBits(0, n)
	w.PutBits(uint32(x), n+1)
}

// Bytes returns the written bits padded with zeros to a byte boundary.
func (w *BitWriter) Bytes() []byte {
	return w.buf
}
