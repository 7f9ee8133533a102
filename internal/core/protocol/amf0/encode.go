// If you are AI: This file implements AMF0 encoding for RTMP response and data messages.

package amf0

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sort"
	"time"
)

// Encode writes an AMF0 value to the writer.
func Encode(w io.Writer, val Value) error {
	switch v := val.(type) {
	case float64:
		return encodeNumber(w, v)
	case int:
		return encodeNumber(w, float64(v))
	case uint32:
		return encodeNumber(w, float64(v))
	case int64:
		return encodeNumber(w, float64(v))
	case bool:
		return encodeBoolean(w, v)
	case string:
		return encodeString(w, v)
	case nil:
		return encodeNull(w)
	case Object:
		return encodeObject(w, TypeObject, v)
	case ECMAArray:
		return encodeECMAArray(w, v)
	case Array:
		return encodeArray(w, v)
	case time.Time:
		return encodeDate(w, v)
	default:
		return encodeNull(w)
	}
}

// encodeNumber encodes an AMF0 number.
func encodeNumber(w io.Writer, num float64) error {
	var buf [9]byte
	buf[0] = TypeNumber
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(num))
	_, err := w.Write(buf[:])
	return err
}

// encodeBoolean encodes an AMF0 boolean.
func encodeBoolean(w io.Writer, b bool) error {
	buf := [2]byte{TypeBoolean, 0}
	if b {
		buf[1] = 1
	}
	_, err := w.Write(buf[:])
	return err
}

// encodeString encodes an AMF0 string, switching to a long string past 65535 bytes.
func encodeString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		if err := binary.Write(w, binary.BigEndian, byte(TypeLongString)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
			return err
		}
		_, err := io.WriteString(w, s)
		return err
	}
	if err := binary.Write(w, binary.BigEndian, byte(TypeString)); err != nil {
		return err
	}
	return writeKey(w, s)
}

// writeKey writes a length-prefixed UTF-8 string without a marker.
func writeKey(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// encodeNull encodes an AMF0 null.
func encodeNull(w io.Writer) error {
	return binary.Write(w, binary.BigEndian, byte(TypeNull))
}

// encodeObject encodes an AMF0 object with keys in sorted order.
func encodeObject(w io.Writer, marker byte, obj map[string]Value) error {
	if err := binary.Write(w, binary.BigEndian, marker); err != nil {
		return err
	}
	if marker == TypeECMAArray {
		if err := binary.Write(w, binary.BigEndian, uint32(len(obj))); err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := writeKey(w, key); err != nil {
			return err
		}
		if err := Encode(w, obj[key]); err != nil {
			return err
		}
	}
	// Object end marker
	_, err := w.Write([]byte{0, 0, TypeObjectEnd})
	return err
}

// encodeECMAArray encodes an associative array.
func encodeECMAArray(w io.Writer, arr ECMAArray) error {
	return encodeObject(w, TypeECMAArray, arr)
}

// encodeArray encodes an AMF0 strict array.
func encodeArray(w io.Writer, arr Array) error {
	if err := binary.Write(w, binary.BigEndian, byte(TypeStrictArray)); err != nil {
		return err
	}
	count := uint32(len(arr))
	if err := binary.Write(w, binary.BigEndian, count); err != nil {
		return err
	}
	for _, val := range arr {
		if err := Encode(w, val); err != nil {
			return err
		}
	}
	return nil
}

// encodeDate encodes a date as UTC milliseconds with a zero timezone.
func encodeDate(w io.Writer, t time.Time) error {
	var buf [11]byte
	buf[0] = TypeDate
	binary.BigEndian.PutUint64(buf[1:9], math.Float64bits(float64(t.UnixMilli())))
	_, err := w.Write(buf[:])
	return err
}

// EncodeValues encodes values back to back, the layout of command and data bodies.
func EncodeValues(vals ...Value) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range vals {
		if err := Encode(&buf, v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
