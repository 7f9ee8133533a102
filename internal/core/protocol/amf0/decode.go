// If you are AI: This file implements AMF0 decoding for RTMP command and data messages.

package amf0

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

var (
	ErrUnexpectedType = errors.New("unexpected AMF0 type")
	ErrInvalidData    = errors.New("invalid AMF0 data")
)

// maxDepth bounds object nesting.
const maxDepth = 32

// Decode reads and decodes a single AMF0 value from the reader.
// Returns the decoded value and any error.
func Decode(r io.Reader) (Value, error) {
	return decodeValue(r, 0)
}

// decodeValue decodes one value at the given nesting depth.
func decodeValue(r io.Reader, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("nesting deeper than %d: %w", maxDepth, ErrInvalidData)
	}
	typeMarker, err := readByte(r)
	if err != nil {
		return nil, err
	}

	switch typeMarker {
	case TypeNumber:
		return decodeNumber(r)
	case TypeBoolean:
		return decodeBoolean(r)
	case TypeString:
		return decodeString(r)
	case TypeLongString, TypeXMLDocument:
		return decodeLongString(r)
	case TypeNull, TypeUndefined, TypeUnsupported:
		return nil, nil
	case TypeReference:
		// References are not resolved.
		var idx uint16
		return nil, binary.Read(r, binary.BigEndian, &idx)
	case TypeObject:
		return decodeObject(r, depth)
	case TypeTypedObject:
		if _, err := decodeString(r); err != nil {
			return nil, err
		}
		return decodeObject(r, depth)
	case TypeECMAArray:
		return decodeECMAArray(r, depth)
	case TypeStrictArray:
		return decodeStrictArray(r, depth)
	case TypeDate:
		return decodeDate(r)
	default:
		return nil, fmt.Errorf("marker 0x%02x: %w", typeMarker, ErrUnexpectedType)
	}
}

// DecodeString reads an AMF0 string value.
func DecodeString(r io.Reader) (string, error) {
	typeMarker, err := readByte(r)
	if err != nil {
		return "", err
	}
	switch typeMarker {
	case TypeString:
		return decodeString(r)
	case TypeLongString:
		return decodeLongString(r)
	default:
		return "", ErrUnexpectedType
	}
}

// readByte reads a single byte.
func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// decodeNumber decodes an AMF0 number (double precision float64).
func decodeNumber(r io.Reader) (float64, error) {
	var num float64
	err := binary.Read(r, binary.BigEndian, &num)
	return num, err
}

// decodeBoolean decodes an AMF0 boolean.
func decodeBoolean(r io.Reader) (bool, error) {
	b, err := readByte(r)
	return b != 0, err
}

// decodeString decodes an AMF0 string.
func decodeString(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	return readUTF8(r, uint32(length))
}

// decodeLongString decodes an AMF0 long string.
func decodeLongString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	return readUTF8(r, length)
}

// readUTF8 reads length bytes as a string.
func readUTF8(r io.Reader, length uint32) (string, error) {
	if length == 0 {
		return "", nil
	}
	if lr, ok := r.(interface{ Len() int }); ok && int64(length) > int64(lr.Len()) {
		return "", io.ErrUnexpectedEOF
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// decodeObject decodes an AMF0 object.
func decodeObject(r io.Reader, depth int) (Object, error) {
	obj := make(Object)
	for {
		key, err := decodeString(r)
		if err != nil {
			return nil, err
		}
		if key == "" {
			// Object end marker
			endMarker, err := readByte(r)
			if err != nil {
				return nil, err
			}
			if endMarker != TypeObjectEnd {
				return nil, ErrInvalidData
			}
			break
		}
		value, err := decodeValue(r, depth+1)
		if err != nil {
			return nil, err
		}
		obj[key] = value
	}
	return obj, nil
}

// decodeECMAArray decodes an AMF0 ECMA array.
func decodeECMAArray(r io.Reader, depth int) (Object, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	// ECMA arrays are decoded as objects
	return decodeObject(r, depth)
}

// decodeStrictArray decodes a counted array of values.
func decodeStrictArray(r io.Reader, depth int) (Array, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	arr := make(Array, 0, min(count, 64))
	for i := uint32(0); i < count; i++ {
		v, err := decodeValue(r, depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

// decodeDate decodes milliseconds since the epoch followed by a timezone field.
func decodeDate(r io.Reader) (time.Time, error) {
	var buf [10]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return time.Time{}, err
	}
	ms := math.Float64frombits(binary.BigEndian.Uint64(buf[:8]))
	return time.UnixMilli(int64(ms)).UTC(), nil
}
