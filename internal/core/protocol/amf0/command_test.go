// If you are AI: This file contains unit tests for AMF0 decoding and command parsing.
package amf0

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// TestDecodeCommand_Connect decodes a connect command with its command object.
func TestDecodeCommand_Connect(t *testing.T) {
	body, err := EncodeValues("connect", float64(1), Object{
		"app":            "live",
		"tcUrl":          "rtmp://localhost/live",
		"objectEncoding": float64(0),
	})
	if err != nil {
		t.Fatalf("EncodeValues failed: %v", err)
	}
	cmd, err := DecodeCommand(body)
	if err != nil {
		t.Fatalf("DecodeCommand failed: %v", err)
	}
	if cmd.Name != "connect" {
		t.Errorf("Expected name connect, got %q", cmd.Name)
	}
	if cmd.TransactionID != 1 {
		t.Errorf("Expected transaction id 1, got %v", cmd.TransactionID)
	}
	if got := cmd.ObjectString("app"); got != "live" {
		t.Errorf("Expected app live, got %q", got)
	}
	if len(cmd.Args) != 0 {
		t.Errorf("Expected no args, got %d", len(cmd.Args))
	}
}

// TestDecodeCommand_PublishArgs decodes a publish command with a null object and arguments.
func TestDecodeCommand_PublishArgs(t *testing.T) {
	body, _ := EncodeValues("publish", float64(5), nil, "stream?key=abc", "live")
	cmd, err := DecodeCommand(body)
	if err != nil {
		t.Fatalf("DecodeCommand failed: %v", err)
	}
	if cmd.Object != nil {
		t.Errorf("Expected nil object, got %v", cmd.Object)
	}
	if cmd.StringArg(0) != "stream?key=abc" || cmd.StringArg(1) != "live" {
		t.Errorf("Unexpected args %v", cmd.Args)
	}
	if cmd.StringArg(5) != "" {
		t.Error("Expected empty string for missing arg")
	}
}

// TestDecodeCommand_BoolAndNumberArgs decodes receiveAudio and play-style arguments.
func TestDecodeCommand_BoolAndNumberArgs(t *testing.T) {
	body, _ := EncodeValues("pause", float64(0), nil, true, float64(1500))
	cmd, err := DecodeCommand(body)
	if err != nil {
		t.Fatalf("DecodeCommand failed: %v", err)
	}
	if b, ok := cmd.BoolArg(0); !ok || !b {
		t.Errorf("Expected true bool arg, got %v %v", b, ok)
	}
	if n, ok := cmd.NumberArg(1); !ok || n != 1500 {
		t.Errorf("Expected 1500, got %v %v", n, ok)
	}
	if _, ok := cmd.NumberArg(0); ok {
		t.Error("Expected bool arg not to read as a number")
	}
}

// TestDecodeCommand_NameOnly accepts a body that ends after the name.
func TestDecodeCommand_NameOnly(t *testing.T) {
	body, _ := EncodeValues("FCUnpublish")
	cmd, err := DecodeCommand(body)
	if err != nil {
		t.Fatalf("DecodeCommand failed: %v", err)
	}
	if cmd.Name != "FCUnpublish" {
		t.Errorf("Expected FCUnpublish, got %q", cmd.Name)
	}
}

// TestDecodeCommand_BadName rejects a body that does not start with a string.
func TestDecodeCommand_BadName(t *testing.T) {
	body, _ := EncodeValues(float64(1))
	if _, err := DecodeCommand(body); !errors.Is(err, ErrUnexpectedType) {
		t.Errorf("Expected ErrUnexpectedType, got %v", err)
	}
	if _, err := DecodeCommand(nil); err == nil {
		t.Error("Expected error for empty body")
	}
}

// TestDecode_AllTypes round-trips the value kinds relays see in practice.
func TestDecode_AllTypes(t *testing.T) {
	when := time.UnixMilli(1700000000000).UTC()
	body, err := EncodeValues(
		float64(3.5), true, "s", nil,
		Object{"a": float64(1)},
		ECMAArray{"duration": float64(0), "width": float64(1280)},
		Array{"x", float64(2)},
		when,
	)
	if err != nil {
		t.Fatalf("EncodeValues failed: %v", err)
	}
	r := bytes.NewReader(body)
	var got []Value
	for r.Len() > 0 {
		v, err := Decode(r)
		if err != nil {
			t.Fatalf("Decode failed after %d values: %v", len(got), err)
		}
		got = append(got, v)
	}
	if len(got) != 8 {
		t.Fatalf("Expected 8 values, got %d", len(got))
	}
	if got[0] != 3.5 || got[1] != true || got[2] != "s" || got[3] != nil {
		t.Errorf("Unexpected scalars %v", got[:4])
	}
	if obj, ok := got[5].(Object); !ok || obj["width"] != float64(1280) {
		t.Errorf("Expected ECMA array as object, got %#v", got[5])
	}
	if arr, ok := got[6].(Array); !ok || len(arr) != 2 || arr[0] != "x" {
		t.Errorf("Expected strict array, got %#v", got[6])
	}
	if d, ok := got[7].(time.Time); !ok || !d.Equal(when) {
		t.Errorf("Expected date %v, got %#v", when, got[7])
	}
}

// TestDecode_LongStringAndTypedObject decodes markers the encoder only emits in special cases.
func TestDecode_LongStringAndTypedObject(t *testing.T) {
	long := string(bytes.Repeat([]byte("a"), 70000))
	body, _ := EncodeValues(long)
	if body[0] != TypeLongString {
		t.Fatalf("Expected long string marker, got 0x%02x", body[0])
	}
	v, err := Decode(bytes.NewReader(body))
	if err != nil || v != long {
		t.Errorf("Expected long string round trip, err=%v", err)
	}

	typed := []byte{TypeTypedObject, 0, 3, 'F', 'o', 'o', 0, 1, 'k', TypeBoolean, 1, 0, 0, TypeObjectEnd}
	v, err = Decode(bytes.NewReader(typed))
	if err != nil {
		t.Fatalf("Decode typed object failed: %v", err)
	}
	if obj, ok := v.(Object); !ok || obj["k"] != true {
		t.Errorf("Expected typed object properties, got %#v", v)
	}
}

// TestDecode_Truncated verifies truncated input errors instead of panicking.
func TestDecode_Truncated(t *testing.T) {
	body, _ := EncodeValues(Object{"key": "value"})
	for i := 1; i < len(body); i++ {
		if _, err := Decode(bytes.NewReader(body[:i])); err == nil {
			t.Errorf("Expected error for %d-byte prefix", i)
		}
	}
}

// TestEncodeObject_SortedKeys verifies object encoding is deterministic.
func TestEncodeObject_SortedKeys(t *testing.T) {
	a, _ := EncodeValues(Object{"b": float64(1), "a": float64(2), "c": "x"})
	for i := 0; i < 10; i++ {
		b, _ := EncodeValues(Object{"c": "x", "a": float64(2), "b": float64(1)})
		if !bytes.Equal(a, b) {
			t.Fatal("Expected identical encodings")
		}
	}
	if !bytes.Equal(a[1:4], []byte{0, 1, 'a'}) {
		t.Errorf("Expected first key 'a', got %v", a[1:4])
	}
}

// TestStripFirstString turns an @setDataFrame body into onMetaData.
func TestStripFirstString(t *testing.T) {
	meta := ECMAArray{"width": float64(1920)}
	body, _ := EncodeValues("@setDataFrame", "onMetaData", meta)
	want, _ := EncodeValues("onMetaData", meta)
	got, err := StripFirstString(body)
	if err != nil {
		t.Fatalf("StripFirstString failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	name, vals, err := DecodeData(got)
	if err != nil || name != "onMetaData" || len(vals) != 1 {
		t.Errorf("Unexpected data decode %q %v %v", name, vals, err)
	}
}
