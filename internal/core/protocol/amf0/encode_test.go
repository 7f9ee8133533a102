// If you are AI: This file tests AMF0 encoding of the bodies the server sends.

package amf0

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// wireString is a string value as it appears on the wire.
func wireString(s string) []byte {
	return append([]byte{TypeString, byte(len(s) >> 8), byte(len(s))}, s...)
}

// wireKey is an object property name.
func wireKey(s string) []byte {
	return append([]byte{byte(len(s) >> 8), byte(len(s))}, s...)
}

// wireNumber is a number value as it appears on the wire.
func wireNumber(f float64) []byte {
	b := make([]byte, 9)
	b[0] = TypeNumber
	binary.BigEndian.PutUint64(b[1:], math.Float64bits(f))
	return b
}

// concat joins byte slices.
func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestEncodeValues_ConnectResult(t *testing.T) {
	body, err := EncodeValues("_result", float64(1),
		Object{"fmsVer": "FMS/3,0,1,123", "capabilities": float64(31)},
		Object{
			"level":          "status",
			"code":           "NetConnection.Connect.Success",
			"description":    "Connection succeeded.",
			"objectEncoding": float64(3),
		})
	if err != nil {
		t.Fatalf("EncodeValues failed: %v", err)
	}

	// Values follow each other without a strict array wrapper.
	prefix := concat(wireString("_result"), wireNumber(1), []byte{TypeObject})
	if !bytes.HasPrefix(body, prefix) {
		t.Fatalf("Expected body to start with %x, got %x", prefix, body[:min(len(body), len(prefix))])
	}

	cmd, err := DecodeCommand(body)
	if err != nil {
		t.Fatalf("DecodeCommand failed: %v", err)
	}
	if cmd.Name != "_result" || cmd.TransactionID != 1 {
		t.Errorf("Expected _result for transaction 1, got %s %v", cmd.Name, cmd.TransactionID)
	}
	if cmd.ObjectString("fmsVer") != "FMS/3,0,1,123" {
		t.Errorf("Expected fmsVer FMS/3,0,1,123, got %q", cmd.ObjectString("fmsVer"))
	}
	info, ok := cmd.Args[0].(Object)
	if !ok {
		t.Fatalf("Expected info object, got %T", cmd.Args[0])
	}
	if info["objectEncoding"] != float64(3) {
		t.Errorf("Expected objectEncoding 3, got %v", info["objectEncoding"])
	}
	if info["code"] != "NetConnection.Connect.Success" {
		t.Errorf("Expected Connect.Success, got %v", info["code"])
	}
}

func TestEncodeValues_OnStatus(t *testing.T) {
	body, err := EncodeValues("onStatus", float64(0), nil, Object{
		"level":       "status",
		"code":        "NetStream.Play.Start",
		"description": "Started playing stream.",
	})
	if err != nil {
		t.Fatalf("EncodeValues failed: %v", err)
	}

	want := concat(
		wireString("onStatus"),
		wireNumber(0),
		[]byte{TypeNull},
		[]byte{TypeObject},
		wireKey("code"), wireString("NetStream.Play.Start"),
		wireKey("description"), wireString("Started playing stream."),
		wireKey("level"), wireString("status"),
		[]byte{0, 0, TypeObjectEnd},
	)
	if !bytes.Equal(body, want) {
		t.Errorf("Expected %x, got %x", want, body)
	}
}

func TestEncodeValues_SampleAccess(t *testing.T) {
	body, err := EncodeValues("|RtmpSampleAccess", false, false)
	if err != nil {
		t.Fatalf("EncodeValues failed: %v", err)
	}
	want := concat(wireString("|RtmpSampleAccess"), []byte{TypeBoolean, 0, TypeBoolean, 0})
	if !bytes.Equal(body, want) {
		t.Errorf("Expected %x, got %x", want, body)
	}

	name, args, err := DecodeData(body)
	if err != nil || name != "|RtmpSampleAccess" || len(args) != 2 {
		t.Errorf("Expected |RtmpSampleAccess with 2 args, got %q %v (%v)", name, args, err)
	}
}

func TestEncodeValues_CreateStreamResult(t *testing.T) {
	body, err := EncodeValues("_result", float64(2), nil, float64(1))
	if err != nil {
		t.Fatalf("EncodeValues failed: %v", err)
	}
	want := concat(wireString("_result"), wireNumber(2), []byte{TypeNull}, wireNumber(1))
	if !bytes.Equal(body, want) {
		t.Errorf("Expected %x, got %x", want, body)
	}
}
