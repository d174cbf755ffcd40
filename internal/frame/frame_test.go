package frame_test

import (
	"testing"

	"mideago/internal/frame"
)

func pushAll(d *frame.Deserializer, data []byte) (frame.Frame, bool) {
	var f frame.Frame
	var ok bool
	for _, b := range data {
		f, ok = d.Push(b)
	}
	return f, ok
}

func TestRoundTrip(t *testing.T) {
	payload := []byte{0x41, 0x01, 0x02, 0x03}
	wire := frame.Serialize(frame.AirConditioner, 0x00, frame.Query, payload)

	var d frame.Deserializer
	got, ok := pushAll(&d, wire)
	if !ok {
		t.Fatalf("deserialize failed for %x", wire)
	}
	if got.Kind != frame.AirConditioner {
		t.Fatalf("unexpected kind: got %x", got.Kind)
	}
	if got.Protocol != 0x00 {
		t.Fatalf("unexpected protocol: got %x", got.Protocol)
	}
	if got.Type != frame.Query {
		t.Fatalf("unexpected type: got %v", got.Type)
	}
	if string(got.Payload) != string(payload) {
		t.Fatalf("unexpected payload: got %x, want %x", got.Payload, payload)
	}
}

func TestChecksumRejectsMutation(t *testing.T) {
	payload := []byte{0x41, 0x01, 0x02, 0x03}
	wire := frame.Serialize(frame.AirConditioner, 0x00, frame.Query, payload)

	rejected := 0
	for i := 1; i < len(wire); i++ {
		mutated := append([]byte(nil), wire...)
		mutated[i] ^= 0xFF
		var d frame.Deserializer
		if _, ok := pushAll(&d, mutated); !ok {
			rejected++
		}
	}
	if rejected == 0 {
		t.Fatalf("expected at least one mutation to be rejected")
	}
}

func TestResyncAfterGarbage(t *testing.T) {
	payload := []byte{0x41}
	wire := frame.Serialize(frame.AirConditioner, 0x00, frame.Query, payload)

	var d frame.Deserializer
	// Feed garbage, then a real frame; deserializer must resync on 0xAA.
	garbage := []byte{0x00, 0x11, 0x22, 0xAA, 0x05}
	for _, b := range garbage {
		if _, ok := d.Push(b); ok {
			t.Fatalf("unexpected frame completion on garbage")
		}
	}
	got, ok := pushAll(&d, wire)
	if !ok {
		t.Fatalf("deserialize failed after resync")
	}
	if got.Type != frame.Query {
		t.Fatalf("unexpected type: got %v", got.Type)
	}
}

func TestMinLengthRejected(t *testing.T) {
	var d frame.Deserializer
	d.Push(0xAA)
	if _, ok := d.Push(0x05); ok {
		t.Fatalf("length <= 10 should never complete a frame")
	}
}
