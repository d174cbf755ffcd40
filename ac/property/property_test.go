package property_test

import (
	"testing"

	"mideago/ac/property"
	"mideago/internal/crc8"
)

func TestBuildQueryChecksumValidates(t *testing.T) {
	buf := property.BuildQuery([]uint16{property.UUIDSilkyCool})
	if !crc8.Valid(buf) {
		t.Errorf("BuildQuery() checksum does not validate")
	}
	if buf[0] != 0xB1 {
		t.Errorf("buf[0] = %#x, want 0xB1", buf[0])
	}
	if buf[1] != 1 {
		t.Errorf("buf[1] (count) = %d, want 1", buf[1])
	}
}

func TestParseReplyRoundTrip(t *testing.T) {
	// {count=1, uuid=0x0018 LE, length=1, data=0x01}
	body := []byte{0x01, 0x18, 0x00, 0x01, 0x01}
	values, err := property.ParseReply(body)
	if err != nil {
		t.Fatalf("ParseReply() error: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("len(values) = %d, want 1", len(values))
	}
	if values[0].UUID != property.UUIDSilkyCool {
		t.Errorf("UUID = %#x, want %#x", values[0].UUID, property.UUIDSilkyCool)
	}
	if !property.Bool(values, property.UUIDSilkyCool) {
		t.Errorf("Bool(values, UUIDSilkyCool) = false, want true")
	}
}

func TestParseReplyTruncated(t *testing.T) {
	body := []byte{0x01, 0x18, 0x00}
	if _, err := property.ParseReply(body); err == nil {
		t.Errorf("ParseReply(truncated) error = nil, want error")
	}
}

func TestBoolDefaultsFalse(t *testing.T) {
	if property.Bool(nil, property.UUIDBuzzer) {
		t.Errorf("Bool(nil, ...) = true, want false")
	}
}
