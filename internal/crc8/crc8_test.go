package crc8_test

import (
	"testing"

	"mideago/internal/crc8"
)

func TestChecksumDeterministic(t *testing.T) {
	data := []byte{0x40, 0x02, 0x56, 0x66, 0x7F, 0x7F}
	if got, want := crc8.Checksum(data), crc8.Checksum(data); got != want {
		t.Errorf("Checksum() not deterministic: %#x != %#x", got, want)
	}
}

func TestValidRoundTrip(t *testing.T) {
	data := []byte{0x40, 0x02, 0x56, 0x66, 0x7F, 0x7F}
	cs := crc8.Checksum(data)
	full := append(append([]byte(nil), data...), cs)
	if !crc8.Valid(full) {
		t.Errorf("Valid(data+checksum) = false, want true")
	}
}

func TestValidRejectsMutation(t *testing.T) {
	data := []byte{0x40, 0x02, 0x56, 0x66, 0x7F, 0x7F}
	cs := crc8.Checksum(data)
	full := append(append([]byte(nil), data...), cs)
	full[0] ^= 0xFF
	if crc8.Valid(full) {
		t.Errorf("Valid(mutated) = true, want false")
	}
}
