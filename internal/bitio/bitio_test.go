package bitio_test

import (
	"math"
	"testing"

	"mideago/internal/bitio"
)

func TestGetSetBits(t *testing.T) {
	var b byte
	bitio.SetBits(&b, 0x05, bitio.Mask3Bit, 2)
	if got, want := bitio.GetBits(b, bitio.Mask3Bit, 2), byte(0x05); got != want {
		t.Errorf("GetBits() = %#x, want %#x", got, want)
	}
}

func TestGetSetBit(t *testing.T) {
	var b byte
	bitio.SetBit(&b, 3, true)
	if !bitio.GetBit(b, 3) {
		t.Errorf("GetBit(3) = false, want true")
	}
	bitio.SetBit(&b, 3, false)
	if bitio.GetBit(b, 3) {
		t.Errorf("GetBit(3) = true, want false")
	}
}

func TestBCD2(t *testing.T) {
	if got, want := bitio.BCD2(0x42), 42; got != want {
		t.Errorf("BCD2(0x42) = %d, want %d", got, want)
	}
}

func TestBCD5(t *testing.T) {
	// {…,0x00,0x00,0x01,0x00,0x00} → 1000.0.
	got := bitio.BCD5([5]byte{0x00, 0x00, 0x01, 0x00, 0x00})
	if want := 1000.0; got != want {
		t.Errorf("BCD5(...) = %v, want %v", got, want)
	}

	// Asymmetric pattern: the last byte carries weight 1, the one
	// before it weight 100, so {…,0x01,0x23} → (100 + 23)·0.1 = 12.3.
	got = bitio.BCD5([5]byte{0x00, 0x00, 0x00, 0x01, 0x23})
	if want := 12.3; math.Abs(got-want) > 1e-9 {
		t.Errorf("BCD5(...) = %v, want %v", got, want)
	}
}

func TestUint16LERoundTrip(t *testing.T) {
	buf := bitio.PutUint16LE(nil, 0xBEEF)
	if got, want := bitio.Uint16LE(buf), uint16(0xBEEF); got != want {
		t.Errorf("Uint16LE(PutUint16LE(0xBEEF)) = %#x, want %#x", got, want)
	}
}
