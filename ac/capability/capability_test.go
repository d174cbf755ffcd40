package capability_test

import (
	"testing"

	"mideago/ac/capability"
)

func TestDecodeSimpleFeature(t *testing.T) {
	// feature 0x0009 (VWIND), length 1, value 1, trailing count 1.
	body := []byte{0x09, 0x00, 0x01, 0x01, 0x01}
	var set capability.Set
	followUp, err := capability.Decode(&set, body)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if followUp != 1 {
		t.Errorf("followUp = %d, want 1", followUp)
	}
	if !set.VerticalWind {
		t.Errorf("VerticalWind = false, want true")
	}
}

func TestDecodeSilkyCoolTriggersB1(t *testing.T) {
	// feature 0x0018 with b0=1 → NeedsB1Query() true.
	body := []byte{0x18, 0x00, 0x01, 0x01, 0x00}
	var set capability.Set
	if _, err := capability.Decode(&set, body); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !set.Silky {
		t.Fatalf("Silky = false, want true")
	}
	if !set.NeedsB1Query() {
		t.Errorf("NeedsB1Query() = false, want true")
	}
}

func TestDecodeTwoFeatures(t *testing.T) {
	body := []byte{
		0x09, 0x00, 0x01, 0x01, // VWIND = 1
		0x0A, 0x00, 0x01, 0x01, // HWIND = 1
		0x00, // no follow-up
	}
	var set capability.Set
	followUp, err := capability.Decode(&set, body)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if followUp != 0 {
		t.Errorf("followUp = %d, want 0", followUp)
	}
	if !set.VerticalWind || !set.HorizontalWind {
		t.Errorf("VerticalWind=%v HorizontalWind=%v, want both true", set.VerticalWind, set.HorizontalWind)
	}
}

func TestDecodeModes(t *testing.T) {
	body := []byte{0x14, 0x02, 0x01, 0x01, 0x00}
	var set capability.Set
	if _, err := capability.Decode(&set, body); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	want := []string{"cool", "heat", "dry", "auto"}
	if len(set.Modes) != len(want) {
		t.Fatalf("Modes = %v, want %v", set.Modes, want)
	}
	for i := range want {
		if set.Modes[i] != want[i] {
			t.Errorf("Modes[%d] = %q, want %q", i, set.Modes[i], want[i])
		}
	}
}

func TestDecodeModesUnknownValueFallsBack(t *testing.T) {
	body := []byte{0x14, 0x02, 0x01, 0x09, 0x00}
	var set capability.Set
	if _, err := capability.Decode(&set, body); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	want := []string{"cool", "dry", "auto"}
	if len(set.Modes) != len(want) {
		t.Fatalf("Modes = %v, want %v", set.Modes, want)
	}
}

func TestDecodeTurbo(t *testing.T) {
	// b0=0 means strong cool only; b0=3 strong heat only.
	body := []byte{0x1A, 0x02, 0x01, 0x00, 0x00}
	var set capability.Set
	if _, err := capability.Decode(&set, body); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if set.StrongHot || !set.StrongCool {
		t.Errorf("StrongHot=%v StrongCool=%v, want false/true", set.StrongHot, set.StrongCool)
	}

	body = []byte{0x1A, 0x02, 0x01, 0x03, 0x00}
	set = capability.Set{}
	if _, err := capability.Decode(&set, body); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !set.StrongHot || set.StrongCool {
		t.Errorf("StrongHot=%v StrongCool=%v, want true/false", set.StrongHot, set.StrongCool)
	}
}

func TestDecodePowerFunc(t *testing.T) {
	// b0=1 reports BCD-coded power only; b0=4 calibrated binary only.
	body := []byte{0x16, 0x02, 0x01, 0x01, 0x00}
	var set capability.Set
	if _, err := capability.Decode(&set, body); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if set.PowerCal || set.PowerCalSetting || !set.PowerCalBCD {
		t.Errorf("PowerCal=%v PowerCalSetting=%v PowerCalBCD=%v, want false/false/true",
			set.PowerCal, set.PowerCalSetting, set.PowerCalBCD)
	}

	body = []byte{0x16, 0x02, 0x01, 0x04, 0x00}
	set = capability.Set{}
	if _, err := capability.Decode(&set, body); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !set.PowerCal || set.PowerCalSetting || set.PowerCalBCD {
		t.Errorf("PowerCal=%v PowerCalSetting=%v PowerCalBCD=%v, want true/false/false",
			set.PowerCal, set.PowerCalSetting, set.PowerCalBCD)
	}
}

func TestDecodeFilter(t *testing.T) {
	// b0=3 means the filter needs changing without a check reminder.
	body := []byte{0x17, 0x02, 0x01, 0x03, 0x00}
	var set capability.Set
	if _, err := capability.Decode(&set, body); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if set.NestCheck || !set.NestNeedChange {
		t.Errorf("NestCheck=%v NestNeedChange=%v, want false/true", set.NestCheck, set.NestNeedChange)
	}
}

func TestNeedsB1QueryFalseByDefault(t *testing.T) {
	var set capability.Set
	if set.NeedsB1Query() {
		t.Errorf("NeedsB1Query() on zero value = true, want false")
	}
}
