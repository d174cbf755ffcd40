package command_test

import (
	"testing"

	"mideago/ac/command"
	"mideago/ac/state"
	"mideago/internal/crc8"
)

func TestEncodeCoolSetpoint(t *testing.T) {
	// control({mode=cool, target=22.5}) with the fan left on auto.
	p := command.Payload{
		Power:      true,
		Mode:       state.ModeCool,
		TargetTemp: 22.5,
		Fan:        state.FanAuto,
	}
	buf := p.Encode()

	if got, want := buf[2], byte(0x56); got != want {
		t.Errorf("buf[2] = %#x, want %#x", got, want)
	}
	if got, want := buf[18], byte(10); got != want {
		t.Errorf("buf[18] = %d, want %d", got, want)
	}
}

func TestEncodeChecksumValidates(t *testing.T) {
	p := command.Payload{Power: true, Mode: state.ModeCool, TargetTemp: 24, Fan: state.FanAuto}
	buf := p.Encode()
	if !crc8.Valid(buf) {
		t.Errorf("Encode() checksum does not validate")
	}
}

func TestEncodeOffDisablesEcoAndTurbo(t *testing.T) {
	p := command.Payload{Power: false, Mode: state.ModeCool, Eco: true, Turbo: true, TargetTemp: 24, Fan: state.FanAuto}
	buf := p.Encode()
	if buf[9]&0x80 != 0 {
		t.Errorf("eco bit set while power is off")
	}
	if buf[8]&0x20 != 0 {
		t.Errorf("turbo bit set while power is off")
	}
}

func TestEncodeMessageIDAdvances(t *testing.T) {
	p := command.Payload{Power: true, Mode: state.ModeCool, TargetTemp: 24, Fan: state.FanAuto}
	first := p.Encode()[23]
	second := p.Encode()[23]
	if first == second {
		t.Errorf("message id did not advance across Encode() calls: %d == %d", first, second)
	}
}

func TestQueryBodies(t *testing.T) {
	if got, want := command.QueryStatus(), []byte{0x41}; len(got) != len(want) || got[0] != want[0] {
		t.Errorf("QueryStatus() = %v, want %v", got, want)
	}
	if got := command.QueryPower(); len(got) != 1 || got[0] != 0x61 {
		t.Errorf("QueryPower() = %v, want [0x61]", got)
	}
}
