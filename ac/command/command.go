// Package command builds the host-to-device payloads: the 24-byte
// 0x40 control command, and the one-byte 0x41 query/display-toggle
// bodies.
package command

import (
	"sync"

	"mideago/ac/state"
	"mideago/internal/bitio"
	"mideago/internal/crc8"
)

// messageID is a process-wide rolling 8-bit counter, advanced each
// time a command payload is built so device responses can be
// correlated off-band. The driver core is single-threaded, but Encode
// is callable from anywhere, so the counter keeps its own lock.
var messageID struct {
	sync.Mutex
	counter byte
}

func nextMessageID() byte {
	messageID.Lock()
	defer messageID.Unlock()
	id := messageID.counter
	messageID.counter++
	return id
}

// Timer describes an on/off timer to encode into a 0x40 payload.
type Timer struct {
	Enabled bool
	Minutes int // total minutes, decomposed into quarter-hours + remainder
}

// Payload holds every field the 0x40 command body can carry. The
// façade only ever drives Power/Mode/TargetTemp/Fan/Swing/presets and
// Beeper from a Control intent; the remaining fields exist so the
// encoding is complete and testable, and default to their zero value
// (matching what a real device sees for settings the façade does not
// manage).
type Payload struct {
	Power       bool
	IModeResume bool
	ChildSleep  bool
	TimerMode   bool
	Test2       bool
	Beeper      bool

	Mode       state.Mode
	TargetTemp float64 // Celsius, half-degree resolution
	Fan        state.FanSpeed

	TimerOn  Timer
	TimerOff Timer

	SwingBits byte

	CosySleep       byte
	Save            bool
	LowFreqFan      bool
	Turbo           bool
	PowerSaver      bool
	FeelOwn         bool
	AlarmSleep      bool
	WiseEye         bool
	ExchangeAir     bool
	DryClean        bool
	PtcAssist       bool
	PtcButton       bool
	CleanUp         bool
	ChangeCosySleep bool
	Eco             bool
	Sleep           bool
	TempUnitF       bool
	CatchCold       bool
	NightLight      bool
	PeakElec        bool
	DusFull         bool
	CleanFanTime    bool
	NaturalFan      bool

	Humidity byte

	SetExpandDot    bool
	SetExpand       int
	DoubleTemp      bool
	EightDegreeHeat bool
}

func clamp(v, lo, hi int) int {
	if v < lo || v > hi {
		return lo
	}
	return v
}

// Encode renders the payload to its wire form: the 24-byte body
// (leading 0x40 payload id through the message id at byte 23)
// followed by a trailing CRC-8, 25 bytes in all.
func (p Payload) Encode() []byte {
	power := p.Power
	mode := p.Mode
	eco := p.Eco
	turbo := p.Turbo
	fan := p.Fan

	// If power is off or mode is fan-only, eco/turbo cannot be active.
	if !power || mode == state.ModeFan {
		eco = false
		turbo = false
	}
	// Fixed fan speed is only kept in dry mode; elsewhere it becomes auto.
	if mode != state.ModeDry && fan == state.FanFixed {
		fan = state.FanAuto
	}

	targetInt := int(p.TargetTemp)
	half := p.TargetTemp-float64(targetInt) >= 0.5

	setTempNew := ((targetInt-12)%32 + 32) % 32
	tempLow := clamp(targetInt-16, 1, 14)

	buf := make([]byte, 24)
	buf[0] = 0x40

	buf[1] = 0x02
	if power {
		buf[1] |= 0x01
	}
	if p.IModeResume {
		buf[1] |= 0x04
	}
	if p.ChildSleep {
		buf[1] |= 0x08
	}
	if p.TimerMode {
		buf[1] |= 0x10
	}
	if p.Test2 {
		buf[1] |= 0x20
	}
	if p.Beeper {
		buf[1] |= 0x40
	}

	buf[2] = byte(mode)<<5 | byte(bitio.BoolByte(half))<<4 | byte(tempLow)

	buf[3] = byte(fan) & 0x7F

	buf[4] = 0x7F
	if p.TimerOn.Enabled {
		buf[4] = 0x80 | byte(p.TimerOn.Minutes/15)
		buf[6] |= byte((p.TimerOn.Minutes % 15) << 4)
	}
	buf[5] = 0x7F
	if p.TimerOff.Enabled {
		buf[5] = 0x80 | byte(p.TimerOff.Minutes/15)
		buf[6] |= byte(p.TimerOff.Minutes % 15)
	}

	buf[7] = 0x30 | (p.SwingBits & bitio.Mask4Bit)

	buf[8] = p.CosySleep % 4
	if p.AlarmSleep {
		buf[8] |= 0x04
	}
	if p.Save {
		buf[8] |= 0x08
	}
	if p.LowFreqFan {
		buf[8] |= 0x10
	}
	if turbo {
		buf[8] |= 0x20
	}
	if p.PowerSaver {
		buf[8] |= 0x40
	}
	if p.FeelOwn {
		buf[8] |= 0x80
	}

	if p.WiseEye {
		buf[9] |= 0x01
	}
	if p.ExchangeAir {
		buf[9] |= 0x02
	}
	if p.DryClean {
		buf[9] |= 0x04
	}
	if p.PtcAssist {
		buf[9] |= 0x08
	}
	if p.PtcButton {
		buf[9] |= 0x10
	}
	if p.CleanUp {
		buf[9] |= 0x20
	}
	if p.ChangeCosySleep {
		buf[9] |= 0x40
	}
	if eco {
		buf[9] |= 0x80
	}

	if p.Sleep {
		buf[10] |= 0x01
	}
	if turbo {
		buf[10] |= 0x02
	}
	if p.TempUnitF {
		buf[10] |= 0x04
	}
	if p.CatchCold {
		buf[10] |= 0x08
	}
	if p.NightLight {
		buf[10] |= 0x10
	}
	if p.PeakElec {
		buf[10] |= 0x20
	}
	if p.DusFull {
		buf[10] |= 0x40
	}
	if p.CleanFanTime {
		buf[10] |= 0x80
	}

	if p.NaturalFan {
		buf[15] |= 0x40
	}

	buf[18] = byte(setTempNew)
	buf[19] = p.Humidity

	if p.SetExpandDot {
		buf[21] |= 0x01
	}
	buf[21] |= byte(p.SetExpand%32) << 1
	if p.DoubleTemp {
		buf[21] |= 0x40
	}
	if p.EightDegreeHeat {
		buf[21] |= 0x80
	}

	buf[23] = nextMessageID()

	return append(buf, crc8.Checksum(buf))
}

// QueryCapabilities builds the 0xB5 capability query body, optionally
// naming the follow-up id a previous report's trailing count byte
// requested.
func QueryCapabilities(followUp byte) []byte {
	buf := []byte{0xB5}
	if followUp != 0 {
		buf = append(buf, followUp)
	}
	return append(buf, crc8.Checksum(buf))
}

// QueryStatus builds the 0xC0/0xA0 status query body issued by the
// façade's periodic status poll.
func QueryStatus() []byte {
	return []byte{0x41}
}

// ToggleDisplay builds the fire-and-forget display-toggle body.
func ToggleDisplay() []byte {
	return []byte{0x41}
}

// QueryPower builds the 0xC1 power-usage query body.
func QueryPower() []byte {
	return []byte{0x61}
}
