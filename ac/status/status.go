// Package status decodes the device-to-host status payloads (0xC0,
// 0xA0, 0xA1) and the 0xC1 power-usage reply.
package status

import (
	"fmt"

	"mideago/ac/state"
	"mideago/internal/bitio"
)

// Report is the union of every field any status payload variant can
// produce. Fields not present in a given payload id keep their Go
// zero value. Several fields here (DoubleTemp, PwmMode, NightLight,
// ...) are decoded but never surfaced by the façade accessors — they
// are preserved verbatim for parity with the wire format rather than
// guessed at.
type Report struct {
	Power       bool
	IModeResume bool
	TimerMode   bool
	Test2       bool
	ErrMark     bool

	TargetTemp float64 // Celsius, half-degree resolution
	Mode       state.Mode
	Fan        state.FanSpeed

	TimerOnMinutes  int
	TimerOffMinutes int

	SwingBits byte

	CosySleep   byte
	Save        bool
	LowFreqFan  bool
	Turbo       bool
	FeelOwn     bool
	ChildSleep  bool
	NaturalFan  bool
	DryClean    bool
	PtcAssist   bool
	Eco         bool
	CleanUp     bool
	SelfFeelOwn bool
	Sleep       bool
	TempUnitF   bool
	ExchangeAir bool
	NightLight  bool
	CatchCold   bool
	PeakElec    bool
	CoolFan     bool

	IndoorTemp  float64
	OutdoorTemp float64

	NewTemp byte
	DusFull bool

	PwmMode byte
	Light   byte

	ErrInfo  byte
	Humidity byte

	SilkyCool       bool
	DoubleTemp      bool
	EightDegreeHeat bool

	// 0xA0-only legacy fields, decoded but not surfaced anywhere.
	SetExpandDot bool
	SetExpand    int
}

func decodeTemperature(integer, decimal int, fahrenheit bool) float64 {
	integer -= 50
	if !fahrenheit && decimal > 0 {
		sign := 1.0
		if integer < 0 {
			sign = -1.0
		}
		return float64(integer)/2 + float64(decimal)*0.1*sign
	}
	if decimal >= 5 {
		sign := 1.0
		if integer < 0 {
			sign = -1.0
		}
		return float64(integer)/2 + 0.5*sign
	}
	return float64(integer) * 0.5
}

// DecodeC0 decodes a 0xC0 status payload. Callers pass the full
// payload including the leading 0xC0 id byte; the trailing CRC byte
// may be present or already stripped, it is not consulted here.
func DecodeC0(payload []byte) (Report, error) {
	if len(payload) < 21 {
		return Report{}, fmt.Errorf("status: 0xC0 payload too short: got %d bytes, want >= 21", len(payload))
	}
	var r Report

	r.Power = bitio.GetBit(payload[1], 0)
	r.IModeResume = bitio.GetBit(payload[1], 2)
	r.TimerMode = bitio.GetBit(payload[1], 4)
	r.Test2 = bitio.GetBit(payload[1], 5)
	r.ErrMark = bitio.GetBit(payload[1], 7)

	targetInt := int(bitio.GetBits(payload[2], bitio.Mask4Bit, 0)) + 16
	half := bitio.GetBit(payload[2], 4)
	r.Mode = state.Mode(bitio.GetBits(payload[2], bitio.Mask3Bit, 5))

	rawFan := bitio.GetBits(payload[3], 0x7F, 0)
	if state.FanSpeed(rawFan) == state.FanFixed {
		r.Fan = state.FanAuto
	} else {
		r.Fan = state.NormalizeFan(rawFan)
	}

	onQuarter := int(payload[4] & 0x7F)
	onEnabled := bitio.GetBit(payload[4], 7)
	offQuarter := int(payload[5] & 0x7F)
	offEnabled := bitio.GetBit(payload[5], 7)
	onFrac := int((payload[6] >> 4) & 0x0F)
	offFrac := int(payload[6] & 0x0F)
	if onEnabled {
		r.TimerOnMinutes = onQuarter*15 + onFrac
	}
	if offEnabled {
		r.TimerOffMinutes = offQuarter*15 + offFrac
	}

	r.SwingBits = bitio.GetBits(payload[7], bitio.Mask4Bit, 0)

	r.CosySleep = bitio.GetBits(payload[8], bitio.Mask2Bit, 0)
	r.Save = bitio.GetBit(payload[8], 3)
	r.LowFreqFan = bitio.GetBit(payload[8], 4)
	r.Turbo = bitio.GetBit(payload[8], 5)
	r.FeelOwn = bitio.GetBit(payload[8], 7)

	r.ChildSleep = bitio.GetBit(payload[9], 0)
	r.NaturalFan = bitio.GetBit(payload[9], 1)
	r.DryClean = bitio.GetBit(payload[9], 2)
	r.PtcAssist = bitio.GetBit(payload[9], 3)
	r.Eco = bitio.GetBit(payload[9], 4)
	r.CleanUp = bitio.GetBit(payload[9], 5)
	r.SelfFeelOwn = bitio.GetBit(payload[9], 7)

	// Some firmware revisions mirror Sleep at byte 9 bit 6; byte 10
	// bit 0 is the one the device keeps current, so only it is read.
	r.Sleep = bitio.GetBit(payload[10], 0)
	r.Turbo = r.Turbo || bitio.GetBit(payload[10], 1)
	r.TempUnitF = bitio.GetBit(payload[10], 2)
	r.ExchangeAir = bitio.GetBit(payload[10], 3)
	r.NightLight = bitio.GetBit(payload[10], 4)
	r.CatchCold = bitio.GetBit(payload[10], 5)
	r.PeakElec = bitio.GetBit(payload[10], 6)
	r.CoolFan = bitio.GetBit(payload[10], 7)

	indoorInt := int(payload[11])
	outdoorInt := int(payload[12])
	indoorDec := int(payload[15] & 0x0F)
	outdoorDec := int((payload[15] >> 4) & 0x0F)
	r.IndoorTemp = decodeTemperature(indoorInt, indoorDec, r.TempUnitF)
	r.OutdoorTemp = decodeTemperature(outdoorInt, outdoorDec, r.TempUnitF)

	r.NewTemp = bitio.GetBits(payload[13], bitio.Mask4Bit, 0)
	r.DusFull = bitio.GetBit(payload[13], 5)

	r.PwmMode = bitio.GetBits(payload[14], bitio.Mask4Bit, 0)
	r.Light = bitio.GetBits(payload[14], bitio.Mask3Bit, 4)

	if len(payload) > 16 {
		r.ErrInfo = payload[16]
	}
	if len(payload) > 19 {
		r.Humidity = bitio.GetBits(payload[19], bitio.Mask7Bit, 0)
	}

	if r.NewTemp != 0 {
		targetInt = int(r.NewTemp) + 12
	}
	r.TargetTemp = float64(targetInt)
	if half {
		r.TargetTemp += 0.5
	}

	if len(payload) >= 23 {
		r.SilkyCool = bitio.GetBit(payload[22], 3)
	}
	if len(payload) >= 24 {
		r.DoubleTemp = bitio.GetBit(payload[21], 6)
		r.EightDegreeHeat = bitio.GetBit(payload[21], 7)
	}

	return r, nil
}

// DecodeA0 decodes the older 0xA0 status payload layout.
func DecodeA0(payload []byte) (Report, error) {
	if len(payload) < 14 {
		return Report{}, fmt.Errorf("status: 0xA0 payload too short: got %d bytes, want >= 14", len(payload))
	}
	var r Report

	r.Power = bitio.GetBit(payload[1], 0)
	targetInt := int(bitio.GetBits(payload[1], bitio.Mask5Bit, 1)) + 12
	half := bitio.GetBit(payload[1], 6)
	r.ErrMark = bitio.GetBit(payload[1], 7)
	r.TargetTemp = float64(targetInt)
	if half {
		r.TargetTemp += 0.5
	}

	r.Mode = state.Mode(bitio.GetBits(payload[2], bitio.Mask3Bit, 5))

	rawFan := bitio.GetBits(payload[3], 0x7F, 0)
	// Note: FAN_FIXED is NOT remapped to auto for 0xA0, unlike 0xC0.
	r.Fan = state.NormalizeFan(rawFan)

	onQuarter := int(payload[4] & 0x7F)
	onEnabled := bitio.GetBit(payload[4], 7)
	offQuarter := int(payload[5] & 0x7F)
	offEnabled := bitio.GetBit(payload[5], 7)
	onFrac := int((payload[6] >> 4) & 0x0F)
	offFrac := int(payload[6] & 0x0F)
	if onEnabled {
		r.TimerOnMinutes = onQuarter*15 + onFrac
	}
	if offEnabled {
		r.TimerOffMinutes = offQuarter*15 + offFrac
	}

	r.SwingBits = bitio.GetBits(payload[7], bitio.Mask4Bit, 0)

	r.CosySleep = bitio.GetBits(payload[8], bitio.Mask2Bit, 0)
	r.Save = bitio.GetBit(payload[8], 3)
	r.LowFreqFan = bitio.GetBit(payload[8], 4)
	r.Turbo = bitio.GetBit(payload[8], 5)
	r.FeelOwn = bitio.GetBit(payload[8], 7)

	r.ExchangeAir = bitio.GetBit(payload[9], 1)
	r.DryClean = bitio.GetBit(payload[9], 2)
	r.PtcAssist = bitio.GetBit(payload[9], 3)
	r.Eco = bitio.GetBit(payload[9], 4)
	r.CleanUp = bitio.GetBit(payload[9], 5)
	r.TempUnitF = bitio.GetBit(payload[9], 7)

	r.Sleep = bitio.GetBit(payload[10], 0)
	r.Turbo = r.Turbo || bitio.GetBit(payload[10], 1)
	r.CatchCold = bitio.GetBit(payload[10], 3)
	r.NightLight = bitio.GetBit(payload[10], 4)
	r.PeakElec = bitio.GetBit(payload[10], 5)
	r.NaturalFan = bitio.GetBit(payload[10], 6)

	r.PwmMode = bitio.GetBits(payload[11], bitio.Mask4Bit, 0)
	r.Light = bitio.GetBits(payload[11], bitio.Mask3Bit, 4)

	if len(payload) > 12 {
		r.SetExpandDot = bitio.GetBit(payload[12], 0)
		r.SetExpand = int(bitio.GetBits(payload[12], bitio.Mask5Bit, 1)) + 12
		r.DoubleTemp = bitio.GetBit(payload[12], 6)
		r.EightDegreeHeat = bitio.GetBit(payload[12], 7)
	}
	if len(payload) > 13 {
		r.Humidity = payload[13]
	}
	if len(payload) > 14 {
		r.SilkyCool = bitio.GetBit(payload[14], 3)
	}

	return r, nil
}

// DecodeA1 decodes the ambient-only 0xA1 status payload.
func DecodeA1(payload []byte) (Report, error) {
	if len(payload) < 18 {
		return Report{}, fmt.Errorf("status: 0xA1 payload too short: got %d bytes, want >= 18", len(payload))
	}
	var r Report
	r.IndoorTemp = (float64(payload[13]) - 50) * 0.5
	r.OutdoorTemp = (float64(int8(payload[14])) - 50) * 0.5
	r.Humidity = payload[17] & 0x7F
	return r, nil
}

// DecodePowerUsage decodes the 0xC1 power-usage reply: a 5-byte
// weighted BCD field (payload offsets 14..18, most significant byte
// first, isolated here once the caller has located the field).
func DecodePowerUsage(b [5]byte) float64 {
	return bitio.BCD5(b)
}
