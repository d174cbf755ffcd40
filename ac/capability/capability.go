// Package capability decodes the 0xB5 capability-report payload (and
// its chained follow-up frames) into a capability Set. 0xB1 property
// replies are parsed by ac/property; their values are not merged into
// a Set.
package capability

import "fmt"

// Feature ids as they appear in 0xB5 records.
const (
	featureVWind      = 0x0009
	featureHWind      = 0x000A
	featureHumidity   = 0x0015
	featureSilkyCool  = 0x0018
	featureEcoEye     = 0x0030
	featureWindOnMe   = 0x0032
	featureWindOffMe  = 0x0033
	featureSelfClean  = 0x0039
	featureBreezeAway = 0x0042
	featureBreezeless = 0x0043
	featureFan        = 0x0210
	featureEco        = 0x0212
	feature8Heat      = 0x0213
	featureModes      = 0x0214
	featureSwing      = 0x0215
	featurePower      = 0x0216
	featureFilter     = 0x0217
	featureAuxHeater  = 0x0219
	featureTurbo      = 0x021A
	featureFahrenheit = 0x0222
	featureLight      = 0x0224
	featureTemp       = 0x0225
	featureBuzzer     = 0x022C
	featureTwins      = 0x0232
	featureFourDir    = 0x0233
)

// TempRange is a per-mode min/max pair, half-degree resolution.
type TempRange struct {
	Min float64
	Max float64
}

// Set is the decoded device capability bitmask.
type Set struct {
	VerticalWind   bool
	HorizontalWind bool

	HumidityAuto bool
	HumidityHand bool

	Silky bool

	SmartEye      bool
	BlowingPeople bool
	AvoidPeople   bool

	SelfClean    bool
	OneKeyNoWind bool
	Breeze       bool

	HasWindSpeed bool
	NoWindSpeed  bool

	Eco        bool
	SpecialEco bool

	EightHot bool

	Modes []string // fixed 5-combination of {cool,heat,dry,auto,wind}

	SwingUpDown    bool
	SwingLeftRight bool

	PowerCal        bool
	PowerCalSetting bool
	PowerCalBCD     bool

	NestCheck      bool
	NestNeedChange bool

	Dianfure bool // auxiliary electric heater

	StrongHot  bool
	StrongCool bool

	UnitChangeable bool

	LightType byte

	TempCool    TempRange
	TempAuto    TempRange
	TempHeat    TempRange
	IsHavePoint bool

	Buzzer bool

	IsTwins         bool
	IsFourDirection bool
}

func humidity(s *Set, b []byte) {
	switch b[0] {
	case 0:
		s.HumidityAuto, s.HumidityHand = false, false
	case 1:
		s.HumidityAuto, s.HumidityHand = true, false
	case 2:
		s.HumidityAuto, s.HumidityHand = true, true
	case 3:
		s.HumidityAuto, s.HumidityHand = false, true
	}
}

func modes(s *Set, b []byte) {
	switch b[0] {
	case 1:
		s.Modes = []string{"cool", "heat", "dry", "auto"}
	case 2:
		s.Modes = []string{"heat", "auto"}
	case 3:
		s.Modes = []string{"cool"}
	case 4:
		s.Modes = []string{"cool", "heat", "wind"}
	case 5:
		s.Modes = []string{"cool", "dry", "wind"}
	default:
		s.Modes = []string{"cool", "dry", "auto"}
	}
}

func swing(s *Set, b []byte) {
	switch b[0] {
	case 0:
		s.SwingUpDown, s.SwingLeftRight = true, false
	case 1:
		s.SwingUpDown, s.SwingLeftRight = true, true
	case 2:
		s.SwingUpDown, s.SwingLeftRight = false, false
	case 3:
		s.SwingUpDown, s.SwingLeftRight = false, true
	}
}

func power(s *Set, b []byte) {
	switch b[0] {
	case 0, 1:
		s.PowerCal = false
		s.PowerCalSetting = false
		s.PowerCalBCD = true
	case 2:
		s.PowerCal = true
		s.PowerCalSetting = false
		s.PowerCalBCD = true
	case 3:
		s.PowerCal = true
		s.PowerCalSetting = true
		s.PowerCalBCD = true
	case 4:
		s.PowerCal = true
		s.PowerCalSetting = false
		s.PowerCalBCD = false
	case 5:
		s.PowerCal = true
		s.PowerCalSetting = true
		s.PowerCalBCD = false
	}
}

func filter(s *Set, b []byte) {
	switch b[0] {
	case 0:
		s.NestCheck = false
		s.NestNeedChange = false
	case 1, 2:
		s.NestCheck = true
		s.NestNeedChange = false
	case 3:
		s.NestCheck = false
		s.NestNeedChange = true
	case 4:
		s.NestCheck = true
		s.NestNeedChange = true
	}
}

func turbo(s *Set, b []byte) {
	switch b[0] {
	case 0:
		s.StrongHot = false
		s.StrongCool = true
	case 1:
		s.StrongHot = true
		s.StrongCool = true
	case 2:
		s.StrongHot = false
		s.StrongCool = false
	case 3:
		s.StrongHot = true
		s.StrongCool = false
	}
}

func temp(s *Set, b []byte) {
	if len(b) < 6 {
		return
	}
	s.TempCool = TempRange{Min: float64(b[0]) / 2, Max: float64(b[1]) / 2}
	s.TempAuto = TempRange{Min: float64(b[2]) / 2, Max: float64(b[3]) / 2}
	s.TempHeat = TempRange{Min: float64(b[4]) / 2, Max: float64(b[5]) / 2}
	if len(b) >= 7 {
		s.IsHavePoint = b[6] != 0
	}
}

var decoders = map[uint16]func(*Set, []byte){
	featureVWind:      func(s *Set, b []byte) { s.VerticalWind = b[0] == 1 },
	featureHWind:      func(s *Set, b []byte) { s.HorizontalWind = b[0] == 1 },
	featureHumidity:   humidity,
	featureSilkyCool:  func(s *Set, b []byte) { s.Silky = b[0] != 0 },
	featureEcoEye:     func(s *Set, b []byte) { s.SmartEye = b[0] == 1 },
	featureWindOnMe:   func(s *Set, b []byte) { s.BlowingPeople = b[0] == 1 },
	featureWindOffMe:  func(s *Set, b []byte) { s.AvoidPeople = b[0] == 1 },
	featureSelfClean:  func(s *Set, b []byte) { s.SelfClean = b[0] == 1 },
	featureBreezeAway: func(s *Set, b []byte) { s.OneKeyNoWind = b[0] == 1 },
	featureBreezeless: func(s *Set, b []byte) { s.Breeze = b[0] == 1 },
	featureFan: func(s *Set, b []byte) {
		s.HasWindSpeed = b[0] != 0
		s.NoWindSpeed = b[0] == 1
	},
	featureEco: func(s *Set, b []byte) {
		s.Eco = b[0] == 1
		s.SpecialEco = b[0] == 2
	},
	feature8Heat:      func(s *Set, b []byte) { s.EightHot = b[0] == 1 },
	featureModes:      modes,
	featureSwing:      swing,
	featurePower:      power,
	featureFilter:     filter,
	featureAuxHeater:  func(s *Set, b []byte) { s.Dianfure = b[0] == 1 },
	featureTurbo:      turbo,
	featureFahrenheit: func(s *Set, b []byte) { s.UnitChangeable = b[0] == 0 },
	featureLight:      func(s *Set, b []byte) { s.LightType = b[0] },
	featureTemp:       temp,
	featureBuzzer:     func(s *Set, b []byte) { s.Buzzer = b[0] != 0 },
	featureTwins:      func(s *Set, b []byte) { s.IsTwins = b[0] == 1 },
	featureFourDir:    func(s *Set, b []byte) { s.IsFourDirection = b[0] == 1 },
}

// Decode parses one 0xB5 payload (including its leading 0xB5 id and
// trailing CRC-8, both stripped by the caller before this is called)
// into (possibly partial) capability flags, returning the trailing
// follow-up id: zero means no further 0xB5 frame is expected, nonzero
// is the feature id the device wants queried next.
func Decode(into *Set, body []byte) (followUp byte, err error) {
	pos := 0
	for pos+3 <= len(body)-1 { // last byte is the trailing count
		feature := uint16(body[pos]) | uint16(body[pos+1])<<8
		length := int(body[pos+2])
		start := pos + 3
		end := start + length
		if end > len(body)-1 {
			return 0, fmt.Errorf("capability: record for feature 0x%04x overruns payload", feature)
		}
		if dec, ok := decoders[feature]; ok && length > 0 {
			dec(into, body[start:end])
		}
		pos = end
	}
	if len(body) == 0 {
		return 0, nil
	}
	return body[len(body)-1], nil
}

// NeedsB1Query reports whether any capability that is only fully
// resolved via a 0xB1 property query is present.
func (s Set) NeedsB1Query() bool {
	return s.Silky || s.SelfClean || s.OneKeyNoWind || s.Breeze || s.Buzzer ||
		s.SmartEye || s.HumidityAuto || s.HumidityHand ||
		s.VerticalWind || s.HorizontalWind || s.IsTwins || s.IsFourDirection
}
