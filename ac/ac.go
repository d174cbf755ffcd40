// Package ac is the air-conditioner appliance façade: the public API
// consumed by the host binary, backed by cached device state that the
// dispatcher's callbacks update from device reports and that Control
// merges caller intents into.
package ac

import (
	"fmt"
	"html/template"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"mideago/ac/capability"
	"mideago/ac/command"
	"mideago/ac/property"
	"mideago/ac/state"
	"mideago/ac/status"
	"mideago/internal/dispatch"
	"mideago/internal/frame"
	"mideago/internal/netinfo"
	"mideago/internal/timer"
)

const (
	cooldownMS        = 1000
	responseTimeoutMS = 2000
	defaultAttempts   = 3
	statusPollMS      = 30_000
	powerPollMS       = 60_000
	heartbeatMS       = 2 * 60 * 1000
)

// AirConditioner is the cached, dispatcher-fed view of one indoor
// unit, plus the control surface callers use to drive it.
type AirConditioner struct {
	dispatcher *dispatch.Dispatcher
	timers     *timer.Service
	net        netinfo.Provider

	protocol byte

	report workingState
	caps   capability.Set
	beeper bool

	lastIdleMS       int64
	lastStatusPollMS int64
}

// workingState mirrors ac/status.Report's exported fields the façade
// cares about, kept as a small local alias so accessor signatures
// don't leak the codec package's full decode surface.
type workingState struct {
	power       bool
	mode        state.Mode
	targetTemp  float64
	fan         state.FanSpeed
	swing       state.Swing
	preset      state.Preset
	indoorTemp  float64
	outdoorTemp float64
	humidity    byte
	powerUsage  float64
	filterFull  bool
	errorCode   byte
	timerOnMin  int
	timerOffMin int
}

var (
	gaugePower = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mideago", Subsystem: "ac", Name: "power", Help: "1 if the unit is on, else 0.",
	})
	gaugeTargetTemp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mideago", Subsystem: "ac", Name: "target_temp_celsius", Help: "Commanded target temperature.",
	})
	gaugeIndoorTemp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mideago", Subsystem: "ac", Name: "indoor_temp_celsius", Help: "Reported indoor temperature.",
	})
	gaugeOutdoorTemp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mideago", Subsystem: "ac", Name: "outdoor_temp_celsius", Help: "Reported outdoor temperature.",
	})
	gaugeHumidity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mideago", Subsystem: "ac", Name: "humidity_percent", Help: "Reported indoor relative humidity.",
	})
	gaugePowerUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mideago", Subsystem: "ac", Name: "power_usage_kwh", Help: "Cumulative reported energy usage.",
	})
)

func init() {
	prometheus.MustRegister(gaugePower, gaugeTargetTemp, gaugeIndoorTemp, gaugeOutdoorTemp, gaugeHumidity, gaugePowerUsage)
}

// New constructs a façade over transport, ready for Setup. The fan
// defaults to auto until the device reports otherwise.
func New(transport dispatch.Transport, net netinfo.Provider) *AirConditioner {
	a := &AirConditioner{net: net, protocol: 0x00, timers: timer.New()}
	a.report.fan = state.FanAuto
	a.dispatcher = dispatch.New(transport, dispatch.Hooks{
		OnIdle:               a.onIdle,
		OnUnsolicited:        a.onUnsolicited,
		NetworkNotifyPayload: a.networkNotifyPayload,
	}, cooldownMS, heartbeatMS)
	return a
}

// Setup enqueues the startup capability discovery chain and arms the
// periodic power-usage poll. Call once before the first Tick.
func (a *AirConditioner) Setup(nowMS int64) {
	a.queryCapabilities(0)
	a.lastStatusPollMS = nowMS
	a.timers.Every(nowMS, powerPollMS, func() { a.queryPower() })
}

// onIdle is the dispatcher's idle hook: it rearms the periodic status
// poll once statusPollMS has elapsed since the last one.
func (a *AirConditioner) onIdle(d *dispatch.Dispatcher) {
	if a.lastIdleMS-a.lastStatusPollMS < statusPollMS {
		return
	}
	a.lastStatusPollMS = a.lastIdleMS
	a.queryStatus()
}

// Receive feeds one fully-assembled inbound frame from the transport
// into the dispatcher. The caller's frame deserializer produces these.
func (a *AirConditioner) Receive(f frame.Frame, nowMS int64) {
	a.dispatcher.Receive(f, nowMS)
}

// Tick drives the timer service and dispatcher and must be called
// regularly from the host's event loop with a monotonic millisecond
// clock reading.
func (a *AirConditioner) Tick(nowMS int64) {
	a.lastIdleMS = nowMS
	a.timers.Advance(nowMS)
	a.dispatcher.Tick(nowMS)
}

func (a *AirConditioner) send(typ frame.Type, payload []byte, onData dispatch.OnData, onSuccess, onError func()) {
	a.dispatcher.Enqueue(&dispatch.Request{
		Kind:      frame.AirConditioner,
		Protocol:  a.protocol,
		Type:      typ,
		Payload:   payload,
		OnData:    onData,
		OnSuccess: onSuccess,
		OnError:   onError,
		Attempts:  defaultAttempts,
		TimeoutMS: responseTimeoutMS,
	})
}

func (a *AirConditioner) queryCapabilities(followUp byte) {
	a.send(frame.Query, command.QueryCapabilities(followUp), func(f frame.Frame) dispatch.Outcome {
		if len(f.Payload) == 0 || f.Payload[0] != 0xB5 {
			return dispatch.Wrong
		}
		next, err := capability.Decode(&a.caps, f.Payload[1:len(f.Payload)-1])
		if err != nil {
			log.Printf("ac: capability decode: %v", err)
			return dispatch.Wrong
		}
		if next != 0 {
			a.queryCapabilities(next)
			return dispatch.Ok
		}
		if a.caps.NeedsB1Query() {
			a.queryProperties()
		}
		return dispatch.Ok
	}, nil, nil)
}

// queryProperties builds a 0xB1 query covering every capability whose
// full state is only reported through properties.
func (a *AirConditioner) queryProperties() {
	var uuids []uint16
	if a.caps.Silky {
		uuids = append(uuids, property.UUIDSilkyCool)
	}
	if a.caps.BlowingPeople {
		uuids = append(uuids, property.UUIDWindOnMe)
	}
	if a.caps.AvoidPeople {
		uuids = append(uuids, property.UUIDWindOffMe)
	}
	if a.caps.SelfClean {
		uuids = append(uuids, property.UUIDSelfClean)
	}
	if a.caps.OneKeyNoWind {
		uuids = append(uuids, property.UUIDBreezeAway)
	}
	if a.caps.Breeze {
		uuids = append(uuids, property.UUIDBreezeless)
	}
	if a.caps.SmartEye {
		uuids = append(uuids, property.UUIDSmartEye)
	}
	if a.caps.Buzzer {
		uuids = append(uuids, property.UUIDBuzzer)
	}
	if a.caps.HumidityAuto || a.caps.HumidityHand {
		uuids = append(uuids, property.UUIDHumidity)
	}
	if a.caps.VerticalWind {
		uuids = append(uuids, property.UUIDVWind)
	}
	if a.caps.HorizontalWind {
		uuids = append(uuids, property.UUIDHWind)
	}
	if a.caps.IsTwins {
		uuids = append(uuids, property.UUIDTwins)
	}
	if a.caps.IsFourDirection {
		uuids = append(uuids, property.UUIDFourDirection)
	}
	if len(uuids) == 0 {
		return
	}
	payload := property.BuildQuery(uuids)
	a.send(frame.Query, payload, func(f frame.Frame) dispatch.Outcome {
		if len(f.Payload) == 0 || f.Payload[0] != 0xB1 {
			return dispatch.Wrong
		}
		if _, err := property.ParseReply(f.Payload[1 : len(f.Payload)-1]); err != nil {
			log.Printf("ac: property decode: %v", err)
			return dispatch.Wrong
		}
		return dispatch.Ok
	}, nil, nil)
}

func (a *AirConditioner) queryStatus() {
	a.send(frame.Query, command.QueryStatus(), func(f frame.Frame) dispatch.Outcome {
		return a.acceptStatus(f)
	}, nil, nil)
}

func (a *AirConditioner) queryPower() {
	a.send(frame.Query, command.QueryPower(), func(f frame.Frame) dispatch.Outcome {
		if len(f.Payload) < 19 || f.Payload[0] != 0xC1 {
			return dispatch.Wrong
		}
		var b [5]byte
		copy(b[:], f.Payload[14:19])
		a.report.powerUsage = status.DecodePowerUsage(b)
		return dispatch.Ok
	}, nil, nil)
}

func (a *AirConditioner) acceptStatus(f frame.Frame) dispatch.Outcome {
	if len(f.Payload) == 0 {
		return dispatch.Wrong
	}
	var (
		r   status.Report
		err error
	)
	switch f.Payload[0] {
	case 0xC0:
		r, err = status.DecodeC0(f.Payload)
	case 0xA0:
		r, err = status.DecodeA0(f.Payload)
	case 0xA1:
		r, err = status.DecodeA1(f.Payload)
	default:
		return dispatch.Wrong
	}
	if err != nil {
		log.Printf("ac: status decode: %v", err)
		return dispatch.Ok
	}
	a.applyReport(f.Payload[0], r)
	a.publishMetrics()
	return dispatch.Ok
}

// applyReport merges a decoded status report into the cached working
// state. 0xA1 only carries ambient readings, so it never overwrites
// control fields the device didn't actually report.
func (a *AirConditioner) applyReport(payloadID byte, r status.Report) {
	if payloadID == 0xA1 {
		a.report.indoorTemp = r.IndoorTemp
		a.report.outdoorTemp = r.OutdoorTemp
		a.report.humidity = r.Humidity
		return
	}
	a.report.power = r.Power
	a.report.mode = r.Mode
	a.report.targetTemp = r.TargetTemp
	a.report.fan = r.Fan
	a.report.swing = state.Swing(r.SwingBits)
	a.report.indoorTemp = r.IndoorTemp
	a.report.outdoorTemp = r.OutdoorTemp
	a.report.humidity = r.Humidity
	a.report.filterFull = r.DusFull
	a.report.errorCode = r.ErrInfo
	a.report.timerOnMin = r.TimerOnMinutes
	a.report.timerOffMin = r.TimerOffMinutes
	a.report.preset = presetOf(r)
}

// presetOf maps the mutually exclusive preset flags a status report
// carries back to the façade's Preset enum.
func presetOf(r status.Report) state.Preset {
	switch {
	case r.Eco:
		return state.PresetEco
	case r.Turbo:
		return state.PresetTurbo
	case r.Sleep:
		return state.PresetSleep
	case r.EightDegreeHeat:
		return state.PresetFreezeProtection
	}
	return state.PresetNone
}

func (a *AirConditioner) publishMetrics() {
	gaugePower.Set(boolFloat(a.report.power))
	gaugeTargetTemp.Set(a.report.targetTemp)
	gaugeIndoorTemp.Set(a.report.indoorTemp)
	gaugeOutdoorTemp.Set(a.report.outdoorTemp)
	gaugeHumidity.Set(float64(a.report.humidity))
	gaugePowerUsage.Set(a.report.powerUsage)
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (a *AirConditioner) onUnsolicited(f frame.Frame) {
	if len(f.Payload) == 0 {
		return
	}
	switch f.Payload[0] {
	case 0xC0, 0xA0, 0xA1:
		a.acceptStatus(f)
		a.publishMetrics()
	}
}

func (a *AirConditioner) networkNotifyPayload() []byte {
	connected := byte(0)
	if a.net != nil && a.net.IsConnected() {
		connected = 1
	}
	bars := byte(0)
	var ip [4]byte
	if a.net != nil {
		bars = byte(a.net.SignalBars())
		ip = a.net.LocalIPv4()
	}
	return []byte{connected, bars, ip[0], ip[1], ip[2], ip[3]}
}

// Control merges intent into the working state and sends it to the
// device as a SET command.
func (a *AirConditioner) Control(intent state.Control) {
	if intent.Power != nil {
		a.report.power = *intent.Power
	}
	if intent.Mode != nil {
		a.report.mode = *intent.Mode
	}
	if intent.TargetTemp != nil {
		a.report.targetTemp = *intent.TargetTemp
	}
	if intent.Fan != nil {
		a.report.fan = *intent.Fan
	}
	if intent.Swing != nil {
		a.report.swing = *intent.Swing
	}
	if intent.Preset != nil {
		a.report.preset = *intent.Preset
	}
	a.sendControl()
}

func (a *AirConditioner) sendControl() {
	p := command.Payload{
		Power:      a.report.power,
		Mode:       a.report.mode,
		TargetTemp: a.report.targetTemp,
		Fan:        a.report.fan,
		SwingBits:  byte(a.report.swing),
		Beeper:     a.beeper,
		Eco:        a.report.preset == state.PresetEco,
		Turbo:      a.report.preset == state.PresetTurbo,
		Sleep:      a.report.preset == state.PresetSleep,

		EightDegreeHeat: a.report.preset == state.PresetFreezeProtection,
	}
	a.send(frame.Set, p.Encode(), func(f frame.Frame) dispatch.Outcome {
		return a.acceptStatus(f)
	}, nil, nil)
}

// SetPower is shorthand for Control({Power: &v}).
func (a *AirConditioner) SetPower(on bool) {
	a.Control(state.Control{Power: &on})
}

// TogglePower flips the cached power state and sends it.
func (a *AirConditioner) TogglePower() {
	on := !a.report.power
	a.SetPower(on)
}

// DisplayToggle sends the fire-and-forget display toggle command.
func (a *AirConditioner) DisplayToggle() {
	a.send(frame.Set, command.ToggleDisplay(), nil, nil, nil)
}

// SetBeeper sets the global audible-acknowledgement preference
// propagated into every subsequent 0x40 command payload.
func (a *AirConditioner) SetBeeper(on bool) {
	a.beeper = on
}

// SetPreset clears every other preset flag before applying x.
func (a *AirConditioner) SetPreset(x state.Preset) {
	a.Control(state.Control{Preset: &x})
}

func (a *AirConditioner) Power() bool                  { return a.report.power }
func (a *AirConditioner) Mode() state.Mode             { return a.report.mode }
func (a *AirConditioner) TargetTemp() float64          { return a.report.targetTemp }
func (a *AirConditioner) Fan() state.FanSpeed          { return a.report.fan }
func (a *AirConditioner) Swing() state.Swing           { return a.report.swing }
func (a *AirConditioner) Preset() state.Preset         { return a.report.preset }
func (a *AirConditioner) IndoorTemp() float64          { return a.report.indoorTemp }
func (a *AirConditioner) OutdoorTemp() float64         { return a.report.outdoorTemp }
func (a *AirConditioner) Humidity() byte               { return a.report.humidity }
func (a *AirConditioner) PowerUsage() float64          { return a.report.powerUsage }
func (a *AirConditioner) Capabilities() capability.Set { return a.caps }

// HTML renders the current status as a status-page table fragment.
func (a *AirConditioner) HTML() template.HTML {
	return template.HTML(fmt.Sprintf(
		"<tr><td>power</td><td>%v</td></tr>"+
			"<tr><td>mode</td><td>%s</td></tr>"+
			"<tr><td>target</td><td>%.1f&deg;C</td></tr>"+
			"<tr><td>indoor</td><td>%.1f&deg;C</td></tr>"+
			"<tr><td>outdoor</td><td>%.1f&deg;C</td></tr>"+
			"<tr><td>humidity</td><td>%d%%</td></tr>",
		a.report.power, a.report.mode, a.report.targetTemp,
		a.report.indoorTemp, a.report.outdoorTemp, a.report.humidity))
}
