// Package dispatch implements the request queue and response-matching
// state machine that sits between the frame codec and the appliance
// façade: a FIFO of outbound requests, at most one of them in flight,
// bounded by a cooldown between transmits and a response-window retry
// budget, plus the classification of unsolicited inbound frames.
package dispatch

import (
	"log"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"mideago/internal/frame"
)

// Outcome classifies how an in-flight request's handler reacted to an
// inbound frame.
type Outcome int

const (
	// Ok means the frame satisfies the request; invoke on_success.
	Ok Outcome = iota
	// Retry means another response window is warranted without
	// retransmitting (e.g. a capability chain follow-up).
	Retry
	// Wrong means the frame does not belong to this request; fall
	// through to unsolicited handling.
	Wrong
)

// OnData classifies an inbound frame against the request that sent it.
type OnData func(f frame.Frame) Outcome

// Request is one outbound unit of work. A Request with OnData nil is
// fire-and-forget: it is considered complete as soon as it is
// transmitted.
type Request struct {
	Kind     frame.Kind
	Protocol byte
	Type     frame.Type
	Payload  []byte

	OnData    OnData
	OnSuccess func()
	OnError   func()

	Attempts  int // remaining attempts, decremented on each timeout
	TimeoutMS int64

	id string
}

type state int

const (
	stateIdle state = iota
	stateSentNoResp
	stateWaiting
)

// Transport is the minimal byte-stream sink the dispatcher writes
// outbound frames to.
type Transport interface {
	Write(p []byte) (int, error)
}

// Hooks lets the owning façade plug into dispatcher lifecycle events
// without the dispatcher needing to know about appliance semantics.
type Hooks struct {
	// OnIdle runs whenever the dispatcher is idle and its queue is
	// empty; this is where periodic polling enqueues itself.
	OnIdle func(d *Dispatcher)
	// OnUnsolicited runs for inbound frames that are not a reply to
	// the in-flight request and are not NETWORK_NOTIFY/QUERY_NETWORK.
	OnUnsolicited func(f frame.Frame)
	// NetworkNotifyPayload builds the current 0x0D body for a
	// QUERY_NETWORK bypass reply.
	NetworkNotifyPayload func() []byte
}

var (
	metricQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mideago",
		Subsystem: "dispatch",
		Name:      "queue_depth",
		Help:      "Number of requests waiting in the dispatcher queue.",
	})
	metricInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mideago",
		Subsystem: "dispatch",
		Name:      "in_flight",
		Help:      "1 while a request is in flight, 0 otherwise.",
	})
	metricRetransmits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mideago",
		Subsystem: "dispatch",
		Name:      "retransmits_total",
		Help:      "Total retransmits due to response-window timeout.",
	})
	metricTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mideago",
		Subsystem: "dispatch",
		Name:      "requests_failed_total",
		Help:      "Requests that exhausted their retry budget.",
	})
)

func init() {
	prometheus.MustRegister(metricQueueDepth, metricInFlight, metricRetransmits, metricTimeouts)
}

// Dispatcher is the single-threaded request queue and response state
// machine. It must only ever be driven from one goroutine (the host
// event loop's tick); it does no locking of its own.
type Dispatcher struct {
	transport Transport
	hooks     Hooks

	cooldownMS int64

	queue   []*Request
	current *Request

	state            state
	cooldownUntilMS  int64
	responseDeadline int64

	heartbeatPeriodMS int64
	lastHeartbeatMS   int64
}

// New constructs a Dispatcher with the given inter-frame cooldown and
// network-heartbeat period, in milliseconds.
func New(transport Transport, hooks Hooks, cooldownMS, heartbeatPeriodMS int64) *Dispatcher {
	return &Dispatcher{
		transport:         transport,
		hooks:             hooks,
		cooldownMS:        cooldownMS,
		heartbeatPeriodMS: heartbeatPeriodMS,
	}
}

// Enqueue appends a request to the back of the queue.
func (d *Dispatcher) Enqueue(r *Request) {
	r.id = uuid.NewString()
	d.queue = append(d.queue, r)
	metricQueueDepth.Set(float64(len(d.queue)))
}

// EnqueueFront inserts a request at the front of the queue, for
// priority sends (the 0x63 network-notify bypass reply and the
// periodic network heartbeat both use this).
func (d *Dispatcher) EnqueueFront(r *Request) {
	r.id = uuid.NewString()
	d.queue = append([]*Request{r}, d.queue...)
	metricQueueDepth.Set(float64(len(d.queue)))
}

// busy reports whether the dispatcher may not transmit right now
// because of an unexpired cooldown.
func (d *Dispatcher) busy(nowMS int64) bool {
	return nowMS < d.cooldownUntilMS
}

// Tick advances the dispatcher state machine by one step. It must be
// called frequently and regularly from the host event loop; nowMS is
// the caller's monotonic clock reading for this tick.
func (d *Dispatcher) Tick(nowMS int64) {
	switch d.state {
	case stateWaiting:
		if nowMS >= d.responseDeadline {
			d.onTimeout(nowMS)
		}
		return
	case stateSentNoResp:
		if !d.busy(nowMS) {
			d.state = stateIdle
		}
		return
	}

	if d.busy(nowMS) {
		return
	}

	if len(d.queue) == 0 {
		if d.heartbeatPeriodMS > 0 && nowMS-d.lastHeartbeatMS >= d.heartbeatPeriodMS {
			d.lastHeartbeatMS = nowMS
			if d.hooks.NetworkNotifyPayload != nil {
				d.EnqueueFront(&Request{
					Kind:    frame.AirConditioner,
					Type:    frame.NetworkNotify,
					Payload: d.hooks.NetworkNotifyPayload(),
				})
			}
		}
		if len(d.queue) == 0 {
			if d.hooks.OnIdle != nil {
				d.hooks.OnIdle(d)
			}
			return
		}
	}

	d.dequeueAndSend(nowMS)
}

func (d *Dispatcher) dequeueAndSend(nowMS int64) {
	r := d.queue[0]
	d.queue = d.queue[1:]
	metricQueueDepth.Set(float64(len(d.queue)))

	if r.Attempts == 0 {
		r.Attempts = 1
	}
	d.transmit(r, nowMS)

	if r.OnData == nil {
		d.current = nil
		d.state = stateSentNoResp
		metricInFlight.Set(0)
		return
	}

	d.current = r
	d.state = stateWaiting
	d.responseDeadline = nowMS + r.TimeoutMS
	metricInFlight.Set(1)
}

func (d *Dispatcher) transmit(r *Request, nowMS int64) {
	buf := frame.Serialize(r.Kind, r.Protocol, r.Type, r.Payload)
	if _, err := d.transport.Write(buf); err != nil {
		log.Printf("dispatch: request %s: transmit error: %v", r.id, err)
	}
	d.cooldownUntilMS = nowMS + d.cooldownMS
}

func (d *Dispatcher) onTimeout(nowMS int64) {
	r := d.current
	r.Attempts--
	if r.Attempts > 0 {
		metricRetransmits.Inc()
		log.Printf("dispatch: request %s: no response, retransmitting (%d attempts left)", r.id, r.Attempts)
		d.transmit(r, nowMS)
		d.responseDeadline = nowMS + r.TimeoutMS
		return
	}
	metricTimeouts.Inc()
	log.Printf("dispatch: request %s: retries exhausted", r.id)
	d.current = nil
	d.state = stateIdle
	metricInFlight.Set(0)
	if r.OnError != nil {
		r.OnError()
	}
}

// Receive feeds one fully-assembled inbound frame to the dispatcher.
// It must be called for every frame the frame codec yields.
func (d *Dispatcher) Receive(f frame.Frame, nowMS int64) {
	if d.state == stateWaiting && d.current != nil {
		switch d.current.OnData(f) {
		case Ok:
			r := d.current
			d.current = nil
			d.state = stateIdle
			metricInFlight.Set(0)
			if r.OnSuccess != nil {
				r.OnSuccess()
			}
			return
		case Retry:
			d.responseDeadline = nowMS + d.current.TimeoutMS
			return
		case Wrong:
			// fall through to unsolicited handling below
		}
	}

	switch f.Type {
	case frame.NetworkNotify:
		return
	case frame.QueryNetwork:
		if d.hooks.NetworkNotifyPayload != nil {
			d.EnqueueFront(&Request{
				Kind:    f.Kind,
				Type:    frame.NetworkNotify,
				Payload: d.hooks.NetworkNotifyPayload(),
			})
		}
		return
	}

	if d.hooks.OnUnsolicited != nil {
		d.hooks.OnUnsolicited(f)
	}
}
