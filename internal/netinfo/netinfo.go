// Package netinfo provides the connectivity facts the façade reports
// back to the device in QUERY_NETWORK replies: link state, signal
// strength bucketed the way the device itself buckets it, and the
// host's IPv4 address.
package netinfo

// Provider is the network-status source the façade's 0x0D payload
// builder reads from.
type Provider interface {
	IsConnected() bool
	SignalBars() int // 1..4
	LocalIPv4() [4]byte
}

// SignalBars buckets an RSSI reading (dBm) into the device's 1..4
// scale.
func SignalBars(rssiDBm int) int {
	switch {
	case rssiDBm > -63:
		return 4
	case rssiDBm > -75:
		return 3
	case rssiDBm > -88:
		return 2
	default:
		return 1
	}
}

// Static is a fixed-value Provider, useful for hosts without a real
// network stack (or for tests) that still need to answer
// QUERY_NETWORK.
type Static struct {
	Connected bool
	RSSIDBm   int
	IPv4      [4]byte
}

func (s Static) IsConnected() bool  { return s.Connected }
func (s Static) SignalBars() int    { return SignalBars(s.RSSIDBm) }
func (s Static) LocalIPv4() [4]byte { return s.IPv4 }
