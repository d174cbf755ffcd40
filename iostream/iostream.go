// Package iostream defines the nonblocking byte-stream transport
// contract the dispatcher is driven over: a serial port, but also
// anything else that can hand back whatever bytes are available
// without blocking the event loop.
package iostream

// Stream is a nonblocking byte-stream transport. Available and Read
// never block; Read returns ok=false if no byte is currently buffered.
type Stream interface {
	// Available reports how many bytes can be read without blocking.
	Available() int
	// Read returns the next buffered byte, or ok=false if none is
	// available yet.
	Read() (b byte, ok bool)
	// Write pushes bytes to the transport's outbound buffer. It does
	// not wait for them to reach the wire.
	Write(p []byte) (int, error)
}
