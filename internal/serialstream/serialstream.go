//go:build linux

// Package serialstream configures a Linux serial device as the
// nonblocking byte-stream transport the dispatcher runs over:
// ioctl-based termios setup, 8N1 framing, configurable baud.
package serialstream

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Port is a nonblocking serial transport implementing
// mideago/iostream.Stream over a Linux tty device.
type Port struct {
	f   *os.File
	buf []byte
}

// Baud rates the air-conditioner UART is commonly wired for.
const (
	Baud9600   = unix.B9600
	Baud4800   = unix.B4800
	Baud2400   = unix.B2400
	Baud115200 = unix.B115200
)

// Open opens path (e.g. "/dev/ttyUSB0") and configures it 8N1 at the
// given termios baud constant, in nonblocking mode.
func Open(path string, baud uint32) (*Port, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("serialstream: open %s: %w", path, err)
	}
	if err := configure(f.Fd(), baud); err != nil {
		f.Close()
		return nil, fmt.Errorf("serialstream: configure %s: %w", path, err)
	}
	return &Port{f: f}, nil
}

func configure(fd uintptr, baud uint32) error {
	t, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	if err != nil {
		return err
	}

	t.Iflag = 0
	t.Oflag = 0
	t.Lflag = 0
	t.Cflag = baud | unix.CS8 | unix.CREAD | unix.CLOCAL
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 0

	return unix.IoctlSetTermios(int(fd), unix.TCSETS, t)
}

// Available reports how many bytes are queued for read without
// blocking, via TIOCINQ.
func (p *Port) Available() int {
	n, err := unix.IoctlGetInt(int(p.f.Fd()), unix.TIOCINQ)
	if err != nil {
		return 0
	}
	return n
}

// Read returns the next byte, or ok=false if none is currently
// buffered. The port is opened O_NONBLOCK so a short read never
// blocks the caller's event loop.
func (p *Port) Read() (byte, bool) {
	if len(p.buf) == 0 {
		var tmp [64]byte
		n, err := p.f.Read(tmp[:])
		if err != nil || n == 0 {
			return 0, false
		}
		p.buf = append(p.buf, tmp[:n]...)
	}
	b := p.buf[0]
	p.buf = p.buf[1:]
	return b, true
}

// Write pushes p to the serial port's outbound buffer.
func (p *Port) Write(data []byte) (int, error) {
	return p.f.Write(data)
}

// Close releases the underlying file descriptor.
func (p *Port) Close() error {
	return p.f.Close()
}
