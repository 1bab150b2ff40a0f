// Package sim provides a SPI port without hardware behind it. Every frame
// written to it is decoded back into colors and published, which is what
// the terminal viewer and the tests look at.
package sim

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"lautenbacher.net/sk6812/led"
	"lautenbacher.net/sk6812/util"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultMaxTxSize is the default spidev buffer size of the Linux kernel.
// It can be raised with the spidev.bufsiz module parameter.
const DefaultMaxTxSize = 4096

var (
	ErrTooLarge = errors.New("sim: transfer larger than buffer")
	ErrClosed   = errors.New("sim: port closed")
)

// Port is a simulated spi.PortCloser.
type Port struct {
	mu        sync.Mutex
	name      string
	enc       led.Encoding
	maxTxSize int
	limit     physic.Frequency
	freq      physic.Frequency
	mode      spi.Mode
	bits      int
	connected bool
	closed    bool
	writes    int
	last      []byte
	failure   error
	frames    *util.AtomicEvent[[]led.Led]
}

// NewPort returns a port decoding frames with enc.
func NewPort(name string, enc led.Encoding) *Port {
	return &Port{
		name:      name,
		enc:       enc,
		maxTxSize: DefaultMaxTxSize,
		frames:    util.NewAtomicEvent[[]led.Led](),
	}
}

// SetMaxTxSize sets the largest accepted transfer. 0 removes the limit.
func (p *Port) SetMaxTxSize(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxTxSize = n
}

// Fail makes every following Tx return err. Fail(nil) restores normal
// operation.
func (p *Port) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failure = err
}

func (p *Port) String() string {
	return p.name
}

func (p *Port) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("sim: invalid speed limit %s", f)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limit = f
	return nil
}

func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if p.connected {
		return nil, errors.New("sim: already connected")
	}
	if bits != 8 {
		return nil, fmt.Errorf("sim: %d bits per word not supported", bits)
	}
	if p.limit != 0 && f > p.limit {
		f = p.limit
	}
	p.freq, p.mode, p.bits = f, mode, bits
	p.connected = true
	return &simConn{port: p}, nil
}

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Settings returns the parameters passed to Connect.
func (p *Port) Settings() (physic.Frequency, spi.Mode, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freq, p.mode, p.bits
}

// Frames publishes the decoded colors of every successful write.
func (p *Port) Frames() *util.AtomicEvent[[]led.Led] {
	return p.frames
}

// Writes counts the successful writes.
func (p *Port) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

// Last returns a copy of the last frame written.
func (p *Port) Last() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.last)
}

func (p *Port) tx(w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.failure != nil {
		return p.failure
	}
	if p.maxTxSize > 0 && len(w) > p.maxTxSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(w), p.maxTxSize)
	}
	leds, err := p.enc.Decode(w)
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	if r != nil {
		clear(r)
	}
	p.writes++
	p.last = append(p.last[:0], w...)
	p.frames.Send(leds)
	return nil
}

type simConn struct {
	port *Port
}

func (c *simConn) String() string {
	return c.port.name
}

func (c *simConn) Tx(w, r []byte) error {
	if r != nil && len(r) != len(w) {
		return fmt.Errorf("sim: read buffer has %d bytes, write buffer %d", len(r), len(w))
	}
	return c.port.tx(w, r)
}

func (c *simConn) TxPackets(p []spi.Packet) error {
	for i := range p {
		if err := c.Tx(p[i].W, p[i].R); err != nil {
			return fmt.Errorf("packet %d: %w", i, err)
		}
	}
	return nil
}

func (c *simConn) Duplex() conn.Duplex {
	return conn.Full
}

// MaxTxSize implements conn.Limits.
func (c *simConn) MaxTxSize() int {
	c.port.mu.Lock()
	defer c.port.mu.Unlock()
	return c.port.maxTxSize
}

var (
	_ spi.PortCloser = &Port{}
	_ spi.Conn       = &simConn{}
	_ conn.Limits    = &simConn{}
)
