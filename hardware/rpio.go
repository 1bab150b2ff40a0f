package hardware

import (
	"errors"
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// go-rpio keeps the memory mapping and the SPI block in package state, so
// only one port can be open at a time.
var (
	rpioMutex sync.Mutex
	rpioOpen  bool
)

var errRpioClosed = errors.New("rpio spi port is closed")

func rpioDevice(bus Bus) (rpio.SpiDev, error) {
	switch bus {
	case SPI0:
		return rpio.Spi0, nil
	case SPI1:
		return rpio.Spi1, nil
	case SPI2:
		return rpio.Spi2, nil
	}
	return 0, fmt.Errorf("%s is not supported by the rpio backend, use %s", bus, Periph)
}

// rpioMode splits a periph spi.Mode into the clock polarity and phase bits
// go-rpio expects.
func rpioMode(m spi.Mode) (polarity, phase uint8) {
	m &= spi.Mode3
	return uint8(m>>1) & 1, uint8(m) & 1
}

type rpioPort struct {
	bus   Bus
	cs    ChipSelect
	dev   rpio.SpiDev
	maxHz physic.Frequency
	conn  *rpioConn
}

func openRpio(bus Bus, cs ChipSelect) (spi.PortCloser, error) {
	dev, err := rpioDevice(bus)
	if err != nil {
		return nil, err
	}
	rpioMutex.Lock()
	defer rpioMutex.Unlock()
	if rpioOpen {
		return nil, errors.New("rpio spi port already in use")
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open rpio: %w", err)
	}
	if err := rpio.SpiBegin(dev); err != nil {
		rpio.Close()
		return nil, fmt.Errorf("failed to begin spi on %s: %w", bus, err)
	}
	rpio.SpiChipSelect(uint8(cs))
	rpioOpen = true
	return &rpioPort{bus: bus, cs: cs, dev: dev}, nil
}

func (p *rpioPort) String() string {
	return fmt.Sprintf("rpio/%s.%s", p.bus, p.cs)
}

func (p *rpioPort) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("invalid speed limit %s", f)
	}
	p.maxHz = f
	return nil
}

func (p *rpioPort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	rpioMutex.Lock()
	defer rpioMutex.Unlock()
	if !rpioOpen {
		return nil, errRpioClosed
	}
	if p.conn != nil {
		return nil, errors.New("rpio spi port already connected")
	}
	if bits != 8 {
		return nil, fmt.Errorf("rpio backend supports 8 bits per word only, got %d", bits)
	}
	if mode&^spi.Mode3 != 0 {
		return nil, fmt.Errorf("rpio backend does not support mode flags %#x", int(mode&^spi.Mode3))
	}
	if p.maxHz != 0 && f > p.maxHz {
		f = p.maxHz
	}
	rpio.SpiSpeed(int(f / physic.Hertz))
	rpio.SpiMode(rpioMode(mode))
	p.conn = &rpioConn{port: p, freq: f}
	return p.conn, nil
}

func (p *rpioPort) Close() error {
	rpioMutex.Lock()
	defer rpioMutex.Unlock()
	if !rpioOpen {
		return nil
	}
	rpioOpen = false
	rpio.SpiEnd(p.dev)
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("failed to close rpio: %w", err)
	}
	return nil
}

type rpioConn struct {
	port *rpioPort
	freq physic.Frequency
	buf  []byte
}

func (c *rpioConn) String() string {
	return fmt.Sprintf("%s@%s", c.port, c.freq)
}

func (c *rpioConn) Duplex() conn.Duplex {
	return conn.Full
}

// Tx sends w. go-rpio exchanges in place, so w is copied into a scratch
// buffer first; the bytes read back are copied to r if it is not nil.
func (c *rpioConn) Tx(w, r []byte) error {
	if r != nil && len(r) != len(w) {
		return fmt.Errorf("rpio: read buffer has %d bytes, write buffer %d", len(r), len(w))
	}
	rpioMutex.Lock()
	defer rpioMutex.Unlock()
	if !rpioOpen {
		return errRpioClosed
	}
	c.buf = append(c.buf[:0], w...)
	rpio.SpiExchange(c.buf)
	if r != nil {
		copy(r, c.buf)
	}
	return nil
}

func (c *rpioConn) TxPackets(p []spi.Packet) error {
	for i := range p {
		if err := c.Tx(p[i].W, p[i].R); err != nil {
			return fmt.Errorf("packet %d: %w", i, err)
		}
	}
	return nil
}

var (
	_ spi.PortCloser = &rpioPort{}
	_ spi.Conn       = &rpioConn{}
)
