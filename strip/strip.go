// Package strip drives a chain of SK6812 LEDs through a SPI port. Every bit
// of every color channel is sent as one marker byte whose high time at the
// configured clock matches the LED's timing for a 0 or a 1.
//
// A Strip is not safe for concurrent use.
package strip

import (
	"fmt"
	"io"
	"time"

	"lautenbacher.net/sk6812/gradient"
	"lautenbacher.net/sk6812/hardware"
	"lautenbacher.net/sk6812/led"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
)

type Strip struct {
	name   string
	owned  io.Closer
	conn   spi.Conn
	enc    led.Encoding
	latch  time.Duration
	leds   []led.Led
	buffer []byte
}

// Open opens /dev/spidev<bus>.0 and returns a strip of count LEDs, all off.
func Open(bus hardware.Bus, count int, opts ...Option) (*Strip, error) {
	return OpenWithChipSelect(bus, hardware.CE0, count, opts...)
}

// OpenWithChipSelect is Open for a strip on another chip select line.
func OpenWithChipSelect(bus hardware.Bus, cs hardware.ChipSelect, count int, opts ...Option) (*Strip, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	device := hardware.DevicePath(bus, cs)
	if count <= 0 {
		return nil, &ConfigurationError{Op: "open", Device: device, Err: fmt.Errorf("led count must be positive, got %d", count)}
	}
	port, err := hardware.OpenPort(o.backend, bus, cs)
	if err != nil {
		return nil, &ConfigurationError{Op: "open", Device: device, Err: err}
	}
	s, err := newStrip(port, device, count, o)
	if err != nil {
		port.Close()
		return nil, err
	}
	s.owned = port
	return s, nil
}

// New returns a strip of count LEDs on an already open port. The caller
// keeps ownership of port; Close does not close it.
func New(port spi.Port, count int, opts ...Option) (*Strip, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if count < 0 {
		return nil, &ConfigurationError{Op: "open", Device: port.String(), Err: fmt.Errorf("led count must not be negative, got %d", count)}
	}
	return newStrip(port, port.String(), count, o)
}

func newStrip(port spi.Port, device string, count int, o options) (*Strip, error) {
	if err := o.encoding.Validate(); err != nil {
		return nil, &ConfigurationError{Op: "encoding", Device: device, Err: err}
	}
	if o.freq <= 0 {
		return nil, &ConfigurationError{Op: "connect", Device: device, Err: fmt.Errorf("invalid frequency %s", o.freq)}
	}
	c, err := port.Connect(o.freq, spi.Mode0, 8)
	if err != nil {
		return nil, &ConfigurationError{Op: "connect", Device: device, Err: err}
	}
	return &Strip{
		name:   device,
		conn:   c,
		enc:    o.encoding,
		latch:  o.latch,
		leds:   make([]led.Led, count),
		buffer: make([]byte, 0, count*o.encoding.BytesPerLed()),
	}, nil
}

func (s *Strip) Len() int {
	return len(s.leds)
}

func (s *Strip) Encoding() led.Encoding {
	return s.enc
}

// Get returns the color at index i. It panics if i is out of range.
func (s *Strip) Get(i int) led.Led {
	return s.leds[i]
}

// Set changes the color at index i. It panics if i is out of range.
func (s *Strip) Set(i int, c led.Led) {
	s.leds[i] = c
}

// Leds returns a copy of all colors.
func (s *Strip) Leds() []led.Led {
	ret := make([]led.Led, len(s.leds))
	copy(ret, s.leds)
	return ret
}

// SetLeds copies colors to the start of the strip. Extra colors are ignored.
func (s *Strip) SetLeds(colors []led.Led) {
	copy(s.leds, colors)
}

func (s *Strip) Fill(c led.Led) {
	for i := range s.leds {
		s.leds[i] = c
	}
}

func (s *Strip) Clear() {
	s.Fill(led.Led{})
}

// SetGradient samples g at Len() evenly spaced positions from 0 to 1 and
// stores the results in index order. A single LED gets the color at 0.
func (s *Strip) SetGradient(g gradient.Gradient) {
	n := len(s.leds)
	for i := range s.leds {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		s.leds[i] = led.FromColorful(g.At(t))
	}
}

// RotateLeft moves every color n positions towards index 0; colors shifted
// out at the start reappear at the end. Negative n rotates right.
func (s *Strip) RotateLeft(n int) {
	count := len(s.leds)
	if count == 0 {
		return
	}
	k := n % count
	if k < 0 {
		k += count
	}
	if k == 0 {
		return
	}
	reverse(s.leds[:k])
	reverse(s.leds[k:])
	reverse(s.leds)
}

// RotateRight moves every color n positions towards the end. Negative n
// rotates left.
func (s *Strip) RotateRight(n int) {
	count := len(s.leds)
	if count == 0 {
		return
	}
	s.RotateLeft(count - n%count)
}

func reverse(leds []led.Led) {
	for i, j := 0, len(leds)-1; i < j; i, j = i+1, j-1 {
		leds[i], leds[j] = leds[j], leds[i]
	}
}

// Frame returns the encoded bytes Update would send. The slice is reused by
// the next call to Frame or Update.
func (s *Strip) Frame() []byte {
	s.buffer = s.buffer[:0]
	for _, l := range s.leds {
		s.buffer = s.enc.Append(s.buffer, l)
	}
	return s.buffer
}

// Update sends all colors to the strip in a single transfer and waits for
// the latch time. The colors held by the strip are never modified, whether
// the transfer succeeds or not.
func (s *Strip) Update() error {
	frame := s.Frame()
	if s.conn == nil {
		return &TransferError{Size: len(frame), Err: ErrClosed}
	}
	if l, ok := s.conn.(conn.Limits); ok {
		if limit := l.MaxTxSize(); limit > 0 && len(frame) > limit {
			return &TransferError{
				Size: len(frame),
				Err:  fmt.Errorf("%w: %d leds need %d bytes, limit is %d", ErrTransferTooLarge, len(s.leds), len(frame), limit),
			}
		}
	}
	if err := s.conn.Tx(frame, nil); err != nil {
		return &TransferError{Size: len(frame), Err: err}
	}
	if s.latch > 0 {
		time.Sleep(s.latch)
	}
	return nil
}

// Close releases the SPI port if the strip opened it. Further calls to
// Update fail; calling Close again does nothing.
func (s *Strip) Close() error {
	s.conn = nil
	if s.owned == nil {
		return nil
	}
	owned := s.owned
	s.owned = nil
	if err := owned.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.name, err)
	}
	return nil
}

func (s *Strip) String() string {
	return fmt.Sprintf("SK6812{%s, %d leds, %s}", s.name, len(s.leds), s.enc)
}
