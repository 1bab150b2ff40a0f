package strip

import (
	"time"

	"lautenbacher.net/sk6812/hardware"
	"lautenbacher.net/sk6812/led"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultFrequency clocks one marker byte in 1.25µs.
	DefaultFrequency = 6400 * physic.KiloHertz
	// DefaultLatch is the low time after a frame which makes the LEDs
	// latch the received colors.
	DefaultLatch = 80 * time.Microsecond
)

type options struct {
	encoding led.Encoding
	freq     physic.Frequency
	latch    time.Duration
	backend  hardware.Backend
}

func defaultOptions() options {
	return options{
		encoding: led.SK6812RGBW,
		freq:     DefaultFrequency,
		latch:    DefaultLatch,
		backend:  hardware.Periph,
	}
}

// Option changes how a Strip is set up.
type Option func(*options)

// WithEncoding selects the channel order and marker bytes. The default is
// led.SK6812RGBW.
func WithEncoding(enc led.Encoding) Option {
	return func(o *options) { o.encoding = enc }
}

// WithFrequency overrides the SPI clock. The marker bytes only meet the LED
// timing at DefaultFrequency.
func WithFrequency(f physic.Frequency) Option {
	return func(o *options) { o.freq = f }
}

// WithLatch sets the pause after each Update. Zero disables it.
func WithLatch(d time.Duration) Option {
	return func(o *options) { o.latch = d }
}

// WithBackend selects the SPI library used by Open. It has no effect on New.
func WithBackend(b hardware.Backend) Option {
	return func(o *options) { o.backend = b }
}
