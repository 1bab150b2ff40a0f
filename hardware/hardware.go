// Package hardware opens the SPI port an LED strip is attached to. Two
// backends are available: periph.io, which goes through the kernel spidev
// driver, and go-rpio, which drives the BCM283x SPI block through /dev/mem.
// Both are exposed as a periph spi.PortCloser.
package hardware

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Bus is a logical SPI bus, SPI0 to SPI6.
type Bus int

const (
	SPI0 Bus = iota
	SPI1
	SPI2
	SPI3
	SPI4
	SPI5
	SPI6
)

func (b Bus) Valid() bool {
	return b >= SPI0 && b <= SPI6
}

func (b Bus) String() string {
	return fmt.Sprintf("SPI%d", int(b))
}

// ChipSelect is the chip enable line on a bus, CE0 to CE2.
type ChipSelect int

const (
	CE0 ChipSelect = iota
	CE1
	CE2
)

func (c ChipSelect) Valid() bool {
	return c >= CE0 && c <= CE2
}

func (c ChipSelect) String() string {
	return fmt.Sprintf("CE%d", int(c))
}

// DevicePath returns the spidev device node for bus and chip select.
func DevicePath(bus Bus, cs ChipSelect) string {
	return fmt.Sprintf("/dev/spidev%d.%d", int(bus), int(cs))
}

// Backend selects the library used to talk to the SPI hardware.
type Backend string

const (
	Periph Backend = "periph.io"
	Rpio   Backend = "rpio"
)

// ParseBackend maps a configuration value to a Backend. The empty string
// selects Periph.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", Periph, "periph":
		return Periph, nil
	case Rpio, "go-rpio":
		return Rpio, nil
	}
	return "", fmt.Errorf("unknown SPI backend %q, must be %q or %q", s, Periph, Rpio)
}

// OpenPort opens the SPI port at bus/cs with the given backend. The caller
// owns the returned port and must Close it.
func OpenPort(backend Backend, bus Bus, cs ChipSelect) (spi.PortCloser, error) {
	if !bus.Valid() {
		return nil, fmt.Errorf("invalid SPI bus %d, must be between 0 and 6", int(bus))
	}
	if !cs.Valid() {
		return nil, fmt.Errorf("invalid chip select %d, must be between 0 and 2", int(cs))
	}
	switch backend {
	case Periph, "":
		return openPeriph(DevicePath(bus, cs))
	case Rpio:
		return openRpio(bus, cs)
	}
	return nil, fmt.Errorf("unknown SPI backend %q", backend)
}

func openPeriph(path string) (spi.PortCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init periph: %w", err)
	}
	port, err := spireg.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi %s: %w", path, err)
	}
	return port, nil
}
