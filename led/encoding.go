package led

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Channel identifies one color channel of a Led.
type Channel byte

const (
	Red Channel = iota
	Green
	Blue
	White
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	case White:
		return "W"
	}
	return fmt.Sprintf("Channel(%d)", byte(c))
}

func (l Led) channel(c Channel) byte {
	switch c {
	case Red:
		return l.Red
	case Green:
		return l.Green
	case Blue:
		return l.Blue
	default:
		return l.White
	}
}

func (l *Led) setChannel(c Channel, v byte) {
	switch c {
	case Red:
		l.Red = v
	case Green:
		l.Green = v
	case Blue:
		l.Blue = v
	default:
		l.White = v
	}
}

// Marker bytes for a SPI clock of 6.4MHz: one byte lasts 1.25µs, the bit
// period of the SK6812. A logical 1 is high for 0.625µs, a logical 0 for
// 0.3125µs.
const (
	MarkerOne  byte = 0b11110000
	MarkerZero byte = 0b11000000
)

// Encoding describes how a Led is expanded into marker bytes: every bit of
// every channel in Order becomes One or Zero, most significant bit first.
type Encoding struct {
	Order []Channel
	One   byte
	Zero  byte
}

var (
	// SK6812RGBW sends green, red, blue, white.
	SK6812RGBW = Encoding{Order: []Channel{Green, Red, Blue, White}, One: MarkerOne, Zero: MarkerZero}
	// SK6812RGB is the three channel variant without white.
	SK6812RGB = Encoding{Order: []Channel{Green, Red, Blue}, One: MarkerOne, Zero: MarkerZero}
	// WS2812B has the same GRB layout; at 6.4MHz the SK6812 markers are
	// within its timing windows.
	WS2812B = Encoding{Order: []Channel{Green, Red, Blue}, One: MarkerOne, Zero: MarkerZero}
)

// Encodings maps chip family names, as used in the configuration file, to
// their encoding.
var Encodings = map[string]Encoding{
	"sk6812rgbw": SK6812RGBW,
	"sk6812rgb":  SK6812RGB,
	"ws2812b":    WS2812B,
}

// Names returns the known chip family names, sorted.
func Names() []string {
	names := maps.Keys(Encodings)
	slices.Sort(names)
	return names
}

// Lookup returns the encoding registered for a chip family name. The lookup
// is case-insensitive.
func Lookup(name string) (Encoding, error) {
	enc, ok := Encodings[strings.ToLower(name)]
	if !ok {
		return Encoding{}, fmt.Errorf("unknown LED chip %q, known: %s", name, strings.Join(Names(), ", "))
	}
	return enc, nil
}

// ParseOrder parses a channel order like "GRBW" or "rgb".
func ParseOrder(s string) ([]Channel, error) {
	order := make([]Channel, 0, len(s))
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'R':
			order = append(order, Red)
		case 'G':
			order = append(order, Green)
		case 'B':
			order = append(order, Blue)
		case 'W':
			order = append(order, White)
		default:
			return nil, fmt.Errorf("invalid channel %q in order %q", r, s)
		}
	}
	return order, nil
}

// NewEncoding builds and validates an encoding.
func NewEncoding(order []Channel, one, zero byte) (Encoding, error) {
	enc := Encoding{Order: slices.Clone(order), One: one, Zero: zero}
	if err := enc.Validate(); err != nil {
		return Encoding{}, err
	}
	return enc, nil
}

func (e Encoding) Validate() error {
	if len(e.Order) == 0 {
		return errors.New("channel order must not be empty")
	}
	if len(e.Order) > 4 {
		return fmt.Errorf("channel order has %d channels, at most 4 allowed", len(e.Order))
	}
	var seen [4]bool
	for _, c := range e.Order {
		if c > White {
			return fmt.Errorf("invalid channel %d", byte(c))
		}
		if seen[c] {
			return fmt.Errorf("channel %s appears twice in order", c)
		}
		seen[c] = true
	}
	if e.One == e.Zero {
		return fmt.Errorf("marker bytes for 1 and 0 must differ, both are %#02x", e.One)
	}
	return nil
}

// BytesPerLed is the encoded size of one Led.
func (e Encoding) BytesPerLed() int {
	return 8 * len(e.Order)
}

func (e Encoding) String() string {
	var b strings.Builder
	for _, c := range e.Order {
		b.WriteString(c.String())
	}
	return fmt.Sprintf("%s/%#08b/%#08b", b.String(), e.One, e.Zero)
}

// Encode returns the marker bytes for l.
func (e Encoding) Encode(l Led) []byte {
	return e.Append(make([]byte, 0, e.BytesPerLed()), l)
}

// Append appends the marker bytes for l to dst and returns the extended
// slice.
func (e Encoding) Append(dst []byte, l Led) []byte {
	for _, c := range e.Order {
		v := l.channel(c)
		for bit := 7; bit >= 0; bit-- {
			if v&(1<<bit) != 0 {
				dst = append(dst, e.One)
			} else {
				dst = append(dst, e.Zero)
			}
		}
	}
	return dst
}

// Decode reverses Encode for a whole frame. Channels not in Order are left
// at zero.
func (e Encoding) Decode(frame []byte) ([]Led, error) {
	n := e.BytesPerLed()
	if n == 0 {
		return nil, errors.New("encoding has no channels")
	}
	if len(frame)%n != 0 {
		return nil, fmt.Errorf("frame length %d is not a multiple of %d", len(frame), n)
	}
	leds := make([]Led, len(frame)/n)
	for i := range leds {
		chunk := frame[i*n : (i+1)*n]
		for ci, c := range e.Order {
			var v byte
			for bit, m := range chunk[ci*8 : ci*8+8] {
				switch m {
				case e.One:
					v |= 1 << (7 - bit)
				case e.Zero:
				default:
					return nil, fmt.Errorf("led %d channel %s: byte %#02x is no marker", i, c, m)
				}
			}
			leds[i].setChannel(c, v)
		}
	}
	return leds, nil
}
