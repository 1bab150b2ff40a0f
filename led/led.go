// Package led holds the color of a single RGBW LED and its encoding into the
// marker bytes clocked out over SPI.
package led

import "fmt"

// Led is the color of one LED. Every channel covers the full 8 bit range.
type Led struct {
	Red   byte
	Green byte
	Blue  byte
	White byte
}

// FromRGB returns a Led with the white channel off.
func FromRGB(r, g, b byte) Led {
	return Led{Red: r, Green: g, Blue: b}
}

func FromRGBW(r, g, b, w byte) Led {
	return Led{Red: r, Green: g, Blue: b, White: w}
}

// FromRGBArray converts {r, g, b}. White is set to 0.
func FromRGBArray(v [3]byte) Led {
	return Led{Red: v[0], Green: v[1], Blue: v[2]}
}

// FromRGBWArray converts {r, g, b, w}.
func FromRGBWArray(v [4]byte) Led {
	return Led{Red: v[0], Green: v[1], Blue: v[2], White: v[3]}
}

func (l Led) ToRGBArray() [3]byte {
	return [3]byte{l.Red, l.Green, l.Blue}
}

func (l Led) ToRGBWArray() [4]byte {
	return [4]byte{l.Red, l.Green, l.Blue, l.White}
}

// True if all channels are zero, false otherwise
func (l Led) IsEmpty() bool {
	return l.Red == 0 && l.Green == 0 && l.Blue == 0 && l.White == 0
}

// Return a Led with per channel the max value of the caller and the
// in parameter
func (l Led) Max(in Led) Led {
	if l.Red > in.Red {
		in.Red = l.Red
	}
	if l.Green > in.Green {
		in.Green = l.Green
	}
	if l.Blue > in.Blue {
		in.Blue = l.Blue
	}
	if l.White > in.White {
		in.White = l.White
	}
	return in
}

func (l Led) String() string {
	return fmt.Sprintf("led{R:%d G:%d B:%d W:%d}", l.Red, l.Green, l.Blue, l.White)
}
