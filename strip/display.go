package strip

import (
	"image"
	"image/color"

	"lautenbacher.net/sk6812/led"
	"periph.io/x/conn/v3/display"
)

var _ display.Drawer = &Strip{}

// ColorModel converts to led.Led. Images drawn onto the strip leave the
// white channel off unless their pixels are led.Led values.
func (s *Strip) ColorModel() color.Model {
	return color.ModelFunc(func(c color.Color) color.Color { return led.FromColor(c) })
}

// Bounds is a single row of Len() pixels.
func (s *Strip) Bounds() image.Rectangle {
	return image.Rect(0, 0, len(s.leds), 1)
}

// Draw copies the first row of r from src, starting at sp, and sends the
// result with Update.
func (s *Strip) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(s.Bounds())
	srcR := src.Bounds()
	for x := r.Min.X; x < r.Max.X; x++ {
		p := image.Pt(sp.X+x-r.Min.X, sp.Y)
		if !p.In(srcR) {
			continue
		}
		s.leds[x] = led.FromColor(src.At(p.X, p.Y))
	}
	return s.Update()
}

// Halt turns all LEDs off.
func (s *Strip) Halt() error {
	s.Clear()
	return s.Update()
}
