package led

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Conversions from normalized float colors scale each component by 255,
// round to the nearest integer and clamp to [0, 255]. Components outside
// [0, 1] are therefore clamped, not wrapped.

// FromFloats converts normalized r, g, b, w components.
func FromFloats(r, g, b, w float64) Led {
	return Led{
		Red:   clampFloat(r * 255),
		Green: clampFloat(g * 255),
		Blue:  clampFloat(b * 255),
		White: clampFloat(w * 255),
	}
}

// FromColorful converts a sRGB go-colorful color. White is set to 0.
func FromColorful(c colorful.Color) Led {
	return FromFloats(c.R, c.G, c.B, 0)
}

// FromColorfulW converts a sRGB go-colorful color plus a normalized white
// component.
func FromColorfulW(c colorful.Color, w float64) Led {
	return FromFloats(c.R, c.G, c.B, w)
}

// FromHSV converts hue in [0, 360), saturation and value in [0, 1].
func FromHSV(h, s, v float64) Led {
	return FromColorful(colorful.Hsv(h, s, v))
}

// FromHSL converts hue in [0, 360), saturation and lightness in [0, 1].
func FromHSL(h, s, l float64) Led {
	return FromColorful(colorful.Hsl(h, s, l))
}

// ToColorful returns the RGB part as a go-colorful color. White is dropped.
func (l Led) ToColorful() colorful.Color {
	return colorful.Color{
		R: float64(l.Red) / 255,
		G: float64(l.Green) / 255,
		B: float64(l.Blue) / 255,
	}
}

// FromColor converts any color.Color. Alpha is ignored after
// un-premultiplying. A Led is returned unchanged; any other color gets a
// white channel of 0.
func FromColor(c color.Color) Led {
	if l, ok := c.(Led); ok {
		return l
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Led{Red: n.R, Green: n.G, Blue: n.B}
}

// RGBA implements color.Color. The white channel is not represented and the
// color is always opaque.
func (l Led) RGBA() (r, g, b, a uint32) {
	r = uint32(l.Red) * 0x101
	g = uint32(l.Green) * 0x101
	b = uint32(l.Blue) * 0x101
	return r, g, b, 0xffff
}

var _ color.Color = Led{}
