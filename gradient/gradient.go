// Package gradient provides color ramps over the domain [0, 1] which a strip
// samples once per LED.
package gradient

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Gradient maps a position t in [0, 1] to a color.
type Gradient interface {
	At(t float64) colorful.Color
}

// Blend is the color space two neighbouring stops are interpolated in.
type Blend int

const (
	// Linear blends in linear RGB, which keeps perceived brightness even.
	Linear Blend = iota
	// RGB blends the gamma encoded sRGB components.
	RGB
	HCL
	Lab
	// HSV walks the hue wheel, used for rainbows.
	HSV
)

var blendNames = map[Blend]string{
	Linear: "linear",
	RGB:    "rgb",
	HCL:    "hcl",
	Lab:    "lab",
	HSV:    "hsv",
}

func (b Blend) String() string {
	if s, ok := blendNames[b]; ok {
		return s
	}
	return fmt.Sprintf("Blend(%d)", int(b))
}

// ParseBlend is the inverse of String. The empty string is Linear.
func ParseBlend(s string) (Blend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Linear, nil
	}
	for b, name := range blendNames {
		if name == s {
			return b, nil
		}
	}
	return Linear, fmt.Errorf("unknown blend mode %q", s)
}

func (b Blend) mix(c1, c2 colorful.Color, t float64) colorful.Color {
	switch b {
	case RGB:
		return c1.BlendRgb(c2, t)
	case HCL:
		return c1.BlendHcl(c2, t).Clamped()
	case Lab:
		return c1.BlendLab(c2, t).Clamped()
	case HSV:
		return c1.BlendHsv(c2, t)
	default:
		r1, g1, b1 := c1.LinearRgb()
		r2, g2, b2 := c2.LinearRgb()
		return colorful.LinearRgb(r1+t*(r2-r1), g1+t*(g2-g1), b1+t*(b2-b1))
	}
}

// Stop is a color pinned at a position of the ramp.
type Stop struct {
	Color colorful.Color
	Pos   float64
}

// Table interpolates between its stops. Positions before the first or after
// the last stop take that stop's color.
type Table struct {
	stops []Stop
	blend Blend
}

var _ Gradient = &Table{}

// NewTable returns a Table blending in linear RGB. The stops are sorted by
// position; at least one is required.
func NewTable(stops ...Stop) (*Table, error) {
	if len(stops) == 0 {
		return nil, errors.New("gradient needs at least one stop")
	}
	for i, s := range stops {
		if math.IsNaN(s.Pos) || math.IsInf(s.Pos, 0) {
			return nil, fmt.Errorf("stop %d has invalid position %v", i, s.Pos)
		}
	}
	sorted := slices.Clone(stops)
	slices.SortStableFunc(sorted, func(a, b Stop) int {
		switch {
		case a.Pos < b.Pos:
			return -1
		case a.Pos > b.Pos:
			return 1
		}
		return 0
	})
	return &Table{stops: sorted, blend: Linear}, nil
}

// Even spaces colors evenly over [0, 1]. A single color makes a constant
// gradient.
func Even(colors ...colorful.Color) (*Table, error) {
	stops := make([]Stop, len(colors))
	for i, c := range colors {
		pos := 0.0
		if len(colors) > 1 {
			pos = float64(i) / float64(len(colors)-1)
		}
		stops[i] = Stop{Color: c, Pos: pos}
	}
	return NewTable(stops...)
}

// Rainbow returns a full hue wheel with n stops of saturated colors,
// starting and ending at red. n below 3 is raised to 3 so that neighbouring
// hues are less than half a turn apart.
func Rainbow(n int) *Table {
	if n < 3 {
		n = 3
	}
	stops := make([]Stop, n+1)
	for i := range stops {
		pos := float64(i) / float64(n)
		stops[i] = Stop{Color: colorful.Hsv(math.Mod(pos*360, 360), 1, 1), Pos: pos}
	}
	return &Table{stops: stops, blend: HSV}
}

// WithBlend returns a copy of the table using blend b.
func (g *Table) WithBlend(b Blend) *Table {
	return &Table{stops: g.stops, blend: b}
}

func (g *Table) Blend() Blend {
	return g.blend
}

// Stops returns a copy of the sorted stops.
func (g *Table) Stops() []Stop {
	return slices.Clone(g.stops)
}

func (g *Table) At(t float64) colorful.Color {
	first, last := g.stops[0], g.stops[len(g.stops)-1]
	if math.IsNaN(t) || t <= first.Pos {
		return first.Color
	}
	if t >= last.Pos {
		return last.Color
	}
	for i := 0; i < len(g.stops)-1; i++ {
		a, b := g.stops[i], g.stops[i+1]
		if t >= a.Pos && t <= b.Pos {
			if b.Pos == a.Pos {
				return b.Color
			}
			return g.blend.mix(a.Color, b.Color, (t-a.Pos)/(b.Pos-a.Pos))
		}
	}
	return last.Color
}
