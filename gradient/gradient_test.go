package gradient

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = colorful.Color{R: 1}
	blue = colorful.Color{B: 1}
)

func TestNewTable_Empty(t *testing.T) {
	_, err := NewTable()
	assert.Error(t, err)
	_, err = Even()
	assert.Error(t, err)
}

func TestNewTable_SortsStops(t *testing.T) {
	g, err := NewTable(Stop{Color: blue, Pos: 1}, Stop{Color: red, Pos: 0})
	require.NoError(t, err)

	stops := g.Stops()
	require.Len(t, stops, 2)
	assert.Equal(t, 0.0, stops[0].Pos)
	assert.Equal(t, red, stops[0].Color)
	assert.Equal(t, red, g.At(0))
	assert.Equal(t, blue, g.At(1))
}

func TestTable_ClampsOutsideStops(t *testing.T) {
	g, err := NewTable(Stop{Color: red, Pos: 0.25}, Stop{Color: blue, Pos: 0.75})
	require.NoError(t, err)

	assert.Equal(t, red, g.At(0))
	assert.Equal(t, red, g.At(-3))
	assert.Equal(t, blue, g.At(1))
	assert.Equal(t, blue, g.At(42))
}

func TestTable_MiddleIsBetweenStops(t *testing.T) {
	g, err := Even(red, blue)
	require.NoError(t, err)

	for _, b := range []Blend{Linear, RGB} {
		t.Run(b.String(), func(t *testing.T) {
			mid := g.WithBlend(b).At(0.5)
			assert.Greater(t, mid.R, 0.0)
			assert.Less(t, mid.R, 1.0)
			assert.Greater(t, mid.B, 0.0)
			assert.Less(t, mid.B, 1.0)
		})
	}

	linear := g.At(0.5)
	assert.InDelta(t, 0.7354, linear.R, 1e-3, "half of linear red in sRGB")
	assert.InDelta(t, 0.0, linear.G, 1e-9)
	assert.InDelta(t, 0.7354, linear.B, 1e-3)

	mid := g.WithBlend(RGB).At(0.5)
	assert.InDelta(t, 0.5, mid.R, 1e-9)
	assert.InDelta(t, 0.0, mid.G, 1e-9)
	assert.InDelta(t, 0.5, mid.B, 1e-9)
}

func TestEven_SingleColorIsConstant(t *testing.T) {
	g, err := Even(red)
	require.NoError(t, err)
	assert.Equal(t, red, g.At(0))
	assert.Equal(t, red, g.At(0.5))
	assert.Equal(t, red, g.At(1))
}

func TestRainbow(t *testing.T) {
	g := Rainbow(6)
	assert.Equal(t, HSV, g.Blend())
	assert.Len(t, g.Stops(), 7)

	start, end := g.At(0), g.At(1)
	assert.InDelta(t, 1.0, start.R, 1e-9)
	assert.InDelta(t, 1.0, end.R, 1e-9)
	assert.InDelta(t, 0.0, end.B, 1e-9)

	h, _, _ := g.At(0.5).Hsv()
	assert.InDelta(t, 180, h, 1e-6)

	assert.Len(t, Rainbow(0).Stops(), 4)
}

func TestParseBlend(t *testing.T) {
	for b, name := range blendNames {
		got, err := ParseBlend(name)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	got, err := ParseBlend("")
	require.NoError(t, err)
	assert.Equal(t, Linear, got)

	_, err = ParseBlend("cmyk")
	assert.Error(t, err)
}
