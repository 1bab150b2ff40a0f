package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lautenbacher.net/sk6812/led"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

func connect(t *testing.T, p *Port) spi.Conn {
	t.Helper()
	c, err := p.Connect(6400*physic.KiloHertz, spi.Mode0, 8)
	require.NoError(t, err)
	return c
}

func TestPort_DecodesAndPublishesFrames(t *testing.T) {
	p := NewPort("sim0", led.SK6812RGBW)
	c := connect(t, p)

	want := []led.Led{led.FromRGBW(1, 2, 3, 4), led.FromRGB(255, 0, 128)}
	var frame []byte
	for _, l := range want {
		frame = led.SK6812RGBW.Append(frame, l)
	}
	require.NoError(t, c.Tx(frame, nil))

	assert.Equal(t, 1, p.Writes())
	assert.Equal(t, frame, p.Last())
	assert.True(t, p.Frames().HasPending())
	assert.Equal(t, want, p.Frames().Value())

	f, mode, bits := p.Settings()
	assert.Equal(t, 6400*physic.KiloHertz, f)
	assert.Equal(t, spi.Mode0, mode)
	assert.Equal(t, 8, bits)
}

func TestPort_MaxTxSize(t *testing.T) {
	p := NewPort("sim0", led.SK6812RGBW)
	c := connect(t, p)

	limits, ok := c.(conn.Limits)
	require.True(t, ok, "sim connection should report its limits")
	assert.Equal(t, DefaultMaxTxSize, limits.MaxTxSize())

	frame := make([]byte, DefaultMaxTxSize+32)
	for i := range frame {
		frame[i] = led.MarkerZero
	}
	err := c.Tx(frame, nil)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, 0, p.Writes())

	p.SetMaxTxSize(0)
	assert.NoError(t, c.Tx(frame, nil))
	assert.Len(t, p.Frames().Value(), len(frame)/32)
}

func TestPort_RejectsGarbage(t *testing.T) {
	p := NewPort("sim0", led.SK6812RGBW)
	c := connect(t, p)

	assert.Error(t, c.Tx([]byte{0x00, 0x01}, nil), "length is no multiple of 32")
	garbage := make([]byte, 32)
	assert.Error(t, c.Tx(garbage, nil), "0x00 is no marker byte")
	assert.Equal(t, 0, p.Writes())
}

func TestPort_Fail(t *testing.T) {
	p := NewPort("sim0", led.SK6812RGB)
	c := connect(t, p)

	boom := errors.New("device removed")
	p.Fail(boom)
	assert.ErrorIs(t, c.Tx(led.SK6812RGB.Encode(led.Led{}), nil), boom)

	p.Fail(nil)
	assert.NoError(t, c.Tx(led.SK6812RGB.Encode(led.Led{}), nil))
}

func TestPort_ConnectAndClose(t *testing.T) {
	p := NewPort("sim0", led.SK6812RGBW)
	_, err := p.Connect(physic.MegaHertz, spi.Mode0, 16)
	assert.Error(t, err)

	require.NoError(t, p.LimitSpeed(physic.MegaHertz))
	c := connect(t, p)
	f, _, _ := p.Settings()
	assert.Equal(t, physic.MegaHertz, f, "speed is capped by LimitSpeed")

	_, err = p.Connect(physic.MegaHertz, spi.Mode0, 8)
	assert.Error(t, err, "second Connect must fail")

	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
	assert.ErrorIs(t, c.Tx(nil, nil), ErrClosed)
}
