package led

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	o = MarkerOne
	z = MarkerZero
)

func TestEncode_KnownVector(t *testing.T) {
	got := SK6812RGBW.Encode(FromRGBW(0xAA, 0x00, 0xFF, 0x33))
	want := []byte{
		z, z, z, z, z, z, z, z, // green 0x00
		o, z, o, z, o, z, o, z, // red 0xAA
		o, o, o, o, o, o, o, o, // blue 0xFF
		z, z, o, o, z, z, o, o, // white 0x33
	}
	assert.Equal(t, want, got)
}

func TestEncode_EveryBitOfEveryValue(t *testing.T) {
	order := []Channel{Green, Red, Blue, White}
	for v := 0; v < 256; v++ {
		for ci, c := range order {
			var l Led
			l.setChannel(c, byte(v))
			enc := SK6812RGBW.Encode(l)
			require.Len(t, enc, 32)
			for bit := 0; bit < 8; bit++ {
				set := byte(v)&(0x80>>bit) != 0
				want := z
				if set {
					want = o
				}
				if enc[ci*8+bit] != want {
					t.Fatalf("value %#02x channel %s bit %d: got %#02x, want %#02x", v, c, bit, enc[ci*8+bit], want)
				}
			}
		}
	}
}

func TestBytesPerLed(t *testing.T) {
	assert.Equal(t, 32, SK6812RGBW.BytesPerLed())
	assert.Len(t, SK6812RGBW.Encode(Led{}), 32)
	assert.Equal(t, 24, SK6812RGB.BytesPerLed())
	assert.Len(t, SK6812RGB.Encode(FromRGBW(1, 2, 3, 4)), 24)
}

func TestAppend(t *testing.T) {
	var frame []byte
	frame = SK6812RGBW.Append(frame, FromRGB(1, 2, 3))
	frame = SK6812RGBW.Append(frame, FromRGBW(4, 5, 6, 7))
	assert.Len(t, frame, 64)
	assert.Equal(t, SK6812RGBW.Encode(FromRGBW(4, 5, 6, 7)), frame[32:])
}

func TestDecode_RoundTrip(t *testing.T) {
	leds := []Led{FromRGBW(0xAA, 0x00, 0xFF, 0x33), FromRGBW(1, 128, 254, 7), {}}
	var frame []byte
	for _, l := range leds {
		frame = SK6812RGBW.Append(frame, l)
	}
	got, err := SK6812RGBW.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, leds, got)

	rgb, err := SK6812RGB.Decode(SK6812RGB.Encode(FromRGBW(9, 8, 7, 6)))
	require.NoError(t, err)
	assert.Equal(t, []Led{FromRGB(9, 8, 7)}, rgb)
}

func TestDecode_Errors(t *testing.T) {
	_, err := SK6812RGBW.Decode(make([]byte, 31))
	assert.ErrorContains(t, err, "not a multiple of 32")

	frame := SK6812RGBW.Encode(Led{})
	frame[5] = 0x0F
	_, err = SK6812RGBW.Decode(frame)
	assert.ErrorContains(t, err, "is no marker")
}

func TestParseOrderAndNewEncoding(t *testing.T) {
	order, err := ParseOrder("grbw")
	require.NoError(t, err)
	assert.Equal(t, SK6812RGBW.Order, order)

	_, err = ParseOrder("GRX")
	assert.Error(t, err)

	enc, err := NewEncoding([]Channel{Red, Green, Blue}, 0b11100000, 0b10000000)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b11100000, 0b11100000, 0b10000000, 0b10000000}, enc.Encode(FromRGB(0xC0, 0, 0))[:4])
	assert.Equal(t, "RGB/0b11100000/0b10000000", enc.String())

	_, err = NewEncoding(nil, o, z)
	assert.ErrorContains(t, err, "must not be empty")
	_, err = NewEncoding([]Channel{Red, Green, Red}, o, z)
	assert.ErrorContains(t, err, "appears twice")
	_, err = NewEncoding([]Channel{Red, Green, Blue, White, Red}, o, z)
	assert.ErrorContains(t, err, "at most 4")
	_, err = NewEncoding([]Channel{Red}, o, o)
	assert.ErrorContains(t, err, "must differ")
	_, err = NewEncoding([]Channel{Channel(9)}, o, z)
	assert.ErrorContains(t, err, "invalid channel")
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"sk6812rgb", "sk6812rgbw", "ws2812b"}, Names())

	enc, err := Lookup("SK6812RGBW")
	require.NoError(t, err)
	assert.Equal(t, SK6812RGBW, enc)

	_, err = Lookup("apa102")
	assert.ErrorContains(t, err, "unknown LED chip")
}
