package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    RGB
		wantErr bool
	}{
		{name: "full form", in: "#1a2b3c", want: RGB{0x1a, 0x2b, 0x3c}},
		{name: "uppercase", in: "#1A2B3C", want: RGB{0x1a, 0x2b, 0x3c}},
		{name: "no hash", in: "ff8000", want: RGB{0xff, 0x80, 0x00}},
		{name: "shorthand", in: "#abc", want: RGB{0xaa, 0xbb, 0xcc}},
		{name: "whitespace tolerated", in: "  #000000 ", want: RGB{}},
		{name: "too short", in: "#ab", wantErr: true},
		{name: "bad digit", in: "#zzzzzz", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidHex)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRGBHexRoundTrip(t *testing.T) {
	for _, c := range []RGB{{0, 0, 0}, {255, 255, 255}, {12, 200, 7}, {0x1a, 0x2b, 0x3c}} {
		parsed, err := ParseHex(c.Hex())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestRGBToHSLKnownValues(t *testing.T) {
	tests := []struct {
		name    string
		in      RGB
		h, s, l float64
	}{
		{name: "black", in: RGB{0, 0, 0}, h: 0, s: 0, l: 0},
		{name: "white", in: RGB{255, 255, 255}, h: 0, s: 0, l: 100},
		{name: "red", in: RGB{255, 0, 0}, h: 0, s: 100, l: 50},
		{name: "green", in: RGB{0, 255, 0}, h: 120, s: 100, l: 50},
		{name: "blue", in: RGB{0, 0, 255}, h: 240, s: 100, l: 50},
		{name: "gray", in: RGB{128, 128, 128}, h: 0, s: 0, l: 50.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ToHSL()
			assert.InDelta(t, tt.h, got.H, 0.5)
			assert.InDelta(t, tt.s, got.S, 0.5)
			assert.InDelta(t, tt.l, got.L, 0.5)
		})
	}
}

// RGB -> HSL -> RGB must be exact for every 8-bit triple. Exhausting all
// 16.7M triples is slow, so sweep a coarse lattice plus the channel extremes.
func TestRGBHSLRoundTrip(t *testing.T) {
	vals := []uint8{0, 1, 7, 31, 64, 127, 128, 200, 254, 255}
	for _, r := range vals {
		for _, g := range vals {
			for _, b := range vals {
				in := RGB{r, g, b}
				out := in.ToHSL().ToRGB()
				require.Equal(t, in, out, "round-trip failed for %v", in)
			}
		}
	}
}

func TestHSLNegativeHueWraps(t *testing.T) {
	a := HSL{H: -120, S: 100, L: 50}.ToRGB()
	b := HSL{H: 240, S: 100, L: 50}.ToRGB()
	assert.Equal(t, b, a)
	assert.True(t, math.Abs(float64(a.B)-255) < 1)
}
