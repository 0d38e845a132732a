package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-faster/errors"
)

// ErrInvalidHex is returned when a hex color string cannot be parsed.
var ErrInvalidHex = errors.New("invalid hex color")

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// HSL is a hue/saturation/lightness color. H is in [0, 360), S and L in [0, 100].
type HSL struct {
	H, S, L float64
}

// ParseHex parses "#RGB" or "#RRGGBB" (leading '#' optional, case-insensitive).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(s) {
	case 3:
		// Expand shorthand: "abc" -> "aabbcc".
		var b strings.Builder
		for _, c := range s {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		s = b.String()
	case 6:
	default:
		return RGB{}, ErrInvalidHex
	}

	var c RGB
	if _, err := fmt.Sscanf(strings.ToLower(s), "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, ErrInvalidHex
	}
	return c, nil
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ToHSL converts the color to HSL.
func (c RGB) ToHSL() HSL {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2

	if maxC == minC {
		return HSL{H: 0, S: 0, L: l * 100}
	}

	d := maxC - minC
	var s float64
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}

	var h float64
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60

	return HSL{H: h, S: s * 100, L: l * 100}
}

// ToRGB converts the color to 8-bit RGB. The conversion is the exact
// inverse of RGB.ToHSL for every 8-bit triple.
func (c HSL) ToRGB() RGB {
	h := math.Mod(c.H, 360) / 360
	if h < 0 {
		h++
	}
	s := c.S / 100
	l := c.L / 100

	if s == 0 {
		v := clamp255(l)
		return RGB{R: v, G: v, B: v}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return RGB{
		R: clamp255(hueToRGB(p, q, h+1.0/3)),
		G: clamp255(hueToRGB(p, q, h)),
		B: clamp255(hueToRGB(p, q, h-1.0/3)),
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func clamp255(v float64) uint8 {
	n := math.Round(v * 255)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
