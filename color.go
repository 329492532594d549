package framekit

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// A Color represents a color, containing R, G, B, and A components, each expected to range from 0 to 1.
type Color struct {
	R, G, B, A float32
}

// NewColor returns a new Color, with the provided R, G, B, and A components expected to range from 0 to 1.
func NewColor(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// NewColorFromHexString parses a hex color string ("#ff0000", "ff0000", or "#ff000080") into a Color.
func NewColorFromHexString(hex string) (Color, error) {

	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")

	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, errors.Errorf("hex color %q must have 6 or 8 digits", hex)
	}

	if len(hex) == 6 {
		hex += "ff"
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, errors.Wrapf(err, "parsing hex color %q", hex)
	}

	return NewColor(
		float32((value>>24)&0xff)/255,
		float32((value>>16)&0xff)/255,
		float32((value>>8)&0xff)/255,
		float32(value&0xff)/255,
	), nil

}

// Set sets the RGBA components of the Color.
func (c *Color) Set(r, g, b, a float32) {
	c.R = r
	c.G = g
	c.B = b
	c.A = a
}

// RGBA64 returns the components as float64s.
func (c Color) RGBA64() (float64, float64, float64, float64) {
	return float64(c.R), float64(c.G), float64(c.B), float64(c.A)
}

// RGBA implements image/color.Color, so a Color can be passed straight to image and ebiten functions.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.ToNRGBA().RGBA()
}

// ToNRGBA converts the Color to a non-premultiplied 8-bit color, clamping each component.
func (c Color) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp(c.R, 0, 1) * 255),
		G: uint8(clamp(c.G, 0, 1) * 255),
		B: uint8(clamp(c.B, 0, 1) * 255),
		A: uint8(clamp(c.A, 0, 1) * 255),
	}
}

// Lerp returns a Color linearly interpolated towards other by percent.
func (c Color) Lerp(other Color, percent float32) Color {
	return Color{
		R: c.R + (other.R-c.R)*percent,
		G: c.G + (other.G-c.G)*percent,
		B: c.B + (other.B-c.B)*percent,
		A: c.A + (other.A-c.A)*percent,
	}
}

// Multiply returns the component-wise product of both Colors.
func (c Color) Multiply(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B, c.A * other.A}
}

// ToSRGB returns the Color converted from linear space to sRGB.
func (c Color) ToSRGB() Color {
	conv := func(v float32) float32 {
		if v <= 0.0031308 {
			return v * 12.92
		}
		return 1.055*math32.Pow(v, 1/2.4) - 0.055
	}
	return Color{conv(c.R), conv(c.G), conv(c.B), c.A}
}

func (c Color) String() string {
	return "{" + strconv.FormatFloat(float64(c.R), 'f', 3, 32) + ", " +
		strconv.FormatFloat(float64(c.G), 'f', 3, 32) + ", " +
		strconv.FormatFloat(float64(c.B), 'f', 3, 32) + ", " +
		strconv.FormatFloat(float64(c.A), 'f', 3, 32) + "}"
}
