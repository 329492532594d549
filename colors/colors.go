// Package colors contains functions to quickly and easily generate framekit.Color instances by name (i.e. "White()", "Red()", "LimeGreen()", etc).
package colors

import (
	"strings"

	"github.com/solarlune/framekit"
)

// Transparent returns a fully transparent black.
func Transparent() framekit.Color { return framekit.NewColor(0, 0, 0, 0) }

// White returns white.
func White() framekit.Color { return framekit.NewColor(1, 1, 1, 1) }

// Black returns black.
func Black() framekit.Color { return framekit.NewColor(0, 0, 0, 1) }

// Gray returns a middle gray.
func Gray() framekit.Color { return framekit.NewColor(0.5, 0.5, 0.5, 1) }

// LightGray returns a light gray.
func LightGray() framekit.Color { return framekit.NewColor(0.8, 0.8, 0.8, 1) }

// DarkGray returns a dark gray.
func DarkGray() framekit.Color { return framekit.NewColor(0.2, 0.2, 0.2, 1) }

// Red returns red.
func Red() framekit.Color { return framekit.NewColor(1, 0, 0, 1) }

// Orange returns orange.
func Orange() framekit.Color { return framekit.NewColor(1, 0.5, 0, 1) }

// Yellow returns yellow.
func Yellow() framekit.Color { return framekit.NewColor(1, 1, 0, 1) }

// Green returns pure green.
func Green() framekit.Color { return framekit.NewColor(0, 1, 0, 1) }

// LimeGreen returns CSS limegreen.
func LimeGreen() framekit.Color { return framekit.NewColor(0.196, 0.804, 0.196, 1) }

// SkyBlue returns a sky blue.
func SkyBlue() framekit.Color { return framekit.NewColor(0, 0.5, 1, 1) }

// Cyan returns cyan.
func Cyan() framekit.Color { return framekit.NewColor(0, 1, 1, 1) }

// Blue returns blue.
func Blue() framekit.Color { return framekit.NewColor(0, 0, 1, 1) }

// Pink returns pink (magenta).
func Pink() framekit.Color { return framekit.NewColor(1, 0, 1, 1) }

// Purple returns purple.
func Purple() framekit.Color { return framekit.NewColor(0.5, 0, 1, 1) }

var named = map[string]func() framekit.Color{
	"transparent": Transparent,
	"white":       White,
	"black":       Black,
	"gray":        Gray,
	"grey":        Gray,
	"lightgray":   LightGray,
	"darkgray":    DarkGray,
	"red":         Red,
	"orange":      Orange,
	"yellow":      Yellow,
	"green":       Green,
	"limegreen":   LimeGreen,
	"skyblue":     SkyBlue,
	"cyan":        Cyan,
	"blue":        Blue,
	"pink":        Pink,
	"magenta":     Pink,
	"purple":      Purple,
}

// ByName looks up a color by its lowercase name (i.e. "red" or "limegreen"), falling back to parsing a hex string.
// ok is false if neither works.
func ByName(name string) (framekit.Color, bool) {
	if f, exists := named[strings.ToLower(strings.TrimSpace(name))]; exists {
		return f(), true
	}
	if c, err := framekit.NewColorFromHexString(name); err == nil {
		return c, true
	}
	return framekit.Color{}, false
}
