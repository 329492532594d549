package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"

	"github.com/solarlune/framekit"
)

// Surface is the output surface a Renderer draws to. Ebitengine hands the host a new screen image every frame, so the Host
// binds it before each frame; between frames, or if the screen has no area, the Surface is lost.
type Surface struct {
	screen  *ebiten.Image
	width   int
	height  int
	density float64
}

// NewSurface creates an unbound Surface.
func NewSurface() *Surface {
	return &Surface{density: 1}
}

// SetSize records the surface's size in logical pixels.
func (surface *Surface) SetSize(width, height int) {
	surface.width = width
	surface.height = height
}

// SetPixelDensity records how many device pixels make up a logical pixel.
func (surface *Surface) SetPixelDensity(density float64) {
	surface.density = density
}

// Size returns the surface's size in logical pixels.
func (surface *Surface) Size() (int, int) {
	return surface.width, surface.height
}

// PixelDensity returns how many device pixels make up a logical pixel.
func (surface *Surface) PixelDensity() float64 {
	return surface.density
}

// Bind sets the image frames are drawn to.
func (surface *Surface) Bind(screen *ebiten.Image) {
	surface.screen = screen
}

// Unbind forgets the bound image.
func (surface *Surface) Unbind() {
	surface.screen = nil
}

// Target returns the bound image, or an error wrapping framekit.ErrSurfaceLost if there's nothing usable to draw to.
func (surface *Surface) Target() (*ebiten.Image, error) {
	if surface.screen == nil {
		return nil, errors.Wrap(framekit.ErrSurfaceLost, "no screen is bound")
	}
	b := surface.screen.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.Wrapf(framekit.ErrSurfaceLost, "screen is %dx%d", b.Dx(), b.Dy())
	}
	return surface.screen, nil
}
