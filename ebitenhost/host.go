// Package ebitenhost runs a framekit RenderLoop inside an Ebitengine window: it turns Ebitengine's input and layout
// callbacks into queued framekit Events, gives the loop a Surface and Renderer backed by the screen image, and draws the
// debug panel over the result.
package ebitenhost

import (
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"

	"github.com/solarlune/framekit"
)

// Window is a framekit.Window backed by the Ebitengine window.
type Window struct{}

// SetFullscreen switches the window in or out of fullscreen mode.
func (Window) SetFullscreen(fullscreen bool) {
	ebiten.SetFullscreen(fullscreen)
}

// IsFullscreen returns whether the window is fullscreen.
func (Window) IsFullscreen() bool {
	return ebiten.IsFullscreen()
}

// Options configure a Host.
type Options struct {
	ScreenshotDir string // Where F12 screenshots go; defaults to the working directory.
	HelpText      string // Drawn under the panel when it's visible.
	Logger        logrus.FieldLogger
}

// Host is an ebiten.Game that drives a framekit RenderLoop.
//
// Keys: Escape quits, F1 toggles the debug panel, F4 toggles fullscreen, F5 restarts a loop suspended by a lost surface,
// F12 saves a screenshot, Up and Down select a panel property, and Left and Right nudge it. WASD with Space and Control walk Controls that can move. Dragging with a mouse
// button held and scrolling the wheel go to the loop's Controls.
type Host struct {
	loop    *framekit.RenderLoop
	surface *Surface
	opts    Options
	logger  logrus.FieldLogger

	layoutWidth, layoutHeight int
	layoutScale               float64

	cursorX, cursorY int
	dragging         bool

	screenshotPending bool
	suspendReported   bool
}

// NewHost creates a Host for the loop, which must have been created with surface as its Surface (and, usually, a Renderer
// drawing to it).
func NewHost(loop *framekit.RenderLoop, surface *Surface, opts Options) *Host {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "."
	}
	return &Host{
		loop:    loop,
		surface: surface,
		opts:    opts,
		logger:  opts.Logger.WithField("component", "host"),
	}
}

// Loop returns the Host's RenderLoop.
func (host *Host) Loop() *framekit.RenderLoop {
	return host.loop
}

// Update collects input and posts it to the loop's queue. It returns ebiten.Termination when Escape is pressed, and the
// loop's error if the loop was suspended by anything other than a lost surface.
func (host *Host) Update() error {

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if host.loop.State() == framekit.LoopSuspended {
		if err := host.loop.Err(); !errors.Is(err, framekit.ErrSurfaceLost) {
			return err
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		host.loop.Post(framekit.PanelToggleEvent{})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF4) {
		host.loop.Post(framekit.FullscreenEvent{})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		host.Restart()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		host.screenshotPending = true
	}

	nav := framekit.PanelNavigateEvent{}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		nav.Select--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		nav.Select++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		nav.Nudge--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		nav.Nudge++
	}
	if nav != (framekit.PanelNavigateEvent{}) {
		host.loop.Post(nav)
	}

	host.updatePointer()
	host.updateMovement()

	return nil

}

func (host *Host) updatePointer() {

	x, y := ebiten.CursorPosition()
	dx, dy := float64(x-host.cursorX), float64(y-host.cursorY)
	host.cursorX, host.cursorY = x, y

	buttons := []struct {
		mouse   ebiten.MouseButton
		pointer framekit.PointerButton
	}{
		{ebiten.MouseButtonLeft, framekit.PointerPrimary},
		{ebiten.MouseButtonRight, framekit.PointerSecondary},
		{ebiten.MouseButtonMiddle, framekit.PointerMiddle},
	}

	held := false
	for _, b := range buttons {
		if !ebiten.IsMouseButtonPressed(b.mouse) {
			continue
		}
		held = true
		// The first frame of a drag only records where it started.
		if host.dragging && (dx != 0 || dy != 0) {
			host.loop.Post(framekit.PointerDragEvent{Button: b.pointer, DX: dx, DY: dy})
		}
		break
	}
	host.dragging = held

	if _, wheel := ebiten.Wheel(); wheel != 0 {
		host.loop.Post(framekit.WheelEvent{Delta: wheel})
	}

}

var movementKeys = []struct {
	key                ebiten.Key
	forward, right, up float64
}{
	{ebiten.KeyW, 1, 0, 0},
	{ebiten.KeyS, -1, 0, 0},
	{ebiten.KeyD, 0, 1, 0},
	{ebiten.KeyA, 0, -1, 0},
	{ebiten.KeySpace, 0, 0, 1},
	{ebiten.KeyControl, 0, 0, -1},
}

func (host *Host) updateMovement() {
	move := framekit.MoveEvent{}
	for _, k := range movementKeys {
		if ebiten.IsKeyPressed(k.key) {
			move.Forward += k.forward
			move.Right += k.right
			move.Up += k.up
		}
	}
	if move != (framekit.MoveEvent{}) {
		host.loop.Post(move)
	}
}

// Layout posts a ResizeEvent when the window's size or device scale changes, and returns the size of the screen image
// in device pixels (capped by the viewport's density cap).
func (host *Host) Layout(outsideWidth, outsideHeight int) (int, int) {

	scale := ebiten.Monitor().DeviceScaleFactor()

	if outsideWidth != host.layoutWidth || outsideHeight != host.layoutHeight || scale != host.layoutScale {
		host.layoutWidth, host.layoutHeight, host.layoutScale = outsideWidth, outsideHeight, scale
		host.loop.Post(framekit.ResizeEvent{Width: outsideWidth, Height: outsideHeight, DeviceScale: scale})
	}

	return screenSize(outsideWidth, outsideHeight, scale, host.loop.Resize().Viewport().DensityCap)

}

// screenSize returns the device-pixel size of a logical size at the given device scale and density cap.
func screenSize(width, height int, deviceScale, densityCap float64) (int, int) {
	vs := framekit.ViewportState{Width: width, Height: height, DeviceScale: deviceScale, DensityCap: densityCap}
	w, h := vs.DeviceSize()
	return int(math.Max(1, float64(w))), int(math.Max(1, float64(h)))
}

// Restart resumes a suspended loop, such as one whose surface was lost; the loop's clock starts over. It returns false if the
// loop isn't suspended.
func (host *Host) Restart() bool {
	if host.loop.State() != framekit.LoopSuspended {
		return false
	}
	host.logger.Info("restarting loop")
	host.loop.Restart()
	host.suspendReported = false
	return true
}

// reportSuspended logs a suspended loop once per suspension.
func (host *Host) reportSuspended() {
	if host.suspendReported || host.loop.State() != framekit.LoopSuspended {
		return
	}
	host.suspendReported = true
	host.logger.WithError(host.loop.Err()).Warn("loop suspended; press F5 to restart")
}

// Draw runs a frame of the loop onto the screen, then draws the debug panel if it's visible. A suspended loop stays
// suspended until Restart.
func (host *Host) Draw(screen *ebiten.Image) {

	host.surface.Bind(screen)
	defer host.surface.Unbind()

	if err := host.loop.Frame(); err != nil {
		if !errors.Is(err, framekit.ErrLoopSuspended) {
			host.logger.WithError(err).Error("frame failed")
		}
		host.reportSuspended()
		return
	}

	if host.screenshotPending {
		host.screenshotPending = false
		path, err := SaveScreenshot(host.opts.ScreenshotDir, capture(screen), time.Now())
		if err != nil {
			host.logger.WithError(err).Error("screenshot failed")
		} else {
			host.logger.WithField("path", path).Info("screenshot saved")
		}
	}

	if panel := host.loop.Panel(); panel != nil && panel.Visible() {
		host.drawPanel(screen, panel)
	}

}

const panelLineHeight = 16

func (host *Host) drawPanel(screen *ebiten.Image, panel *framekit.DebugPanel) {

	lines := panel.Lines()
	if host.opts.HelpText != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(host.opts.HelpText, "\n")...)
	}

	widest := 0
	for _, line := range lines {
		if len(line) > widest {
			widest = len(line)
		}
	}

	face := basicfont.Face7x13
	w := float32(widest*face.Advance + 16)
	h := float32(len(lines)*panelLineHeight + 12)
	vector.DrawFilledRect(screen, 4, 4, w, h, color.RGBA{0, 0, 0, 180}, false)

	for i, line := range lines {
		text.Draw(screen, line, face, 12, 20+i*panelLineHeight, color.White)
	}

}
