package framekit

// PointerButton identifies which pointer button produced a drag.
type PointerButton int

const (
	PointerPrimary   PointerButton = iota // Usually the left mouse button, or a single touch.
	PointerSecondary                      // Usually the right mouse button.
	PointerMiddle                         // Usually the middle mouse button.
)

// PointerHandler is implemented by Controls that react to pointer input.
type PointerHandler interface {
	PointerDrag(button PointerButton, dx, dy float64)
	Wheel(delta float64)
}

// Window is the host window, as far as events need to know about it.
type Window interface {
	SetFullscreen(fullscreen bool)
	IsFullscreen() bool
}

// ResizeEvent signals that the host surface changed size (in logical pixels) or device scale.
type ResizeEvent struct {
	Width, Height int
	DeviceScale   float64
}

// Apply records the new size with the frame's ResizeController; it's applied later in the same frame.
func (ev ResizeEvent) Apply(fc *FrameContext) {
	if fc.Resize != nil {
		fc.Resize.Signal(ev.Width, ev.Height, ev.DeviceScale)
	}
}

// PointerDragEvent is pointer movement, in pixels, while a button is held.
type PointerDragEvent struct {
	Button PointerButton
	DX, DY float64
}

// Apply forwards the drag to the frame's Controls, if they handle pointer input.
func (ev PointerDragEvent) Apply(fc *FrameContext) {
	if handler, ok := fc.Controls.(PointerHandler); ok {
		handler.PointerDrag(ev.Button, ev.DX, ev.DY)
	}
}

// WheelEvent is a scroll wheel (or pinch) delta; positive values zoom in.
type WheelEvent struct {
	Delta float64
}

// Apply forwards the wheel delta to the frame's Controls, if they handle pointer input.
func (ev WheelEvent) Apply(fc *FrameContext) {
	if handler, ok := fc.Controls.(PointerHandler); ok {
		handler.Wheel(ev.Delta)
	}
}

// FullscreenEvent toggles the host window's fullscreen mode.
type FullscreenEvent struct{}

// Apply flips the window's fullscreen state.
func (ev FullscreenEvent) Apply(fc *FrameContext) {
	if fc.Window != nil {
		fc.Window.SetFullscreen(!fc.Window.IsFullscreen())
	}
}

// PanelToggleEvent toggles the debug panel's visibility.
type PanelToggleEvent struct{}

// Apply toggles the frame's DebugPanel.
func (ev PanelToggleEvent) Apply(fc *FrameContext) {
	if fc.Panel != nil {
		fc.Panel.Toggle()
	}
}

// PanelVisibilityEvent sets the debug panel's visibility explicitly.
type PanelVisibilityEvent struct {
	Visible bool
}

// Apply shows or hides the frame's DebugPanel.
func (ev PanelVisibilityEvent) Apply(fc *FrameContext) {
	if fc.Panel != nil {
		fc.Panel.SetVisible(ev.Visible)
	}
}

// PanelNavigateEvent moves the debug panel's selection by Select rows, then nudges the selected property by Nudge steps.
type PanelNavigateEvent struct {
	Select int
	Nudge  int
}

// Apply navigates the frame's DebugPanel, if it's visible.
func (ev PanelNavigateEvent) Apply(fc *FrameContext) {
	if fc.Panel == nil || !fc.Panel.Visible() {
		return
	}
	if ev.Select != 0 {
		fc.Panel.Select(ev.Select)
	}
	if ev.Nudge != 0 {
		fc.Panel.Nudge(ev.Nudge)
	}
}

// Mover is implemented by Controls that walk the camera, like FreeCam.
type Mover interface {
	Move(forward, right, up float64)
}

// MoveEvent is held movement keys: forward, right, and up, each in -1..1.
type MoveEvent struct {
	Forward, Right, Up float64
}

// Apply forwards the movement to the frame's Controls, if they can move.
func (ev MoveEvent) Apply(fc *FrameContext) {
	if mover, ok := fc.Controls.(Mover); ok {
		mover.Move(ev.Forward, ev.Right, ev.Up)
	}
}
