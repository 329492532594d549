package framekit

import (
	"math"

	"github.com/sirupsen/logrus"
)

// ViewportState is the size and pixel density of the output surface.
type ViewportState struct {
	Width, Height int     // Size in logical (CSS-like) pixels.
	DeviceScale   float64 // The host's device scale factor.
	DensityCap    float64 // The highest pixel density the surface may use.
}

// Aspect returns the viewport's aspect ratio (width / height), or 1 if the viewport has no height.
func (vs ViewportState) Aspect() float64 {
	if vs.Height <= 0 {
		return 1
	}
	return float64(vs.Width) / float64(vs.Height)
}

// PixelDensity returns the backing resolution scale of the surface: the device scale, capped at DensityCap.
// A zero cap means no cap, and the result is never below 1.
func (vs ViewportState) PixelDensity() float64 {
	density := vs.DeviceScale
	if vs.DensityCap > 0 {
		density = math.Min(density, vs.DensityCap)
	}
	return math.Max(density, 1)
}

// DeviceSize returns the surface size in device pixels.
func (vs ViewportState) DeviceSize() (int, int) {
	d := vs.PixelDensity()
	return int(math.Ceil(float64(vs.Width) * d)), int(math.Ceil(float64(vs.Height) * d))
}

// Surface is the drawable output a Renderer submits to, sized in device pixels.
type Surface interface {
	SetSize(width, height int)
	SetPixelDensity(scale float64)
}

// ResizeState is the state of a ResizeController.
type ResizeState int

const (
	ResizeStable   ResizeState = iota // ResizeStable means the applied viewport matches the latest signal.
	ResizeResizing                    // ResizeResizing means a newer size is waiting to be applied at the top of the next frame.
)

func (state ResizeState) String() string {
	if state == ResizeResizing {
		return "resizing"
	}
	return "stable"
}

// ResizeController collects resize signals from the host and applies the newest one once per frame. Signals that arrive
// before a frame is drawn overwrite each other; only the last one is applied.
type ResizeController struct {
	camera  *Camera
	surface Surface
	logger  logrus.FieldLogger

	state   ResizeState
	current ViewportState
	pending ViewportState
}

// NewResizeController creates a ResizeController that keeps camera and surface in step with the given initial viewport.
// The initial viewport is applied straight away. Either camera or surface may be nil.
func NewResizeController(initial ViewportState, camera *Camera, surface Surface, logger logrus.FieldLogger) *ResizeController {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	rc := &ResizeController{
		camera:  camera,
		surface: surface,
		logger:  logger.WithField("component", "resize"),
	}
	if initial.Width > 0 && initial.Height > 0 {
		rc.pending = initial
		rc.state = ResizeResizing
		rc.Apply()
	} else {
		rc.current = initial
	}
	return rc
}

// State returns the controller's state.
func (rc *ResizeController) State() ResizeState {
	return rc.state
}

// Viewport returns the last applied viewport.
func (rc *ResizeController) Viewport() ViewportState {
	return rc.current
}

// SetCamera replaces the camera kept in step with the viewport; the camera's aspect is updated at the next Apply.
func (rc *ResizeController) SetCamera(camera *Camera) {
	rc.camera = camera
	if rc.state == ResizeStable {
		rc.pending = rc.current
		rc.state = ResizeResizing
	}
}

// Signal records a new viewport size (in logical pixels) and device scale. Sizes that aren't positive are ignored.
// A deviceScale that isn't positive keeps the current one.
func (rc *ResizeController) Signal(width, height int, deviceScale float64) {
	if width <= 0 || height <= 0 {
		rc.logger.WithFields(logrus.Fields{"width": width, "height": height}).Warn("ignoring resize to an empty viewport")
		return
	}
	next := rc.current
	if rc.state == ResizeResizing {
		next = rc.pending
	}
	next.Width = width
	next.Height = height
	if deviceScale > 0 {
		next.DeviceScale = deviceScale
	}
	rc.pending = next
	rc.state = ResizeResizing
}

// SetDensityCap changes the pixel density cap; it's applied like a resize.
func (rc *ResizeController) SetDensityCap(cap float64) {
	next := rc.current
	if rc.state == ResizeResizing {
		next = rc.pending
	}
	next.DensityCap = cap
	rc.pending = next
	rc.state = ResizeResizing
}

// Apply applies the newest pending viewport, if any: it stores it, sets the camera's aspect, and resizes the surface. The
// camera's projection is recomputed exactly once for each viewport that differs from the last. Apply returns true if
// anything changed; applying the same viewport again is a no-op.
func (rc *ResizeController) Apply() bool {

	if rc.state != ResizeResizing {
		return false
	}

	rc.state = ResizeStable
	next := rc.pending

	changed := next != rc.current
	rc.current = next

	if rc.camera != nil {
		switch {
		case rc.camera.Aspect() != next.Aspect():
			if err := rc.camera.SetAspect(next.Aspect()); err != nil {
				rc.logger.WithError(err).Warn("couldn't apply viewport aspect to camera")
			}
			changed = true
		case changed:
			rc.camera.UpdateProjection()
		}
	}

	if !changed {
		return false
	}

	if rc.surface != nil {
		w, h := next.DeviceSize()
		rc.surface.SetSize(w, h)
		rc.surface.SetPixelDensity(next.PixelDensity())
	}

	rc.logger.WithFields(logrus.Fields{
		"width":   next.Width,
		"height":  next.Height,
		"density": next.PixelDensity(),
	}).Debug("viewport resized")

	return true

}
