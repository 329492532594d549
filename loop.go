package framekit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Renderer draws a Graph as seen through a Camera onto its output surface. It returns an error wrapping ErrSurfaceLost if
// the surface can't accept the frame.
type Renderer interface {
	Render(g *Graph, camera *Camera) error
}

// Scheduler decides when the next frame runs. Next blocks until then, or until ctx is done.
type Scheduler interface {
	Next(ctx context.Context) error
}

// LoopState is the state of a RenderLoop.
type LoopState int

const (
	LoopRunning   LoopState = iota // LoopRunning means Frame() renders frames.
	LoopSuspended                  // LoopSuspended means a render failed; Frame() refuses to run until Restart() is called.
)

func (state LoopState) String() string {
	if state == LoopSuspended {
		return "suspended"
	}
	return "running"
}

// LoopOptions are the collaborators of a RenderLoop. Graph, Camera, and Renderer are required.
type LoopOptions struct {
	Graph      *Graph
	Camera     *Camera
	Renderer   Renderer
	Surface    Surface           // Resized along with the viewport; may be nil.
	Clock      *Clock            // Defaults to a new Clock.
	Controls   Controls          // Updated once per frame; may be nil.
	Viewport   ViewportState     // The initial viewport.
	Properties *PropertyRegistry // Flushed at the top of each frame; may be nil.
	Panel      *DebugPanel       // Made available to Events; may be nil.
	Window     Window            // Made available to Events; may be nil.
	Logger     logrus.FieldLogger
}

// RenderLoop runs frames: each one drains queued Events and property edits, applies any pending resize, samples the clock,
// runs Animations and Controls, and submits the Graph to the Renderer. It's single-threaded; other goroutines talk to it
// through its FrameQueue and PropertyRegistry.
type RenderLoop struct {
	opts       LoopOptions
	logger     logrus.FieldLogger
	queue      *FrameQueue
	resize     *ResizeController
	animations []Animation

	state       LoopState
	cause       error
	frame       uint64
	lastElapsed float64
}

// NewRenderLoop creates a new RenderLoop. It returns an error if a required collaborator is missing.
func NewRenderLoop(opts LoopOptions) (*RenderLoop, error) {

	if opts.Graph == nil {
		return nil, errors.New("render loop needs a graph")
	}
	if opts.Camera == nil {
		return nil, errors.New("render loop needs a camera")
	}
	if opts.Renderer == nil {
		return nil, errors.New("render loop needs a renderer")
	}
	if opts.Clock == nil {
		opts.Clock = NewClock()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	loop := &RenderLoop{
		opts:   opts,
		logger: opts.Logger.WithField("component", "loop"),
		queue:  NewFrameQueue(),
	}

	loop.resize = NewResizeController(opts.Viewport, opts.Camera, opts.Surface, opts.Logger)

	return loop, nil

}

// Queue returns the loop's FrameQueue.
func (loop *RenderLoop) Queue() *FrameQueue {
	return loop.queue
}

// Post queues an Event for the next frame. It's safe to call from any goroutine.
func (loop *RenderLoop) Post(ev Event) {
	loop.queue.Post(ev)
}

// Resize returns the loop's ResizeController.
func (loop *RenderLoop) Resize() *ResizeController {
	return loop.resize
}

// Graph returns the Graph being rendered.
func (loop *RenderLoop) Graph() *Graph {
	return loop.opts.Graph
}

// Camera returns the Camera being rendered through.
func (loop *RenderLoop) Camera() *Camera {
	return loop.opts.Camera
}

// SetCamera switches the Camera being rendered through; its aspect is brought in line with the viewport on the next frame.
func (loop *RenderLoop) SetCamera(camera *Camera) {
	if camera == nil {
		return
	}
	loop.opts.Camera = camera
	loop.resize.SetCamera(camera)
}

// Controls returns the loop's Controls.
func (loop *RenderLoop) Controls() Controls {
	return loop.opts.Controls
}

// SetControls replaces the loop's Controls.
func (loop *RenderLoop) SetControls(controls Controls) {
	loop.opts.Controls = controls
}

// Clock returns the loop's Clock.
func (loop *RenderLoop) Clock() *Clock {
	return loop.opts.Clock
}

// Panel returns the loop's DebugPanel, if any.
func (loop *RenderLoop) Panel() *DebugPanel {
	return loop.opts.Panel
}

// AddAnimations adds Animations to be run each frame, in order.
func (loop *RenderLoop) AddAnimations(animations ...Animation) {
	loop.animations = append(loop.animations, animations...)
}

// State returns the loop's state.
func (loop *RenderLoop) State() LoopState {
	return loop.state
}

// Err returns the render error that suspended the loop, or nil while it's running.
func (loop *RenderLoop) Err() error {
	return loop.cause
}

// Frames returns how many frames have been rendered.
func (loop *RenderLoop) Frames() uint64 {
	return loop.frame
}

// Frame runs a single frame. If rendering fails, the loop suspends and the render error is returned (so errors.Is
// still finds ErrSurfaceLost); after that, Frame returns ErrLoopSuspended until Restart is called.
func (loop *RenderLoop) Frame() error {

	if loop.state == LoopSuspended {
		return errors.Wrapf(ErrLoopSuspended, "after %v", loop.cause)
	}

	fc := &FrameContext{
		Frame:    loop.frame,
		Graph:    loop.opts.Graph,
		Camera:   loop.opts.Camera,
		Resize:   loop.resize,
		Controls: loop.opts.Controls,
		Panel:    loop.opts.Panel,
		Window:   loop.opts.Window,
		Queue:    loop.queue,
	}

	loop.queue.Drain(fc)

	if loop.opts.Properties != nil {
		loop.opts.Properties.Flush()
	}

	loop.resize.Apply()

	// Events may have swapped the camera or controls.
	fc.Camera = loop.opts.Camera
	fc.Controls = loop.opts.Controls
	fc.Viewport = loop.resize.Viewport()

	elapsed := loop.opts.Clock.Elapsed()
	fc.Elapsed = elapsed
	fc.Delta = elapsed - loop.lastElapsed
	loop.lastElapsed = elapsed

	for _, anim := range loop.animations {
		anim.Animate(fc)
	}

	if fc.Controls != nil {
		if err := fc.Controls.Update(fc); err != nil {
			loop.logger.WithError(err).WithField("frame", fc.Frame).Warn("controls update failed")
		}
	}

	if err := loop.opts.Renderer.Render(fc.Graph, fc.Camera); err != nil {
		loop.state = LoopSuspended
		loop.cause = err
		loop.logger.WithError(err).WithField("frame", fc.Frame).Error("render failed; loop suspended")
		return errors.WithMessage(err, "render loop suspended")
	}

	loop.frame++

	return nil

}

// Restart resumes a suspended loop and resets its clock, so time-driven animation starts over.
func (loop *RenderLoop) Restart() {
	loop.state = LoopRunning
	loop.cause = nil
	loop.opts.Clock.Reset()
	loop.lastElapsed = 0
	loop.logger.Info("render loop restarted")
}

// Run runs frames until ctx is done or a frame fails, waiting on scheduler between frames. A nil scheduler ticks at 60 frames per second.
// Run returns nil when ctx ends.
func (loop *RenderLoop) Run(ctx context.Context, scheduler Scheduler) error {

	if scheduler == nil {
		ticker := NewTickerScheduler(60)
		defer ticker.Stop()
		scheduler = ticker
	}

	loop.logger.Info("render loop started")

	for {

		if ctx.Err() != nil {
			return nil
		}

		if err := loop.Frame(); err != nil {
			return err
		}

		if err := scheduler.Next(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

	}

}

// TickerScheduler is a Scheduler that yields to a time.Ticker running at a target frame rate.
type TickerScheduler struct {
	ticker *time.Ticker
}

// NewTickerScheduler creates a TickerScheduler running at the given frames per second (60 if fps isn't positive).
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

// Next waits for the next tick, or for ctx to be done.
func (ts *TickerScheduler) Next(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ts.ticker.C:
		return nil
	}
}

// Stop stops the underlying ticker.
func (ts *TickerScheduler) Stop() {
	ts.ticker.Stop()
}
