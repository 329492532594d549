package framekit

// FrameContext carries the state of the frame being run to everything the RenderLoop calls (Events, Animations, and
// Controls). It's only valid during the frame it was made for.
type FrameContext struct {
	Frame   uint64  // Frame is the number of frames rendered before this one.
	Elapsed float64 // Elapsed is the clock's time in seconds, sampled once at the start of the frame.
	Delta   float64 // Delta is the time in seconds since the previous frame's Elapsed.

	Graph    *Graph
	Camera   *Camera
	Viewport ViewportState
	Resize   *ResizeController
	Controls Controls
	Panel    *DebugPanel
	Window   Window
	Queue    *FrameQueue
}
