// Package framekit is a small real-time scene kernel: an arena-backed scene graph, perspective and orthographic cameras,
// a viewport resize controller, and a frame-driven render loop that runs time-driven animation, camera controls, and a
// typed debug property registry.
//
// Everything in a Graph is owned by the goroutine that runs the RenderLoop. Other goroutines (asset loaders, input,
// remote panels) hand their changes over through the loop's FrameQueue or the PropertyRegistry, and those changes are
// applied at the top of the next frame.
//
// The ebitenhost package provides a window, surface, and renderer built on Ebitengine; the assets package loads images,
// fonts, and glTF models asynchronously.
package framekit
