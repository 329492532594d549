package framekit

import "github.com/pkg/errors"

var (
	// ErrInvalidHierarchy is returned when a graph mutation would create a cycle, or would move, transform, or remove the root node.
	// The graph is left unchanged.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrDegenerateTransform is returned when a scale component is zero, negative, or not a finite number.
	// The node keeps its prior transform.
	ErrDegenerateTransform = errors.New("degenerate transform")

	// ErrStaleNode is returned for a NodeID that doesn't refer to a live node in the Graph.
	ErrStaleNode = errors.New("stale node")

	// ErrInvalidProjection is returned when camera parameters break 0 < near < far, aspect > 0, or produce an empty volume.
	ErrInvalidProjection = errors.New("invalid projection")

	// ErrAssetLoadFailure wraps any failure to read or decode an asset.
	ErrAssetLoadFailure = errors.New("asset load failure")

	// ErrSurfaceLost is returned by a Renderer when the output surface can't accept a frame.
	ErrSurfaceLost = errors.New("surface lost")

	// ErrLoopSuspended is returned by RenderLoop.Frame() after a render failure until Restart() is called.
	ErrLoopSuspended = errors.New("render loop suspended")
)
