package framekit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animation is run by the RenderLoop every frame, after the clock is sampled. Animations must derive their result from
// fc.Elapsed alone (never by accumulating fc.Delta) so that motion is the same regardless of frame rate.
type Animation interface {
	Animate(fc *FrameContext)
}

// AnimationFunc adapts a function to the Animation interface.
type AnimationFunc func(fc *FrameContext)

// Animate calls the AnimationFunc.
func (af AnimationFunc) Animate(fc *FrameContext) {
	af(fc)
}

// Orbit moves Node around Center on the XY plane: x = cx + Radius * sin(t * Speed), y = cy + Radius * cos(t * Speed). Z is
// left at Center's Z. Its fields are read every frame, so they can be bound to debug properties.
type Orbit struct {
	Node   NodeID
	Center mgl64.Vec3
	Radius float64
	Speed  float64
}

// CircularMotion returns an Orbit of node around center.
func CircularMotion(node NodeID, center mgl64.Vec3, radius, speed float64) *Orbit {
	return &Orbit{Node: node, Center: center, Radius: radius, Speed: speed}
}

// Animate places the node on its orbit at fc.Elapsed.
func (orbit *Orbit) Animate(fc *FrameContext) {
	t := fc.Elapsed * orbit.Speed
	fc.Graph.SetLocalPosition(orbit.Node, mgl64.Vec3{
		orbit.Center[0] + orbit.Radius*math.Sin(t),
		orbit.Center[1] + orbit.Radius*math.Cos(t),
		orbit.Center[2],
	})
}

// Spin rotates node about one of its Euler axes (0 = X, 1 = Y, 2 = Z) at the given speed in radians per second, starting
// from the angle the node has when the Animation is created.
func Spin(g *Graph, node NodeID, axis int, radiansPerSecond float64) Animation {
	local, _ := g.LocalTransform(node)
	base := local.Rotation.Angle(axis)
	return AnimationFunc(func(fc *FrameContext) {
		local, err := fc.Graph.LocalTransform(node)
		if err != nil {
			return
		}
		fc.Graph.SetLocalRotation(node, local.Rotation.WithAngle(axis, base+fc.Elapsed*radiansPerSecond))
	})
}

// SpinRate is a Spin whose speed is read every frame, so it can be bound to a debug property. Because the angle is
// base + elapsed * rate, changing the rate makes the node jump to where it would be had it always spun at that rate.
func SpinRate(g *Graph, node NodeID, axis int, rate *float64) Animation {
	local, _ := g.LocalTransform(node)
	base := local.Rotation.Angle(axis)
	return AnimationFunc(func(fc *FrameContext) {
		local, err := fc.Graph.LocalTransform(node)
		if err != nil {
			return
		}
		fc.Graph.SetLocalRotation(node, local.Rotation.WithAngle(axis, base+fc.Elapsed*(*rate)))
	})
}

// Follow re-aims node at target's world position each frame.
func Follow(node, target NodeID) Animation {
	return AnimationFunc(func(fc *FrameContext) {
		if !fc.Graph.Alive(target) {
			return
		}
		fc.Graph.LookAt(node, fc.Graph.WorldPosition(target), WorldUp)
	})
}

// TweenMode controls what a Tween does once its duration has passed.
type TweenMode int

const (
	TweenOnce     TweenMode = iota // TweenOnce plays once and holds the end value.
	TweenLoop                      // TweenLoop starts over from the beginning.
	TweenPingPong                  // TweenPingPong plays forwards, then backwards, and so on.
)

// Tween eases a value from Begin to End over Duration seconds and hands each frame's value to a setter.
// The value is computed from the time since Start, so a Tween sampled at the same elapsed time always yields the same value.
type Tween struct {
	Start  float64 // Elapsed time, in seconds, at which the Tween begins.
	Mode   TweenMode
	tween  *gween.Tween
	length float64
	setter func(fc *FrameContext, value float64)
}

// NewTween creates a new Tween from begin to end over duration seconds with the given easing function (ease.Linear if nil).
func NewTween(begin, end, duration float64, easing ease.TweenFunc, mode TweenMode, setter func(fc *FrameContext, value float64)) *Tween {
	if easing == nil {
		easing = ease.Linear
	}
	return &Tween{
		Mode:   mode,
		tween:  gween.New(float32(begin), float32(end), float32(duration), easing),
		length: duration,
		setter: setter,
	}
}

// Value returns the Tween's value at the given elapsed time.
func (tween *Tween) Value(elapsed float64) float64 {

	local := elapsed - tween.Start
	if local < 0 {
		local = 0
	}

	if tween.length > 0 {
		switch tween.Mode {
		case TweenLoop:
			local = math.Mod(local, tween.length)
		case TweenPingPong:
			local = math.Mod(local, tween.length*2)
			if local > tween.length {
				local = tween.length*2 - local
			}
		}
	}

	value, _ := tween.tween.Set(float32(local))
	return float64(value)

}

// Animate sets the Tween's value for the frame.
func (tween *Tween) Animate(fc *FrameContext) {
	if tween.setter != nil {
		tween.setter(fc, tween.Value(fc.Elapsed))
	}
}

// TweenPosition returns a setter for NewTween that moves node along one axis (0 = X, 1 = Y, 2 = Z).
func TweenPosition(node NodeID, axis int) func(fc *FrameContext, value float64) {
	return func(fc *FrameContext, value float64) {
		local, err := fc.Graph.LocalTransform(node)
		if err != nil {
			return
		}
		local.Position[axis] = value
		fc.Graph.SetLocalPosition(node, local.Position)
	}
}

// TrackType is the node property an AnimationTrack drives.
type TrackType int

const (
	TrackTypePosition TrackType = iota
	TrackTypeScale
)

// Keyframe is a value at a point in time.
type Keyframe struct {
	Time  float64
	Value mgl64.Vec3
}

// AnimationTrack linearly interpolates between Keyframes, which must be sorted by time.
type AnimationTrack struct {
	Node      NodeID
	Type      TrackType
	Keyframes []Keyframe
	Loop      bool
}

// AddKeyframe appends a Keyframe to the track.
func (track *AnimationTrack) AddKeyframe(time float64, value mgl64.Vec3) {
	track.Keyframes = append(track.Keyframes, Keyframe{Time: time, Value: value})
}

// ValueAt returns the track's interpolated value at the given time.
func (track *AnimationTrack) ValueAt(time float64) mgl64.Vec3 {

	if len(track.Keyframes) == 0 {
		return mgl64.Vec3{}
	}

	first := track.Keyframes[0]
	last := track.Keyframes[len(track.Keyframes)-1]

	if track.Loop && last.Time > first.Time {
		time = first.Time + math.Mod(time-first.Time, last.Time-first.Time)
	}

	if time <= first.Time {
		return first.Value
	} else if time >= last.Time {
		return last.Value
	}

	for i := 1; i < len(track.Keyframes); i++ {
		next := track.Keyframes[i]
		if time <= next.Time {
			prev := track.Keyframes[i-1]
			if next.Time == prev.Time {
				return next.Value
			}
			t := (time - prev.Time) / (next.Time - prev.Time)
			return prev.Value.Add(next.Value.Sub(prev.Value).Mul(t))
		}
	}

	return last.Value

}

// Animate applies the track's value at fc.Elapsed to its node.
func (track *AnimationTrack) Animate(fc *FrameContext) {
	value := track.ValueAt(fc.Elapsed)
	switch track.Type {
	case TrackTypePosition:
		fc.Graph.SetLocalPosition(track.Node, value)
	case TrackTypeScale:
		fc.Graph.SetLocalScale(track.Node, value)
	}
}
