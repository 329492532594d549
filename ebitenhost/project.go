package ebitenhost

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/solarlune/framekit"
)

// screenVertex is a vertex after the perspective divide: a pixel position (Y pointing down) and its NDC depth.
type screenVertex struct {
	x, y, depth float32
}

// toScreen maps a clip-space position to pixel coordinates on a surface of the given size. clip[3] must be positive.
func toScreen(clip mgl64.Vec4, width, height float32) screenVertex {
	invW := 1 / float32(clip[3])
	ndcX := float32(clip[0]) * invW
	ndcY := float32(clip[1]) * invW
	return screenVertex{
		x:     (ndcX + 1) * 0.5 * width,
		y:     (1 - ndcY) * 0.5 * height,
		depth: float32(clip[2]) * invW,
	}
}

// clipRejects returns true if the triangle can't be drawn: a vertex is at or behind the eye, or all three vertices lie
// beyond the same clip plane.
func clipRejects(a, b, c mgl64.Vec4) bool {

	if a[3] <= 0 || b[3] <= 0 || c[3] <= 0 {
		return true
	}

	for axis := 0; axis < 3; axis++ {
		if a[axis] > a[3] && b[axis] > b[3] && c[axis] > c[3] {
			return true
		}
		if a[axis] < -a[3] && b[axis] < -b[3] && c[axis] < -c[3] {
			return true
		}
	}

	return false

}

// signedArea returns twice the signed area of a screen-space triangle. Triangles wound counter-clockwise in world space
// (facing the camera) come out negative, since screen Y points down.
func signedArea(a, b, c screenVertex) float32 {
	return (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
}

// backFacing returns true if the screen-space triangle faces away from the camera (or is edge-on).
func backFacing(a, b, c screenVertex) bool {
	return signedArea(a, b, c) >= 0
}

// shade returns the flat colour a triangle is drawn with under the material's shading model.
func shade(material *framekit.Material, worldNormal mgl64.Vec3, depth float32) framekit.Color {

	switch material.Shading {

	case framekit.ShadingNormal:
		n := worldNormal
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		return framekit.NewColor(
			float32(n[0])*0.5+0.5,
			float32(n[1])*0.5+0.5,
			float32(n[2])*0.5+0.5,
			material.Color.A,
		)

	case framekit.ShadingDepth:
		// NDC depth runs -1 (near) to 1 (far); near is drawn bright.
		v := 1 - clamp((depth+1)*0.5, 0, 1)
		return framekit.NewColor(v, v, v, material.Color.A)

	}

	return material.Color

}

// faceNormal returns the (unnormalised) normal of a counter-clockwise triangle.
func faceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// snap rounds a pixel coordinate down to a whole pixel.
func snap(v float32) float32 {
	return math32.Floor(v)
}
