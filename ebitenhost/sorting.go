package ebitenhost

import (
	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
)

// sortingTriangle is a projected triangle waiting to be drawn.
type sortingTriangle struct {
	vertices  [3]ebiten.Vertex
	image     *ebiten.Image
	depth     float32
	wireframe bool
}

type sortingTriangleBin struct {
	triangles []sortingTriangle
}

// sortingTriangleBucket orders triangles back to front by dropping them into depth bins; triangles in the same bin keep the
// order they were added in. It's coarser than a full sort, but linear, and plenty for a painter's algorithm.
type sortingTriangleBucket struct {
	bins      []sortingTriangleBin
	unsetTris []sortingTriangle
	minDepth  float32
	maxDepth  float32
}

func newSortingTriangleBucket(binCount int) *sortingTriangleBucket {
	if binCount < 1 {
		binCount = 1
	}
	bucket := &sortingTriangleBucket{bins: make([]sortingTriangleBin, binCount)}
	bucket.Clear()
	return bucket
}

// AddTriangle queues a triangle for sorting.
func (s *sortingTriangleBucket) AddTriangle(tri sortingTriangle) {
	s.unsetTris = append(s.unsetTris, tri)
	s.minDepth = math32.Min(s.minDepth, tri.depth)
	s.maxDepth = math32.Max(s.maxDepth, tri.depth)
}

// Len returns how many triangles have been added since the last Clear.
func (s *sortingTriangleBucket) Len() int {
	return len(s.unsetTris)
}

// Sort distributes the queued triangles into bins by depth.
func (s *sortingTriangleBucket) Sort() {

	binCount := len(s.bins)
	rangeDiff := s.maxDepth - s.minDepth

	if rangeDiff <= 0 {
		rangeDiff = 0.001
	}

	for _, tri := range s.unsetTris {
		targetBin := 0
		if binCount > 1 {
			depth := (tri.depth - s.minDepth) / rangeDiff * float32(binCount)
			targetBin = int(clamp(depth, 0, float32(binCount-1)))
		}
		s.bins[targetBin].triangles = append(s.bins[targetBin].triangles, tri)
	}

}

// ForEach calls fn for every sorted triangle, farthest first.
func (s *sortingTriangleBucket) ForEach(fn func(tri *sortingTriangle)) {
	for b := len(s.bins) - 1; b >= 0; b-- {
		for i := range s.bins[b].triangles {
			fn(&s.bins[b].triangles[i])
		}
	}
}

// Clear empties the bucket, keeping its storage.
func (s *sortingTriangleBucket) Clear() {
	for i := range s.bins {
		s.bins[i].triangles = s.bins[i].triangles[:0]
	}
	s.unsetTris = s.unsetTris[:0]
	s.minDepth = math32.Inf(1)
	s.maxDepth = math32.Inf(-1)
}

func clamp(value, min, max float32) float32 {
	return math32.Max(min, math32.Min(value, max))
}
