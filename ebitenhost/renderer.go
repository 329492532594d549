package ebitenhost

import (
	"image/color"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"github.com/solarlune/framekit"
)

// MaxTriangleCount is the most triangles a single DrawTriangles call is given, so that indices fit in a uint16.
const MaxTriangleCount = 21845

// RenderStats holds counts from the last frame a Renderer drew.
type RenderStats struct {
	FrameTime      time.Duration // CPU time spent projecting, sorting, and submitting triangles.
	TotalTris      int           // Triangles in visible Renderables.
	DrawnTris      int           // Triangles drawn, after clipping and backface culling.
	DrawCalls      int           // DrawTriangles calls made.
	CachedTextures int           // Material textures currently uploaded.
}

type textureEntry struct {
	image   *ebiten.Image
	version uint64
}

// Renderer is a framekit.Renderer that draws flat-shaded (or textured) triangles with Ebitengine. Triangles are projected
// on the CPU with the camera's view-projection matrix, culled, sorted back to front, and submitted with DrawTriangles.
type Renderer struct {
	ClearColor framekit.Color
	DepthBins  int // How finely triangles are sorted by depth.

	surface *Surface
	logger  logrus.FieldLogger

	whiteImage *ebiten.Image
	bucket     *sortingTriangleBucket
	vertices   []ebiten.Vertex
	indices    []uint16

	textures      map[*framekit.Material]textureEntry
	nodeMaterials map[framekit.NodeID]*framekit.Material
	watcher       *framekit.TreeWatcher
	watchedGraph  *framekit.Graph

	stats RenderStats
}

// NewRenderer creates a new Renderer drawing to the given Surface.
func NewRenderer(surface *Surface, logger logrus.FieldLogger) *Renderer {

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	whiteImage := ebiten.NewImage(1, 1)
	whiteImage.Fill(color.White)

	return &Renderer{
		ClearColor:    framekit.NewColor(0, 0, 0, 1),
		DepthBins:     512,
		surface:       surface,
		logger:        logger.WithField("component", "renderer"),
		whiteImage:    whiteImage,
		vertices:      make([]ebiten.Vertex, 0, MaxTriangleCount*3),
		indices:       make([]uint16, 0, MaxTriangleCount*3),
		textures:      map[*framekit.Material]textureEntry{},
		nodeMaterials: map[framekit.NodeID]*framekit.Material{},
	}

}

// Stats returns the counts from the last frame.
func (r *Renderer) Stats() RenderStats {
	return r.stats
}

// watch keeps the texture cache in step with the Renderables in the graph, freeing textures no Renderable uses anymore.
func (r *Renderer) watch(g *framekit.Graph) {

	if r.watchedGraph != g {
		r.watchedGraph = g
		r.watcher = framekit.NewTreeWatcher(g, g.Root())
		r.watcher.WatchFilter = func(g *framekit.Graph, node framekit.NodeID) bool {
			return g.Kind(node) == framekit.NodeKindRenderable
		}
		r.watcher.OnAdd = func(node framekit.NodeID) {
			if renderable := g.Renderable(node); renderable != nil {
				r.nodeMaterials[node] = renderable.Material
			}
		}
		r.watcher.OnRemove = func(node framekit.NodeID) {
			material := r.nodeMaterials[node]
			delete(r.nodeMaterials, node)
			for _, m := range r.nodeMaterials {
				if m == material {
					return
				}
			}
			if entry, ok := r.textures[material]; ok {
				entry.image.Deallocate()
				delete(r.textures, material)
			}
		}
	}

	r.watcher.Update()

}

// texture returns the uploaded copy of the material's texture, uploading it again if the material's image has changed.
func (r *Renderer) texture(material *framekit.Material) *ebiten.Image {

	if material == nil || !material.Texture.Loaded() {
		return r.whiteImage
	}

	entry, ok := r.textures[material]
	if !ok || entry.version != material.Texture.Version {
		if ok {
			entry.image.Deallocate()
		}
		entry = textureEntry{
			image:   ebiten.NewImageFromImage(material.Texture.Image),
			version: material.Texture.Version,
		}
		r.textures[material] = entry
		r.logger.WithFields(logrus.Fields{"material": material.Name, "version": entry.version}).Debug("texture uploaded")
	}

	return entry.image

}

// Render draws the graph as seen by camera to the bound surface. It returns an error wrapping framekit.ErrSurfaceLost if
// the surface can't be drawn to.
func (r *Renderer) Render(g *framekit.Graph, camera *framekit.Camera) error {

	target, err := r.surface.Target()
	if err != nil {
		return err
	}

	start := time.Now()
	r.stats = RenderStats{}

	r.watch(g)

	target.Fill(r.ClearColor)

	bounds := target.Bounds()
	width, height := float32(bounds.Dx()), float32(bounds.Dy())

	if r.bucket == nil || len(r.bucket.bins) != r.DepthBins {
		r.bucket = newSortingTriangleBucket(r.DepthBins)
	}
	r.bucket.Clear()

	vp := camera.ViewProjection()

	g.Walk(g.Root(), func(node framekit.NodeID) bool {

		if !g.Visible(node) {
			return false
		}

		renderable := g.Renderable(node)
		if renderable == nil || renderable.Geometry == nil {
			return true
		}

		world, err := g.WorldTransform(node)
		if err != nil {
			return true
		}

		// Whole meshes outside the frustum are skipped before any triangle work.
		if !camera.SphereInFrustum(renderable.Geometry.WorldBoundingSphere(world)) {
			return true
		}

		r.addGeometry(renderable, world, vp, width, height)
		return true

	})

	r.bucket.Sort()
	r.draw(target)

	r.stats.CachedTextures = len(r.textures)
	r.stats.FrameTime = time.Since(start)

	return nil

}

func (r *Renderer) addGeometry(renderable *framekit.Renderable, world, vp mgl64.Mat4, width, height float32) {

	geometry := renderable.Geometry
	material := renderable.Material
	if material == nil {
		material = framekit.NewMaterial("")
	}

	mvp := vp.Mul4(world)
	img := r.texture(material)
	srcW, srcH := float32(img.Bounds().Dx()), float32(img.Bounds().Dy())

	for t := 0; t < geometry.TriangleCount(); t++ {

		r.stats.TotalTris++

		v0, v1, v2 := geometry.Triangle(t)

		c0 := mvp.Mul4x1(v0.Position.Vec4(1))
		c1 := mvp.Mul4x1(v1.Position.Vec4(1))
		c2 := mvp.Mul4x1(v2.Position.Vec4(1))

		if clipRejects(c0, c1, c2) {
			continue
		}

		s0, s1, s2 := toScreen(c0, width, height), toScreen(c1, width, height), toScreen(c2, width, height)

		if material.BackfaceCulling && !material.Wireframe && backFacing(s0, s1, s2) {
			continue
		}

		depth := (s0.depth + s1.depth + s2.depth) / 3

		normal := faceNormal(
			mgl64.TransformCoordinate(v0.Position, world),
			mgl64.TransformCoordinate(v1.Position, world),
			mgl64.TransformCoordinate(v2.Position, world),
		)
		c := shade(material, normal, depth)

		tri := sortingTriangle{image: img, depth: depth, wireframe: material.Wireframe}
		for i, pair := range [3]struct {
			s  screenVertex
			uv mgl64.Vec2
		}{{s0, v0.UV}, {s1, v1.UV}, {s2, v2.UV}} {
			tri.vertices[i] = ebiten.Vertex{
				DstX:   snap(pair.s.x),
				DstY:   snap(pair.s.y),
				SrcX:   float32(pair.uv[0]) * srcW,
				SrcY:   float32(pair.uv[1]) * srcH,
				ColorR: c.R,
				ColorG: c.G,
				ColorB: c.B,
				ColorA: c.A,
			}
			if img == r.whiteImage {
				tri.vertices[i].SrcX, tri.vertices[i].SrcY = 0.5, 0.5
			}
		}

		r.bucket.AddTriangle(tri)
		r.stats.DrawnTris++

	}

}

func (r *Renderer) draw(target *ebiten.Image) {

	var current *ebiten.Image

	flush := func() {
		if len(r.vertices) == 0 {
			return
		}
		target.DrawTriangles(r.vertices, r.indices, current, &ebiten.DrawTrianglesOptions{})
		r.stats.DrawCalls++
		r.vertices = r.vertices[:0]
		r.indices = r.indices[:0]
	}

	r.bucket.ForEach(func(tri *sortingTriangle) {

		if tri.wireframe {
			// Wireframes draw straight away, so anything drawn later still covers them.
			flush()
			v := tri.vertices
			c := color.RGBA{uint8(v[0].ColorR * 255), uint8(v[0].ColorG * 255), uint8(v[0].ColorB * 255), uint8(v[0].ColorA * 255)}
			for i := 0; i < 3; i++ {
				a, b := v[i], v[(i+1)%3]
				vector.StrokeLine(target, a.DstX, a.DstY, b.DstX, b.DstY, 1, c, false)
			}
			return
		}

		if tri.image != current || len(r.vertices)+3 > MaxTriangleCount*3 {
			flush()
			current = tri.image
		}

		start := uint16(len(r.vertices))
		r.vertices = append(r.vertices, tri.vertices[:]...)
		r.indices = append(r.indices, start, start+1, start+2)

	})

	flush()

}
