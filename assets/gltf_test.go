package assets

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarlune/framekit"
)

// triangleGLTF returns a small glTF document: a "Parent" group holding a "Tri" mesh node, plus an "Orphan" node outside
// the scene. The buffer is embedded as a data URI.
func triangleGLTF() []byte {

	buf := &bytes.Buffer{}
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(buf, binary.LittleEndian, f)
	}
	for _, i := range []uint16{0, 1, 2} {
		binary.Write(buf, binary.LittleEndian, i)
	}
	buf.Write([]byte{0, 0})

	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	return []byte(fmt.Sprintf(`{
	"asset": {"version": "2.0"},
	"scene": 0,
	"scenes": [{"nodes": [0]}],
	"nodes": [
		{"name": "Parent", "translation": [1, 2, 3], "children": [1]},
		{"name": "Tri", "mesh": 0, "scale": [2, 2, 2], "extras": {"speed": 4.5, "tag": "enemy", "offset": [1, 0, 0]}},
		{"name": "Orphan"}
	],
	"meshes": [{"name": "Triangle", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
	"materials": [{"name": "Red", "doubleSided": true, "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1]}}],
	"buffers": [{"byteLength": %d, "uri": %q}],
	"bufferViews": [
		{"buffer": 0, "byteOffset": 0, "byteLength": 36},
		{"buffer": 0, "byteOffset": 36, "byteLength": 6}
	],
	"accessors": [
		{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
		{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
	]
}`, buf.Len(), uri))

}

func TestDecodeModel(t *testing.T) {

	lib, err := decodeModel(triangleGLTF())
	require.NoError(t, err)

	require.Len(t, lib.Nodes, 2, "nodes outside the scene are dropped")
	assert.Equal(t, []int{0}, lib.Roots())
	assert.Equal(t, -1, lib.FindNode("Orphan"))

	tri := lib.Nodes[lib.FindNode("Tri")]
	assert.Equal(t, 0, tri.Parent)
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, tri.Transform.Scale)
	require.NotNil(t, tri.Geometry)
	assert.Equal(t, 1, tri.Geometry.TriangleCount())
	assert.Equal(t, "Triangle", tri.Geometry.Name)

	require.NotNil(t, tri.Material)
	assert.Equal(t, framekit.NewColor(1, 0, 0, 1), tri.Material.Color)
	assert.False(t, tri.Material.BackfaceCulling)

	assert.Equal(t, 4.5, tri.Properties.Get("speed").Value)
	assert.Equal(t, "enemy", tri.Properties.Get("tag").Value)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, tri.Properties.Get("offset").Value)

	parent := lib.Nodes[0]
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, parent.Transform.Position)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, parent.Transform.Scale)
	assert.Nil(t, parent.Geometry)

}

func TestInstantiate(t *testing.T) {

	lib, err := decodeModel(triangleGLTF())
	require.NoError(t, err)

	g := framekit.NewGraph("test")

	first, err := lib.Instantiate(g, g.Root())
	require.NoError(t, err)
	second, err := lib.Instantiate(g, g.Root())
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0], second[0])
	assert.Len(t, g.Children(g.Root()), 2)

	tri, ok := g.Get(first[0], "Tri")
	require.True(t, ok)
	assert.Equal(t, framekit.NodeKindRenderable, g.Kind(tri))
	assert.Equal(t, 4.5, g.Properties(tri).Get("speed").Value)

	pos := g.WorldPosition(tri)
	assert.InDelta(t, 1, pos[0], 1e-9)
	assert.InDelta(t, 2, pos[1], 1e-9)
	assert.InDelta(t, 3, pos[2], 1e-9)

	// Instances share geometry.
	otherTri, ok := g.Get(second[0], "Tri")
	require.True(t, ok)
	assert.Same(t, g.Renderable(tri).Geometry, g.Renderable(otherTri).Geometry)

}

func TestInstantiateRollsBackOnBadTransform(t *testing.T) {

	lib := NewLibrary()
	good := framekit.NewTransform()
	bad := framekit.NewTransform()
	bad.Scale = mgl64.Vec3{1, 0, 1}

	lib.Nodes = []LibraryNode{
		{Name: "Fine", Parent: -1, Transform: good},
		{Name: "Flat", Parent: 0, Transform: bad},
	}

	g := framekit.NewGraph("test")
	before := g.Len()

	_, err := lib.Instantiate(g, g.Root())
	assert.True(t, errors.Is(err, framekit.ErrDegenerateTransform))
	assert.Equal(t, before, g.Len())

}

func TestNodeTransformFromQuaternion(t *testing.T) {

	lib, err := decodeModel([]byte(fmt.Sprintf(`{
	"asset": {"version": "2.0"},
	"nodes": [{"name": "Turned", "rotation": [0, %v, 0, %v]}]
}`, math.Sin(math.Pi/6), math.Cos(math.Pi/6))))
	require.NoError(t, err)
	require.Len(t, lib.Nodes, 1)

	rot := lib.Nodes[0].Transform.Rotation
	assert.InDelta(t, math.Pi/3, rot.Y, 1e-6)
	assert.InDelta(t, 0, rot.X, 1e-6)
	assert.InDelta(t, 0, rot.Z, 1e-6)

}

func TestLoadModelThroughLoader(t *testing.T) {

	fsys := fstest.MapFS{
		"models/tri.gltf":    {Data: triangleGLTF()},
		"models/broken.gltf": {Data: []byte("{")},
	}
	queue := framekit.NewFrameQueue()
	loader := NewLoader(fsys, queue, Options{})

	results := map[string]Result{}
	record := func(fc *framekit.FrameContext, res Result) { results[res.Path] = res }

	loader.Load("models/tri.gltf", record)
	loader.Load("models/broken.gltf", record)
	drain(loader, queue)

	require.NoError(t, results["models/tri.gltf"].Err)
	require.NotNil(t, results["models/tri.gltf"].Model)
	assert.Len(t, results["models/tri.gltf"].Model.Nodes, 2)

	assert.True(t, errors.Is(results["models/broken.gltf"].Err, framekit.ErrAssetLoadFailure))
	assert.Nil(t, results["models/broken.gltf"].Model)

}

// animatedGLTF returns triangleGLTF's scene with an animation: Tri moves linearly from the origin to (0, 2, 0), Parent
// scales in a step from 1 to 3, and a rotation channel and a channel on the out-of-scene Orphan are both skipped.
func animatedGLTF() []byte {

	buf := &bytes.Buffer{}
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(buf, binary.LittleEndian, f)
	}
	for _, i := range []uint16{0, 1, 2} {
		binary.Write(buf, binary.LittleEndian, i)
	}
	buf.Write([]byte{0, 0})
	for _, f := range []float32{
		0, 1, // times, offset 44
		0, 0, 0, 0, 2, 0, // translations, offset 52
		1, 1, 1, 3, 3, 3, // scales, offset 76
	} {
		binary.Write(buf, binary.LittleEndian, f)
	}

	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	return []byte(fmt.Sprintf(`{
	"asset": {"version": "2.0"},
	"scene": 0,
	"scenes": [{"nodes": [0]}],
	"nodes": [
		{"name": "Parent", "children": [1]},
		{"name": "Tri", "mesh": 0},
		{"name": "Orphan"}
	],
	"meshes": [{"name": "Triangle", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
	"animations": [{
		"name": "Bounce",
		"channels": [
			{"sampler": 0, "target": {"node": 1, "path": "translation"}},
			{"sampler": 1, "target": {"node": 0, "path": "scale"}},
			{"sampler": 0, "target": {"node": 1, "path": "rotation"}},
			{"sampler": 0, "target": {"node": 2, "path": "translation"}}
		],
		"samplers": [
			{"input": 2, "output": 3, "interpolation": "LINEAR"},
			{"input": 2, "output": 4, "interpolation": "STEP"}
		]
	}],
	"buffers": [{"byteLength": %d, "uri": %q}],
	"bufferViews": [
		{"buffer": 0, "byteOffset": 0, "byteLength": 36},
		{"buffer": 0, "byteOffset": 36, "byteLength": 6},
		{"buffer": 0, "byteOffset": 44, "byteLength": 8},
		{"buffer": 0, "byteOffset": 52, "byteLength": 24},
		{"buffer": 0, "byteOffset": 76, "byteLength": 24}
	],
	"accessors": [
		{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
		{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
		{"bufferView": 2, "componentType": 5126, "count": 2, "type": "SCALAR", "min": [0], "max": [1]},
		{"bufferView": 3, "componentType": 5126, "count": 2, "type": "VEC3"},
		{"bufferView": 4, "componentType": 5126, "count": 2, "type": "VEC3"}
	]
}`, buf.Len(), uri))

}

func TestDecodeAnimations(t *testing.T) {

	lib, err := decodeModel(animatedGLTF())
	require.NoError(t, err)

	anim, ok := lib.FindAnimation("Bounce")
	require.True(t, ok)
	require.Len(t, anim.Tracks, 2, "rotation and out-of-scene channels are skipped")

	move := anim.Tracks[0]
	assert.Equal(t, lib.FindNode("Tri"), move.Node)
	assert.Equal(t, framekit.TrackTypePosition, move.Type)
	assert.Equal(t, []framekit.Keyframe{{Time: 0}, {Time: 1, Value: mgl64.Vec3{0, 2, 0}}}, move.Keyframes)

	grow := anim.Tracks[1]
	assert.Equal(t, lib.FindNode("Parent"), grow.Node)
	assert.Len(t, grow.Keyframes, 3, "step keyframes are doubled")

	g := framekit.NewGraph("test")
	roots, animations, err := lib.InstantiateAnimated(g, g.Root(), false)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Len(t, animations, 2)

	tri, ok := g.Get(roots[0], "Tri")
	require.True(t, ok)

	fc := &framekit.FrameContext{Graph: g, Elapsed: 0.5}
	for _, a := range animations {
		a.Animate(fc)
	}

	local, err := g.LocalTransform(tri)
	require.NoError(t, err)
	assert.InDelta(t, 1, local.Position[1], 1e-6)

	parent, err := g.LocalTransform(roots[0])
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, parent.Scale, "a step track holds its value until the next keyframe")

	fc.Elapsed = 1
	for _, a := range animations {
		a.Animate(fc)
	}
	parent, err = g.LocalTransform(roots[0])
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{3, 3, 3}, parent.Scale)

}
