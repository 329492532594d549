package assets

import (
	"bytes"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/solarlune/framekit"
)

func decodeModel(data []byte) (*Library, error) {
	doc := &gltf.Document{}
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "decoding glTF")
	}
	return LibraryFromDocument(doc)
}

// LibraryFromDocument converts a decoded glTF document into a Library. Materials keep their base color and culling mode,
// meshes are merged per glTF mesh (every primitive must be a triangle list), and nodes keep their hierarchy and
// local transforms. Only the document's default scene (or its first) is used.
func LibraryFromDocument(doc *gltf.Document) (*Library, error) {

	lib := NewLibrary()

	images := make([]image.Image, len(doc.Images))

	for i, gltfImage := range doc.Images {

		// Only images packed into the document's buffers are used; external URIs aren't followed.
		if gltfImage.BufferView == nil {
			continue
		}

		imageData, err := modeler.ReadBufferView(doc, doc.BufferViews[*gltfImage.BufferView])
		if err != nil {
			return nil, errors.Wrapf(err, "reading image %d", i)
		}

		img, err := decodeImage(mimeExtension(gltfImage.MimeType), imageData, 0)
		if err != nil {
			return nil, errors.WithMessagef(err, "image %d", i)
		}

		images[i] = img

	}

	materials := make([]*framekit.Material, len(doc.Materials))

	for i, gltfMat := range doc.Materials {

		name := gltfMat.Name
		if name == "" {
			name = fmt.Sprintf("Material.%d", i)
		}

		newMat := framekit.NewMaterial(name)
		newMat.BackfaceCulling = !gltfMat.DoubleSided

		if pbr := gltfMat.PBRMetallicRoughness; pbr != nil {
			color := pbr.BaseColorFactorOrDefault()
			newMat.Color = framekit.NewColor(float32(color[0]), float32(color[1]), float32(color[2]), float32(color[3]))

			if texInfo := pbr.BaseColorTexture; texInfo != nil && int(texInfo.Index) < len(doc.Textures) {
				if src := doc.Textures[texInfo.Index].Source; src != nil && int(*src) < len(images) && images[*src] != nil {
					newMat.Texture.Set(images[*src])
				}
			}
		}

		copyExtras(gltfMat.Extras, newMat.Properties)

		materials[i] = newMat
		lib.Materials[name] = newMat

	}

	geometries := make([]*framekit.Geometry, len(doc.Meshes))
	meshMaterials := make([]*framekit.Material, len(doc.Meshes))

	for i, mesh := range doc.Meshes {

		name := mesh.Name
		if name == "" {
			name = fmt.Sprintf("Mesh.%d", i)
		}

		vertices := []framekit.Vertex{}
		indices := []uint32{}

		for p, prim := range mesh.Primitives {

			if prim.Mode != gltf.PrimitiveTriangles {
				return nil, errors.Errorf("mesh %q primitive %d isn't a triangle list", name, p)
			}

			posIndex, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				return nil, errors.Errorf("mesh %q primitive %d has no positions", name, p)
			}

			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "reading positions of mesh %q", name)
			}

			var uvs [][2]float32
			if uvIndex, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
				uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIndex], nil)
				if err != nil {
					return nil, errors.Wrapf(err, "reading UVs of mesh %q", name)
				}
			}

			base := uint32(len(vertices))

			for v, pos := range positions {
				vert := framekit.Vertex{Position: mgl64.Vec3{float64(pos[0]), float64(pos[1]), float64(pos[2])}}
				if v < len(uvs) {
					// glTF UVs already have V running down the image.
					vert.UV = mgl64.Vec2{float64(uvs[v][0]), float64(uvs[v][1])}
				}
				vertices = append(vertices, vert)
			}

			if prim.Indices != nil {
				primIndices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, errors.Wrapf(err, "reading indices of mesh %q", name)
				}
				for _, index := range primIndices {
					indices = append(indices, base+index)
				}
			} else {
				for v := range positions {
					indices = append(indices, base+uint32(v))
				}
			}

			if prim.Material != nil && meshMaterials[i] == nil && int(*prim.Material) < len(materials) {
				meshMaterials[i] = materials[*prim.Material]
			}

		}

		geometry, err := framekit.NewGeometry(name, vertices, indices)
		if err != nil {
			return nil, errors.WithMessagef(err, "mesh %q", name)
		}

		geometries[i] = geometry
		lib.Geometries[name] = geometry

	}

	// Nodes are added in document order; parents are patched up afterwards from each node's children list.
	lib.Nodes = make([]LibraryNode, len(doc.Nodes))

	for i, node := range doc.Nodes {

		name := node.Name
		if name == "" {
			name = fmt.Sprintf("Node.%d", i)
		}

		libNode := LibraryNode{
			Name:       name,
			Parent:     -1,
			Transform:  nodeTransform(node),
			Properties: framekit.NewProperties(),
		}

		copyExtras(node.Extras, libNode.Properties)

		if node.Mesh != nil && int(*node.Mesh) < len(geometries) {
			libNode.Geometry = geometries[*node.Mesh]
			libNode.Material = meshMaterials[*node.Mesh]
		}

		lib.Nodes[i] = libNode

	}

	for i, node := range doc.Nodes {
		for _, child := range node.Children {
			if int(child) >= len(lib.Nodes) {
				return nil, errors.Errorf("node %q has out-of-range child %d", lib.Nodes[i].Name, child)
			}
			if lib.Nodes[child].Parent >= 0 {
				return nil, errors.Wrapf(framekit.ErrInvalidHierarchy, "node %q has more than one parent", lib.Nodes[child].Name)
			}
			lib.Nodes[child].Parent = i
		}
	}

	remap := make([]int, len(lib.Nodes))
	for i := range remap {
		remap[i] = i
	}

	// Nodes outside the used scene are dropped, and parent indices remapped to match.
	if len(doc.Scenes) > 0 {

		sceneIndex := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			sceneIndex = int(*doc.Scene)
		}

		inScene := make([]bool, len(lib.Nodes))
		var mark func(index int)
		mark = func(index int) {
			if inScene[index] {
				return
			}
			inScene[index] = true
			for _, child := range doc.Nodes[index].Children {
				mark(int(child))
			}
		}
		for _, root := range doc.Scenes[sceneIndex].Nodes {
			if int(root) < len(lib.Nodes) {
				mark(int(root))
			}
		}

		kept := []LibraryNode{}
		for i, n := range lib.Nodes {
			remap[i] = -1
			if inScene[i] {
				remap[i] = len(kept)
				kept = append(kept, n)
			}
		}
		for i := range kept {
			if kept[i].Parent >= 0 {
				kept[i].Parent = remap[kept[i].Parent]
			}
		}
		lib.Nodes = kept

	}

	for i, gltfAnim := range doc.Animations {
		anim, err := readAnimation(doc, gltfAnim, remap)
		if err != nil {
			return nil, errors.WithMessagef(err, "animation %d", i)
		}
		if anim.Name == "" {
			anim.Name = fmt.Sprintf("Animation.%d", i)
		}
		if len(anim.Tracks) > 0 {
			lib.Animations = append(lib.Animations, anim)
		}
	}

	return lib, nil

}

// readAnimation converts a glTF animation's translation and scale channels into tracks; rotation and morph weight channels,
// and channels aimed at nodes outside the scene, are skipped. nodeIndex maps document node indices to Library node indices
// (-1 for dropped nodes). Step interpolation is kept by doubling keyframes; cubic splines keep only their values.
func readAnimation(doc *gltf.Document, gltfAnim *gltf.Animation, nodeIndex []int) (LibraryAnimation, error) {

	anim := LibraryAnimation{Name: gltfAnim.Name}

	for c, channel := range gltfAnim.Channels {

		var trackType framekit.TrackType
		switch channel.Target.Path {
		case gltf.TRSTranslation:
			trackType = framekit.TrackTypePosition
		case gltf.TRSScale:
			trackType = framekit.TrackTypeScale
		default:
			continue
		}

		if channel.Target.Node == nil || *channel.Target.Node >= len(nodeIndex) || nodeIndex[*channel.Target.Node] < 0 {
			continue
		}

		if channel.Sampler < 0 || channel.Sampler >= len(gltfAnim.Samplers) {
			return anim, errors.Errorf("channel %d has out-of-range sampler %d", c, channel.Sampler)
		}
		sampler := gltfAnim.Samplers[channel.Sampler]

		if sampler.Input >= len(doc.Accessors) || sampler.Output >= len(doc.Accessors) {
			return anim, errors.Errorf("channel %d has out-of-range accessors", c)
		}

		input, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Input], nil)
		if err != nil {
			return anim, errors.Wrapf(err, "reading keyframe times of channel %d", c)
		}
		output, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Output], nil)
		if err != nil {
			return anim, errors.Wrapf(err, "reading keyframe values of channel %d", c)
		}

		times, ok := input.([]float32)
		if !ok {
			return anim, errors.Errorf("channel %d keyframe times aren't floats", c)
		}
		values, ok := output.([][3]float32)
		if !ok {
			return anim, errors.Errorf("channel %d keyframe values aren't float vectors", c)
		}

		stride, offset := 1, 0
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			stride, offset = 3, 1
		}
		if len(values) != len(times)*stride {
			return anim, errors.Errorf("channel %d has %d keyframe times but %d values", c, len(times), len(values))
		}

		track := LibraryTrack{Node: nodeIndex[*channel.Target.Node], Type: trackType}
		for k, t := range times {
			v := values[k*stride+offset]
			value := mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
			if sampler.Interpolation == gltf.InterpolationStep && k > 0 {
				prev := track.Keyframes[len(track.Keyframes)-1]
				track.Keyframes = append(track.Keyframes, framekit.Keyframe{Time: float64(t), Value: prev.Value})
			}
			track.Keyframes = append(track.Keyframes, framekit.Keyframe{Time: float64(t), Value: value})
		}

		anim.Tracks = append(anim.Tracks, track)

	}

	return anim, nil

}

// mimeExtension returns a file extension for an embedded image's MIME type, for picking its decoder.
func mimeExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/gif":
		return ".gif"
	}
	return ".png"
}

// nodeTransform reads a glTF node's local transform, from its matrix if it has a non-identity one, or its TRS properties
// otherwise. Unset scale and rotation fall back to their identities.
func nodeTransform(node *gltf.Node) framekit.Transform {

	matrix := mgl64.Mat4(node.Matrix)
	if matrix != (mgl64.Mat4{}) && matrix != mgl64.Ident4() {
		return framekit.Decompose(matrix, framekit.EulerXYZ)
	}

	transform := framekit.NewTransform()
	transform.Position = mgl64.Vec3{node.Translation[0], node.Translation[1], node.Translation[2]}

	if node.Scale != [3]float64{} {
		transform.Scale = mgl64.Vec3{node.Scale[0], node.Scale[1], node.Scale[2]}
	}

	if node.Rotation != [4]float64{} {
		quat := mgl64.Quat{W: node.Rotation[3], V: mgl64.Vec3{node.Rotation[0], node.Rotation[1], node.Rotation[2]}}
		transform.Rotation = framekit.EulerFromQuat(quat.Normalize(), framekit.EulerXYZ)
	}

	return transform

}

// copyExtras copies a glTF extras object into props; numbers, strings, and bools come across, along with 3-number arrays
// as vectors. Anything else is skipped.
func copyExtras(extras any, props *framekit.Properties) {

	dataMap, isMap := extras.(map[string]any)
	if !isMap {
		return
	}

	for name, value := range dataMap {

		switch v := value.(type) {
		case float64, string, bool:
			props.Get(name).Set(v)
		case []any:
			if len(v) != 3 {
				continue
			}
			vec := mgl64.Vec3{}
			valid := true
			for i := range v {
				f, ok := v[i].(float64)
				if !ok {
					valid = false
					break
				}
				vec[i] = f
			}
			if valid {
				props.Get(name).Set(vec)
			}
		}

	}

}
