package framekit

import (
	"image"
	"strconv"
)

// ShadingModel selects how a Material's triangles are coloured by a Renderer.
type ShadingModel int

const (
	ShadingBasic  ShadingModel = iota // ShadingBasic draws the material colour (and texture) without any lighting.
	ShadingNormal                     // ShadingNormal tints each triangle by its view-space facing direction.
	ShadingDepth                      // ShadingDepth shades each triangle by its distance from the camera.
)

func (shading ShadingModel) String() string {
	switch shading {
	case ShadingBasic:
		return "basic"
	case ShadingNormal:
		return "normal"
	case ShadingDepth:
		return "depth"
	}
	return "ShadingModel(" + strconv.Itoa(int(shading)) + ")"
}

// TextureRef is a Material's texture slot. Version increases every time Image is replaced, so renderers can tell when a
// cached GPU copy is out of date.
type TextureRef struct {
	Image   image.Image
	Version uint64
}

// Set replaces the texture image and bumps the version.
func (ref *TextureRef) Set(img image.Image) {
	ref.Image = img
	ref.Version++
}

// Loaded returns true if an image has been set.
func (ref TextureRef) Loaded() bool {
	return ref.Image != nil
}

// Material describes how a Renderable's triangles are drawn. Until a texture is loaded, a Material draws as its plain Color.
type Material struct {
	Name            string       // Name is the name of the Material.
	Color           Color        // The overall color of the Material.
	Texture         TextureRef   // The texture applied to the Material, if any.
	Shading         ShadingModel // How the triangles are coloured.
	Wireframe       bool         // If set, only triangle edges are drawn.
	BackfaceCulling bool         // If backface culling is enabled (which it is by default), faces turned away from the camera aren't rendered.
	Properties      *Properties  // Properties allows you to specify auxiliary data on the Material.
}

// NewMaterial creates a new white Material with the name given.
func NewMaterial(name string) *Material {
	return &Material{
		Name:            name,
		Color:           NewColor(1, 1, 1, 1),
		BackfaceCulling: true,
		Properties:      NewProperties(),
	}
}

// NewBasicMaterial creates a new unlit Material of the given colour.
func NewBasicMaterial(name string, color Color) *Material {
	material := NewMaterial(name)
	material.Color = color
	return material
}

// Clone creates a clone of the specified Material. The texture image is shared.
func (material *Material) Clone() *Material {
	newMat := NewMaterial(material.Name)
	newMat.Color = material.Color
	newMat.Texture = material.Texture
	newMat.Shading = material.Shading
	newMat.Wireframe = material.Wireframe
	newMat.BackfaceCulling = material.BackfaceCulling
	newMat.Properties = material.Properties.Clone()
	return newMat
}
