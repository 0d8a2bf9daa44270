// Package nif provides the in-memory mesh object model the patcher operates on:
// shapes, their geometry, texture slots and lighting shader state.
//
// Binary NIF parsing is not part of this package. Meshes are exchanged as YAML
// snapshots (see Load and Save) produced by an external converter.
package nif

import "slices"

// File is one mesh file: an ordered list of shapes.
type File struct {
	Version string   `yaml:"version,omitempty"`
	Shapes  []*Shape `yaml:"shapes"`
}

// Shape is a mesh sub-object with its own geometry and material assignment.
type Shape struct {
	Name     string      `yaml:"name"`
	Geometry Geometry    `yaml:"geometry"`
	Textures *TextureSet `yaml:"textures,omitempty"`
	Shader   Shader      `yaml:"-"`
}

// UnnamedShape is the display name of shapes with an empty name.
const UnnamedShape = "<unnamed shape>"

// DisplayName returns the shape name for reporting.
func (s *Shape) DisplayName() string {
	if s == nil || s.Name == "" {
		return UnnamedShape
	}
	return s.Name
}

// SetTexture assigns path to the given slot. Out-of-range slots are ignored.
// A shape without a texture set gets one.
func (s *Shape) SetTexture(slot int, path string) {
	if slot < 0 || slot >= TextureSlots {
		return
	}
	if s.Textures == nil {
		s.Textures = &TextureSet{}
	}
	s.Textures[slot] = path
}

// LightingShader returns the shape's lighting shader, or nil if the shape
// has no shader or uses another variant.
func (s *Shape) LightingShader() *LightingShader {
	ls, _ := s.Shader.(*LightingShader)
	return ls
}

// GetShapes returns the shapes of the file in order.
func (f *File) GetShapes() []*Shape {
	return f.Shapes
}

// DeleteShape removes shape from the file. It reports whether the shape was present.
func (f *File) DeleteShape(shape *Shape) bool {
	i := slices.Index(f.Shapes, shape)
	if i < 0 {
		return false
	}
	f.Shapes = slices.Delete(f.Shapes, i, i+1)
	return true
}
