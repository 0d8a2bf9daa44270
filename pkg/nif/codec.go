package nif

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Extension is the file extension of mesh snapshots.
const Extension = ".nif.yaml"

// Codec errors.
var (
	ErrInvalidMesh   = errors.New("invalid mesh document")
	ErrUnknownShader = errors.New("unknown shader kind")
)

type shaderDoc struct {
	Kind     ShaderKind      `yaml:"kind"`
	Lighting *LightingShader `yaml:"lighting,omitempty"`
	Effect   *EffectShader   `yaml:"effect,omitempty"`
}

// shapeFields has the fields of Shape without its methods.
type shapeFields Shape

type shapeDoc struct {
	Fields shapeFields `yaml:",inline"`
	Shader *shaderDoc  `yaml:"shader,omitempty"`
}

// MarshalYAML encodes the shader union as a tagged mapping.
func (s *Shape) MarshalYAML() (interface{}, error) {
	doc := shapeDoc{Fields: shapeFields(*s)}
	switch sh := s.Shader.(type) {
	case nil:
	case *LightingShader:
		doc.Shader = &shaderDoc{Kind: KindLighting, Lighting: sh}
	case *EffectShader:
		doc.Shader = &shaderDoc{Kind: KindEffect, Effect: sh}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownShader, sh)
	}
	return doc, nil
}

// UnmarshalYAML decodes a shape and its tagged shader.
func (s *Shape) UnmarshalYAML(node *yaml.Node) error {
	var doc shapeDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	*s = Shape(doc.Fields)
	if doc.Shader == nil {
		return nil
	}

	switch doc.Shader.Kind {
	case KindLighting:
		if doc.Shader.Lighting == nil {
			doc.Shader.Lighting = NewLightingShader()
		}
		s.Shader = doc.Shader.Lighting
	case KindEffect:
		if doc.Shader.Effect == nil {
			doc.Shader.Effect = &EffectShader{}
		}
		s.Shader = doc.Shader.Effect
	default:
		return fmt.Errorf("%w: %q on shape %q", ErrUnknownShader, doc.Shader.Kind, s.DisplayName())
	}
	return nil
}

// Decode reads a mesh snapshot.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidMesh)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidMesh, err)
	}
	for i, s := range f.Shapes {
		if s == nil {
			return nil, fmt.Errorf("%w: shape %d is empty", ErrInvalidMesh, i)
		}
	}
	return &f, nil
}

// Encode writes a mesh snapshot.
func Encode(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// Load reads a mesh snapshot from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Save writes a mesh snapshot to path, creating parent directories.
func Save(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return fmt.Errorf("encoding mesh: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
