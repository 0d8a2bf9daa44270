package nif

import (
	"fmt"

	"github.com/Faultbox/nifpatch/pkg/math"
)

// Shader is the shader property attached to a shape. The set of variants is
// closed: *LightingShader and *EffectShader.
type Shader interface {
	Kind() ShaderKind
	shader()
}

// ShaderKind identifies a shader variant.
type ShaderKind string

const (
	KindLighting ShaderKind = "lighting"
	KindEffect   ShaderKind = "effect"
)

// ShaderFlags1 is the first shader flag register.
type ShaderFlags1 uint32

// ShaderFlags1 bits.
const (
	SLSF1Specular           ShaderFlags1 = 1 << 0
	SLSF1Skinned            ShaderFlags1 = 1 << 1
	SLSF1VertexAlpha        ShaderFlags1 = 1 << 3
	SLSF1EnvironmentMapping ShaderFlags1 = 1 << 7
	SLSF1ReceiveShadows     ShaderFlags1 = 1 << 8
	SLSF1CastShadows        ShaderFlags1 = 1 << 9
	SLSF1Parallax           ShaderFlags1 = 1 << 11
	SLSF1ModelSpaceNormals  ShaderFlags1 = 1 << 12
	SLSF1OwnEmit            ShaderFlags1 = 1 << 22
	SLSF1Decal              ShaderFlags1 = 1 << 26
	SLSF1ExternalEmittance  ShaderFlags1 = 1 << 29
	SLSF1ZBufferTest        ShaderFlags1 = 1 << 31
)

// Has reports whether all bits of f are set.
func (r ShaderFlags1) Has(f ShaderFlags1) bool { return r&f == f }

// Set sets bits f.
func (r *ShaderFlags1) Set(f ShaderFlags1) { *r |= f }

// Clear clears bits f.
func (r *ShaderFlags1) Clear(f ShaderFlags1) { *r &^= f }

// Toggle sets bits f when on is true and clears them otherwise.
func (r *ShaderFlags1) Toggle(f ShaderFlags1, on bool) {
	if on {
		r.Set(f)
	} else {
		r.Clear(f)
	}
}

// ShaderFlags2 is the second shader flag register.
type ShaderFlags2 uint32

// ShaderFlags2 bits.
const (
	SLSF2ZBufferWrite       ShaderFlags2 = 1 << 0
	SLSF2DoubleSided        ShaderFlags2 = 1 << 4
	SLSF2VertexColors       ShaderFlags2 = 1 << 5
	SLSF2GlowMap            ShaderFlags2 = 1 << 6
	SLSF2Unused01           ShaderFlags2 = 1 << 23 // PBR marker
	SLSF2MultiLayerParallax ShaderFlags2 = 1 << 24
	SLSF2SoftLighting       ShaderFlags2 = 1 << 25
	SLSF2RimLighting        ShaderFlags2 = 1 << 26
	SLSF2BackLighting       ShaderFlags2 = 1 << 27
	SLSF2TreeAnim           ShaderFlags2 = 1 << 29
	SLSF2EffectLighting     ShaderFlags2 = 1 << 30
)

// SLSF2PBR marks a shape as using the PBR material scheme.
const SLSF2PBR = SLSF2Unused01

// Has reports whether all bits of f are set.
func (r ShaderFlags2) Has(f ShaderFlags2) bool { return r&f == f }

// Set sets bits f.
func (r *ShaderFlags2) Set(f ShaderFlags2) { *r |= f }

// Clear clears bits f.
func (r *ShaderFlags2) Clear(f ShaderFlags2) { *r &^= f }

// Toggle sets bits f when on is true and clears them otherwise.
func (r *ShaderFlags2) Toggle(f ShaderFlags2, on bool) {
	if on {
		r.Set(f)
	} else {
		r.Clear(f)
	}
}

// ShaderType is the lighting shader type.
type ShaderType uint32

const (
	ShaderDefault            ShaderType = 0
	ShaderEnvironmentMap     ShaderType = 1
	ShaderMultiLayerParallax ShaderType = 11
)

// String returns a human-readable shader type name.
func (t ShaderType) String() string {
	switch t {
	case ShaderDefault:
		return "Default"
	case ShaderEnvironmentMap:
		return "EnvironmentMap"
	case ShaderMultiLayerParallax:
		return "MultiLayerParallax"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// LightingShader is the PBR-capable shader variant.
type LightingShader struct {
	Type   ShaderType   `yaml:"type"`
	Flags1 ShaderFlags1 `yaml:"flags1"`
	Flags2 ShaderFlags2 `yaml:"flags2"`

	Glossiness       float32   `yaml:"glossiness"`
	SpecularColor    math.Vec3 `yaml:"specular_color"`
	SpecularStrength float32   `yaml:"specular_strength"`
	SoftLighting     float32   `yaml:"soft_lighting"`
	RimLightPower    float32   `yaml:"rim_light_power"`
	EnvMapScale      float32   `yaml:"env_map_scale"`
	EmissiveMultiple float32   `yaml:"emissive_multiple"`
	EmissiveColor    Color4    `yaml:"emissive_color"`
	UVScale          math.Vec2 `yaml:"uv_scale"`

	ParallaxEnvmapStrength      float32   `yaml:"parallax_envmap_strength"`
	ParallaxRefractionScale     float32   `yaml:"parallax_refraction_scale"`
	ParallaxInnerLayerThickness float32   `yaml:"parallax_inner_layer_thickness"`
	ParallaxInnerLayerScale     math.Vec2 `yaml:"parallax_inner_layer_scale"`
}

// NewLightingShader returns a default lighting shader.
func NewLightingShader() *LightingShader {
	return &LightingShader{
		Flags1:           SLSF1Specular | SLSF1ReceiveShadows | SLSF1CastShadows | SLSF1ZBufferTest,
		Flags2:           SLSF2ZBufferWrite,
		Glossiness:       80,
		SpecularColor:    math.Vec3{X: 1, Y: 1, Z: 1},
		SpecularStrength: 1,
		SoftLighting:     0.3,
		RimLightPower:    2,
		EnvMapScale:      1,
		EmissiveMultiple: 1,
		UVScale:          math.Uniform(1),
	}
}

func (*LightingShader) Kind() ShaderKind { return KindLighting }
func (*LightingShader) shader()          {}

// SetType switches the shader type and clears the flag bits owned by the
// other types, so at most one of SLSF1EnvironmentMapping and
// SLSF2MultiLayerParallax is set and it agrees with Type.
func (s *LightingShader) SetType(t ShaderType) {
	s.Type = t
	switch t {
	case ShaderEnvironmentMap:
		s.Flags1.Set(SLSF1EnvironmentMapping)
		s.Flags2.Clear(SLSF2MultiLayerParallax)
	case ShaderMultiLayerParallax:
		s.Flags1.Clear(SLSF1EnvironmentMapping)
		s.Flags2.Set(SLSF2MultiLayerParallax)
	default:
		s.Flags1.Clear(SLSF1EnvironmentMapping)
		s.Flags2.Clear(SLSF2MultiLayerParallax)
	}
}

// EffectShader is the effect shader variant. The patcher does not edit it.
type EffectShader struct {
	SourceTexture string `yaml:"source_texture"`
	Flags1        uint32 `yaml:"flags1"`
	Flags2        uint32 `yaml:"flags2"`
}

func (*EffectShader) Kind() ShaderKind { return KindEffect }
func (*EffectShader) shader()          {}
