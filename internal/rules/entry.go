// Package rules loads, validates and normalizes the rule documents that drive
// the patcher.
//
// A rule document is an ordered list of entries. Each entry is a mapping from
// a fixed vocabulary of keys to values; Decode turns the generic mapping into
// a typed Entry and reports every key it had to drop.
package rules

import (
	"slices"

	"github.com/Faultbox/nifpatch/pkg/math"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// Rule vocabulary.
const (
	KeyNifFilter    = "nif_filter"
	KeyPathContains = "path_contains"
	KeyMatchNormal  = "match_normal"
	KeyMatchDiffuse = "match_diffuse"
	KeyTexture      = "texture"

	KeyDelete       = "delete"
	KeySmoothAngle  = "smooth_angle"
	KeyAutoUV       = "auto_uv"
	KeyVertexColors = "vertex_colors"

	KeySpecularLevel          = "specular_level"
	KeySubsurfaceColor        = "subsurface_color"
	KeyRoughnessScale         = "roughness_scale"
	KeySubsurfaceOpacity      = "subsurface_opacity"
	KeyDisplacementScale      = "displacement_scale"
	KeyEnvMapping             = "env_mapping"
	KeyEnvMapScale            = "env_map_scale"
	KeyEnvMapScaleMult        = "env_map_scale_mult"
	KeyCubemap                = "cubemap"
	KeyLockCubemap            = "lock_cubemap"
	KeyEmissiveScale          = "emissive_scale"
	KeyEmissiveColor          = "emissive_color"
	KeyUVScale                = "uv_scale"
	KeyParallaxEnvmapStrength = "parallax_envmap_strength"

	KeyPBR               = "pbr"
	KeyRename            = "rename"
	KeyLockDiffuse       = "lock_diffuse"
	KeyLockNormal        = "lock_normal"
	KeyLockEmissive      = "lock_emissive"
	KeyLockParallax      = "lock_parallax"
	KeyLockRMAOS         = "lock_rmaos"
	KeyLockCNR           = "lock_cnr"
	KeyLockSubsurface    = "lock_subsurface"
	KeyEmissive          = "emissive"
	KeyParallax          = "parallax"
	KeyCoatNormal        = "coat_normal"
	KeySubsurfaceFoliage = "subsurface_foliage"
	KeySubsurface        = "subsurface"
	KeyCoatDiffuse       = "coat_diffuse"
	KeyMultilayer        = "multilayer"
	KeyCoatColor         = "coat_color"
	KeyCoatSpecularLevel = "coat_specular_level"
	KeyCoatRoughness     = "coat_roughness"
	KeyCoatStrength      = "coat_strength"
	KeyCoatParallax      = "coat_parallax"
	KeyInnerUVScale      = "inner_uv_scale"
)

// Document is an ordered list of entries loaded from one source file.
type Document struct {
	Name    string
	Entries []Entry
}

// Entry is one typed rule. A nil pointer means the key was absent.
// Lock fields are plain flags: absent and false are equivalent.
type Entry struct {
	Index int      // position within the document
	Keys  []string // recognized keys present, sorted

	NifFilter    *string
	PathContains *string
	MatchNormal  *string
	MatchDiffuse *string
	Texture      *string

	Delete       *bool
	SmoothAngle  *float32
	AutoUV       *float32
	VertexColors *bool

	SpecularLevel          *float32
	SubsurfaceColor        *math.Vec3
	RoughnessScale         *float32
	SubsurfaceOpacity      *float32
	DisplacementScale      *float32
	EnvMapping             *bool
	EnvMapScale            *float32
	EnvMapScaleMult        *float32
	Cubemap                *string
	LockCubemap            bool
	EmissiveScale          *float32
	EmissiveColor          *nif.Color4
	UVScale                *float32
	ParallaxEnvmapStrength *float32

	PBR            *bool
	Rename         *string
	LockDiffuse    bool
	LockNormal     bool
	LockEmissive   bool
	LockParallax   bool
	LockRMAOS      bool
	LockCNR        bool
	LockSubsurface bool

	Emissive          *bool
	Parallax          *bool
	CoatNormal        *bool
	SubsurfaceFoliage *bool
	Subsurface        *bool
	CoatDiffuse       *bool
	Multilayer        *bool
	CoatColor         *math.Vec3
	CoatSpecularLevel *float32
	CoatRoughness     *float32
	CoatStrength      *float32
	CoatParallax      *bool
	InnerUVScale      *float32

	// Slots holds the direct overrides slot1..slot8.
	Slots [nif.TextureSlots]*string
}

// IsTrue reports whether b is present and true.
func IsTrue(b *bool) bool {
	return b != nil && *b
}

// IsFalse reports whether b is present and false.
func IsFalse(b *bool) bool {
	return b != nil && !*b
}

// Has reports whether key was present in the entry.
func (e *Entry) Has(key string) bool {
	return slices.Contains(e.Keys, key)
}

// CountEntries returns the total number of entries across documents.
func CountEntries(docs []Document) int {
	n := 0
	for _, d := range docs {
		n += len(d.Entries)
	}
	return n
}
