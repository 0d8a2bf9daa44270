package patch

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/nifpatch/internal/rules"
	"github.com/Faultbox/nifpatch/pkg/math"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// ErrSubsurfaceConflict is reported when an entry enables both subsurface
// shading models. Both flag edits are still applied.
var ErrSubsurfaceConflict = errors.New("subsurface and subsurface_foliage both enabled")

// applier applies one entry to one shape. Every effect writes straight into
// the shape; nothing is staged.
type applier struct {
	eng    *Engine
	mesh   Mesh
	shape  *nif.Shape
	shader *nif.LightingShader
	doc    *rules.Document
	entry  *rules.Entry
	res    *Result
	sr     *ShapeResult
}

func (a *applier) touch() {
	a.sr.Modified = true
}

func (a *applier) report(kind Kind, err error) {
	d := Diagnostic{
		Kind:     kind,
		File:     a.res.File,
		Shape:    a.sr.Name,
		Document: a.doc.Name,
		Entry:    a.entry.Index,
		Err:      err,
	}
	a.res.Diagnostics = append(a.res.Diagnostics, d)

	msg := "Rule effect skipped"
	if kind == KindConflict {
		msg = "Conflicting rule effects applied"
	}
	a.eng.log.Warn(msg,
		zap.Stringer("kind", kind),
		zap.String("shape", d.Shape),
		zap.String("document", d.Document),
		zap.Int("entry", d.Entry),
		zap.Error(err),
	)
}

// apply runs all effects of the entry in order. It returns true when the
// shape was deleted.
func (a *applier) apply(m MatchResult) bool {
	if m.Matched() {
		if a.applyShapeEffects() {
			return true
		}
	}
	a.applyShaderEffects()

	switch {
	case rules.IsFalse(a.entry.PBR):
		if m.Matched() && a.shader.Flags2.Has(nif.SLSF2PBR) {
			a.shader.Flags2.Clear(nif.SLSF2PBR)
			a.touch()
		}
	case m.NameMatch:
		a.switchToPBR(m)
	}

	a.applySlotOverrides()
	return false
}

// applyShapeEffects applies the match-gated effects.
func (a *applier) applyShapeEffects() bool {
	e, s, g := a.entry, a.shader, &a.shape.Geometry

	if rules.IsTrue(e.Delete) {
		a.eng.log.Info("Deleting shape due to rule match",
			zap.String("shape", a.sr.Name), zap.String("document", a.doc.Name), zap.Int("entry", e.Index))
		a.mesh.DeleteShape(a.shape)
		a.sr.Deleted = true
		a.touch()
		return true
	}

	if e.SmoothAngle != nil {
		if err := g.CalcNormals(true, *e.SmoothAngle); err != nil {
			a.report(KindGeometry, fmt.Errorf("recomputing normals: %w", err))
		} else if err := g.CalcTangents(); err != nil {
			a.touch()
			a.report(KindGeometry, fmt.Errorf("recomputing tangents: %w", err))
		} else {
			a.touch()
		}
	}

	if e.AutoUV != nil {
		if scale, err := GeometryUVScale(g); err != nil {
			a.report(KindGeometry, fmt.Errorf("estimating uv scale: %w", err))
		} else {
			s.UVScale = scale.Div(*e.AutoUV)
			a.touch()
		}
	}

	if e.VertexColors != nil {
		g.SetVertexColors(*e.VertexColors)
		s.Flags2.Toggle(nif.SLSF2VertexColors, *e.VertexColors)
		a.touch()
	}
	return false
}

// applyShaderEffects applies the effects that fire whenever their key is present.
func (a *applier) applyShaderEffects() {
	e, s := a.entry, a.shader

	setScalar := func(dst *float32, v *float32) {
		if v != nil {
			*dst = *v
			a.touch()
		}
	}

	setScalar(&s.Glossiness, e.SpecularLevel)
	if e.SubsurfaceColor != nil {
		s.SpecularColor = *e.SubsurfaceColor
		a.touch()
	}
	setScalar(&s.SpecularStrength, e.RoughnessScale)
	setScalar(&s.SoftLighting, e.SubsurfaceOpacity)
	setScalar(&s.RimLightPower, e.DisplacementScale)

	if rules.IsTrue(e.EnvMapping) {
		s.SetType(nif.ShaderEnvironmentMap)
		s.Flags2.Clear(nif.SLSF2GlowMap)
		a.touch()
	}
	if s.Type == nif.ShaderEnvironmentMap {
		setScalar(&s.EnvMapScale, e.EnvMapScale)
		if e.EnvMapScaleMult != nil {
			s.EnvMapScale *= *e.EnvMapScaleMult
			a.touch()
		}
		if e.Cubemap != nil && !e.LockCubemap {
			a.shape.SetTexture(nif.SlotCubemap, *e.Cubemap)
			a.touch()
		}
	}

	setScalar(&s.EmissiveMultiple, e.EmissiveScale)
	if e.EmissiveColor != nil {
		s.EmissiveColor = *e.EmissiveColor
		a.touch()
	}
	if e.UVScale != nil {
		s.UVScale = math.Uniform(*e.UVScale)
		a.touch()
	}
	setScalar(&s.ParallaxEnvmapStrength, e.ParallaxEnvmapStrength)
}

// switchToPBR rewrites the texture slots from the anchor path and resets the
// shader to the PBR default configuration.
func (a *applier) switchToPBR(m MatchResult) {
	e, s := a.entry, a.shader

	base, err := DeriveBase(m, e)
	if err != nil {
		a.report(KindPath, err)
		return
	}
	a.touch()

	a.setDerived(nif.SlotDiffuse, base, !e.LockDiffuse, true)
	a.setDerived(nif.SlotNormal, base, !e.LockNormal, true)
	if e.Emissive != nil && !e.LockEmissive {
		a.setDerived(nif.SlotGlow, base, true, *e.Emissive)
		s.Flags1.Toggle(nif.SLSF1ExternalEmittance, *e.Emissive)
	}
	if e.Parallax != nil && !e.LockParallax {
		a.setDerived(nif.SlotParallax, base, true, *e.Parallax)
	}
	if e.Cubemap == nil || !e.LockCubemap {
		a.shape.SetTexture(nif.SlotCubemap, "")
	}
	a.setDerived(nif.SlotRMAOS, base, !e.LockRMAOS, true)
	a.setDerived(nif.SlotCoatNormal, base, !e.LockCNR, rules.IsTrue(e.CoatNormal))
	a.setDerived(nif.SlotSubsurface, base, !e.LockSubsurface,
		rules.IsTrue(e.SubsurfaceFoliage) || rules.IsTrue(e.Subsurface) || rules.IsTrue(e.CoatDiffuse))

	s.SetType(nif.ShaderDefault)
	s.Flags1.Clear(nif.SLSF1Parallax)
	s.Flags2.Clear(nif.SLSF2GlowMap | nif.SLSF2BackLighting)
	s.Flags2.Set(nif.SLSF2PBR)

	if rules.IsTrue(e.SubsurfaceFoliage) && rules.IsTrue(e.Subsurface) {
		a.report(KindConflict, ErrSubsurfaceConflict)
	}
	if e.SubsurfaceFoliage != nil {
		s.Flags2.Toggle(nif.SLSF2SoftLighting, *e.SubsurfaceFoliage)
	}
	if e.Subsurface != nil {
		s.Flags2.Toggle(nif.SLSF2RimLighting, *e.Subsurface)
	}

	if rules.IsTrue(e.Multilayer) {
		a.applyMultilayer()
	}
}

// setDerived sets slot to its derived path when on, or clears it. Nothing
// happens when the slot is locked.
func (a *applier) setDerived(slot int, base string, unlocked, on bool) {
	if !unlocked {
		return
	}
	path := ""
	if on {
		path = SlotPath(base, slot)
	}
	a.shape.SetTexture(slot, path)
	a.eng.log.Debug("Texture slot set",
		zap.String("shape", a.sr.Name),
		zap.String("slot", nif.SlotName(slot)),
		zap.String("path", path),
	)
}

func (a *applier) applyMultilayer() {
	e, s := a.entry, a.shader

	s.SetType(nif.ShaderMultiLayerParallax)
	if e.CoatColor != nil {
		s.SpecularColor = *e.CoatColor
	}
	if e.CoatSpecularLevel != nil {
		s.ParallaxRefractionScale = *e.CoatSpecularLevel
	}
	if e.CoatRoughness != nil {
		s.ParallaxInnerLayerThickness = *e.CoatRoughness
	}
	if e.CoatStrength != nil {
		s.SoftLighting = *e.CoatStrength
	}
	if e.CoatDiffuse != nil {
		s.Flags2.Toggle(nif.SLSF2EffectLighting, *e.CoatDiffuse)
	}
	if e.CoatParallax != nil {
		s.Flags2.Toggle(nif.SLSF2SoftLighting, *e.CoatParallax)
	}
	if e.CoatNormal != nil {
		s.Flags2.Toggle(nif.SLSF2BackLighting, *e.CoatNormal)
	}
	if e.InnerUVScale != nil {
		s.ParallaxInnerLayerScale = math.Uniform(*e.InnerUVScale)
	}
}

func (a *applier) applySlotOverrides() {
	for slot, p := range a.entry.Slots {
		if p == nil {
			continue
		}
		a.shape.SetTexture(slot, *p)
		a.touch()
	}
}
