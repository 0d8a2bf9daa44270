// Package patch applies rule documents to mesh shapes, switching legacy
// materials to the PBR scheme.
package patch

import (
	"strings"

	"github.com/Faultbox/nifpatch/internal/rules"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// Suffix lengths stripped from the original slot paths before matching.
const (
	diffuseSuffixLen = len(".dds")
	normalSuffixLen  = len("_n.dds")
)

// MatchContext holds the lower-cased original diffuse and normal paths of a
// shape with their fixed suffixes removed. It is computed once per shape.
type MatchContext struct {
	Diffuse string
	Normal  string
}

// NewMatchContext builds the match context from the shape's texture set.
func NewMatchContext(ts *nif.TextureSet) MatchContext {
	return MatchContext{
		Diffuse: trimTail(strings.ToLower(ts[nif.SlotDiffuse]), diffuseSuffixLen),
		Normal:  trimTail(strings.ToLower(ts[nif.SlotNormal]), normalSuffixLen),
	}
}

func trimTail(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:len(s)-n]
}

// MatchResult tells which parts of an entry fire for a shape.
type MatchResult struct {
	Gated         bool   // nif_filter rejected the file; nothing fires
	ContainsMatch bool   // path_contains found in the diffuse path
	NameMatch     bool   // match_normal or match_diffuse suffix matched
	Anchor        string // matched context path, set when NameMatch
	Pattern       string // matched suffix pattern, set when NameMatch
}

// Matched reports whether match-gated effects fire.
func (m MatchResult) Matched() bool {
	return m.ContainsMatch || m.NameMatch
}

// Match evaluates entry e against a shape's context in the given mesh file.
// The nif_filter gate is checked first; a normal-path suffix match takes
// precedence over a diffuse-path one.
func Match(e *rules.Entry, mc MatchContext, filename string) MatchResult {
	if e.NifFilter != nil && !strings.Contains(strings.ToLower(filename), *e.NifFilter) {
		return MatchResult{Gated: true}
	}

	var m MatchResult
	m.ContainsMatch = e.PathContains != nil && strings.Contains(mc.Diffuse, *e.PathContains)

	switch {
	case e.MatchNormal != nil && strings.HasSuffix(mc.Normal, *e.MatchNormal):
		m.NameMatch, m.Anchor, m.Pattern = true, mc.Normal, *e.MatchNormal
	case e.MatchDiffuse != nil && strings.HasSuffix(mc.Diffuse, *e.MatchDiffuse):
		m.NameMatch, m.Anchor, m.Pattern = true, mc.Diffuse, *e.MatchDiffuse
	}
	return m
}
