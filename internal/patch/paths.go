package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/nifpatch/internal/rules"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// Texture folder layout.
const (
	TextureRoot = `textures\`
	PBRFolder   = `pbr\`
)

// Path derivation errors.
var (
	ErrUnrootedPath = errors.New("texture path is not under the textures root")
	ErrRename       = errors.New("rename pattern longer than path")
)

var slotSuffixes = [nif.TextureSlots]string{
	nif.SlotDiffuse:    ".dds",
	nif.SlotNormal:     "_n.dds",
	nif.SlotGlow:       "_g.dds",
	nif.SlotParallax:   "_p.dds",
	nif.SlotRMAOS:      "_rmaos.dds",
	nif.SlotCoatNormal: "_cnr.dds",
	nif.SlotSubsurface: "_s.dds",
}

// DeriveBase computes the PBR base path for a name match: the anchor moved
// under the pbr folder and, when the entry has rename, with the matched
// pattern replaced by the rename value.
func DeriveBase(m MatchResult, e *rules.Entry) (string, error) {
	base, err := underPBR(m.Anchor)
	if err != nil {
		return "", err
	}
	if e.Rename == nil {
		return base, nil
	}
	if len(m.Pattern) > len(base) {
		return "", fmt.Errorf("%w: %q in %q", ErrRename, m.Pattern, base)
	}
	return base[:len(base)-len(m.Pattern)] + *e.Rename, nil
}

// underPBR inserts the pbr folder right after the textures root. Leading
// separators are kept. Paths already under the pbr folder are returned as is.
func underPBR(p string) (string, error) {
	at := len(p) - len(strings.TrimLeft(p, rules.Separator))
	if !strings.HasPrefix(p[at:], TextureRoot) {
		return "", fmt.Errorf("%w: %q", ErrUnrootedPath, p)
	}
	at += len(TextureRoot)
	if strings.HasPrefix(p[at:], PBRFolder) {
		return p, nil
	}
	return p[:at] + PBRFolder + p[at:], nil
}

// SlotPath returns the texture path for slot derived from base.
// The cubemap slot has no derived path.
func SlotPath(base string, slot int) string {
	if slot < 0 || slot >= nif.TextureSlots || slotSuffixes[slot] == "" {
		return ""
	}
	return base + slotSuffixes[slot]
}
