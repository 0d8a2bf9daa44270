package nif

import "fmt"

// TextureSlots is the number of texture path slots on a shape.
const TextureSlots = 8

// Texture slot indices.
const (
	SlotDiffuse    = 0 // Base color
	SlotNormal     = 1 // Normal map
	SlotGlow       = 2 // Glow / emissive
	SlotParallax   = 3 // Parallax height
	SlotCubemap    = 4 // Environment cubemap (unused by PBR)
	SlotRMAOS      = 5 // Roughness, metallic, AO, specular
	SlotCoatNormal = 6 // Coat normal roughness
	SlotSubsurface = 7 // Subsurface
)

var slotNames = [TextureSlots]string{
	"diffuse", "normal", "glow", "parallax", "cubemap", "rmaos", "coat_normal", "subsurface",
}

// SlotName returns a human-readable slot name.
func SlotName(slot int) string {
	if slot < 0 || slot >= TextureSlots {
		return fmt.Sprintf("slot(%d)", slot)
	}
	return slotNames[slot]
}

// TextureSet holds the texture paths of a shape. An empty string means unset.
type TextureSet [TextureSlots]string
