package easel

import (
	"fmt"

	"github.com/gogpu/easel/internal/blend"
)

// BlendMode selects how a drawable event's color combines with the pixels
// already in its buffer. The enumeration is closed: the serialized format
// rejects tags outside it.
type BlendMode int

const (
	// BlendNormal is plain alpha compositing.
	BlendNormal BlendMode = iota
	// BlendErase removes alpha. Against an alpha-less buffer it instead
	// paints the buffer's clear color.
	BlendErase
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendHardLight
	BlendSoftLight
	BlendDarken
	BlendLighten
	BlendDifference
	BlendExclusion
	BlendColorDodge
	BlendColorBurn
	BlendLinearDodge
	BlendLinearBurn

	blendModeCount
)

// blendModeNames maps BlendMode values to their serialized tags.
var blendModeNames = [...]string{
	BlendNormal:      "normal",
	BlendErase:       "erase",
	BlendMultiply:    "multiply",
	BlendScreen:      "screen",
	BlendOverlay:     "overlay",
	BlendHardLight:   "hardlight",
	BlendSoftLight:   "softlight",
	BlendDarken:      "darken",
	BlendLighten:     "lighten",
	BlendDifference:  "difference",
	BlendExclusion:   "exclusion",
	BlendColorDodge:  "colordodge",
	BlendColorBurn:   "colorburn",
	BlendLinearDodge: "lineardodge",
	BlendLinearBurn:  "linearburn",
}

// String returns the serialized tag of the mode.
func (m BlendMode) String() string {
	if m >= 0 && int(m) < len(blendModeNames) {
		return blendModeNames[m]
	}
	return "unknown"
}

// Valid reports whether m is inside the closed mode set.
func (m BlendMode) Valid() bool {
	return m >= BlendNormal && m < blendModeCount
}

// ParseBlendMode converts a serialized tag back to a BlendMode.
func ParseBlendMode(s string) (BlendMode, error) {
	for i, name := range blendModeNames {
		if name == s {
			return BlendMode(i), nil
		}
	}
	return BlendNormal, fmt.Errorf("easel: unknown blend mode %q", s)
}

// compose applies the mode to one pixel. Both colors and the result are
// unmultiplied RGBA.
func (m BlendMode) compose(base RGBA, top RGBA) RGBA {
	r, g, b, a := blend.Composite(blend.Mode(m),
		base.R, base.G, base.B, base.A,
		top.R, top.G, top.B, top.A)
	return RGBA{R: r, G: g, B: b, A: a}
}
