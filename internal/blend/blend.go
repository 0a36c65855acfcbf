// Package blend provides the per-channel blend functions and the alpha
// compositing rule used when drawing into a bitmap.
//
// Separable blend modes follow the W3C Compositing and Blending Level 1
// specification: each color channel is blended independently through a
// function B(base, top) of unmultiplied channel values, then composited
//
//	out = (1-ba)*ta*T + (1-ta)*ba*B + ta*ba*Blend(B, T)
//
// with the usual source-over alpha rule. All values are in [0, 1].
//
// Reference: https://www.w3.org/TR/compositing-1/
package blend

import "math"

// Mode identifies a blend mode. The set is closed; serialization rejects
// tags outside it at the parse boundary.
type Mode int

const (
	// ModeNormal is plain source-over alpha compositing.
	ModeNormal Mode = iota
	// ModeErase removes alpha from the target (destination-out).
	ModeErase
	// ModeMultiply multiplies base and top channels.
	ModeMultiply
	// ModeScreen inverts, multiplies, and inverts again.
	ModeScreen
	// ModeOverlay is HardLight with base and top swapped.
	ModeOverlay
	// ModeHardLight multiplies or screens depending on the top channel.
	ModeHardLight
	// ModeSoftLight is a softened HardLight.
	ModeSoftLight
	// ModeDarken selects the darker channel.
	ModeDarken
	// ModeLighten selects the lighter channel.
	ModeLighten
	// ModeDifference takes the absolute channel difference.
	ModeDifference
	// ModeExclusion is Difference with lower contrast.
	ModeExclusion
	// ModeColorDodge brightens the base toward the top.
	ModeColorDodge
	// ModeColorBurn darkens the base toward the top.
	ModeColorBurn
	// ModeLinearDodge adds the channels (additive).
	ModeLinearDodge
	// ModeLinearBurn adds the channels and subtracts one.
	ModeLinearBurn

	modeCount
)

// Valid reports whether m is inside the closed mode set.
func (m Mode) Valid() bool {
	return m >= ModeNormal && m < modeCount
}

// Composite blends the top color (tr, tg, tb with alpha ta, unmultiplied)
// onto the base color (br, bg, bb with alpha ba) and returns the
// unmultiplied result. ModeErase only reduces the base alpha; callers
// drawing into an alpha-less bitmap must rewrite an erase as a normal
// draw of the bitmap's clear color before calling Composite.
func Composite(mode Mode, br, bg, bb, ba, tr, tg, tb, ta float64) (r, g, b, a float64) {
	if mode == ModeErase {
		return br, bg, bb, ba * (1 - ta)
	}

	outA := ta + ba*(1-ta)
	if outA <= 0 {
		return 0, 0, 0, 0
	}

	if mode == ModeNormal {
		r = (tr*ta + br*ba*(1-ta)) / outA
		g = (tg*ta + bg*ba*(1-ta)) / outA
		b = (tb*ta + bb*ba*(1-ta)) / outA
		return r, g, b, outA
	}

	fn := channelFunc(mode)
	r = ((1-ba)*ta*tr + (1-ta)*ba*br + ta*ba*fn(br, tr)) / outA
	g = ((1-ba)*ta*tg + (1-ta)*ba*bg + ta*ba*fn(bg, tg)) / outA
	b = ((1-ba)*ta*tb + (1-ta)*ba*bb + ta*ba*fn(bb, tb)) / outA
	return r, g, b, outA
}

// channelFunc returns the separable per-channel function B(base, top)
// for a mode. ModeNormal and ModeErase never reach here.
func channelFunc(mode Mode) func(b, t float64) float64 {
	switch mode {
	case ModeMultiply:
		return multiply
	case ModeScreen:
		return screen
	case ModeOverlay:
		return overlay
	case ModeHardLight:
		return hardLight
	case ModeSoftLight:
		return softLight
	case ModeDarken:
		return math.Min
	case ModeLighten:
		return math.Max
	case ModeDifference:
		return difference
	case ModeExclusion:
		return exclusion
	case ModeColorDodge:
		return colorDodge
	case ModeColorBurn:
		return colorBurn
	case ModeLinearDodge:
		return linearDodge
	case ModeLinearBurn:
		return linearBurn
	default:
		return func(_, t float64) float64 { return t }
	}
}

// multiply: B(b, t) = b * t
func multiply(b, t float64) float64 {
	return b * t
}

// screen: B(b, t) = 1 - (1-b)*(1-t)
func screen(b, t float64) float64 {
	return 1 - (1-b)*(1-t)
}

// overlay: HardLight with the operands swapped.
func overlay(b, t float64) float64 {
	return hardLight(t, b)
}

// hardLight: multiply for t <= 0.5, screen above.
func hardLight(b, t float64) float64 {
	if t <= 0.5 {
		return multiply(b, 2*t)
	}
	return screen(b, 2*t-1)
}

// softLight per the W3C piecewise definition.
func softLight(b, t float64) float64 {
	if t <= 0.5 {
		return b - (1-2*t)*b*(1-b)
	}
	var d float64
	if b <= 0.25 {
		d = ((16*b-12)*b + 4) * b
	} else {
		d = math.Sqrt(b)
	}
	return b + (2*t-1)*(d-b)
}

// difference: B(b, t) = |b - t|
func difference(b, t float64) float64 {
	return math.Abs(b - t)
}

// exclusion: B(b, t) = b + t - 2*b*t
func exclusion(b, t float64) float64 {
	return b + t - 2*b*t
}

// colorDodge: B(b, t) = min(1, b / (1-t)), 1 when t == 1.
func colorDodge(b, t float64) float64 {
	if t >= 1 {
		return 1
	}
	return math.Min(1, b/(1-t))
}

// colorBurn: B(b, t) = 1 - min(1, (1-b) / t), 0 when t == 0.
func colorBurn(b, t float64) float64 {
	if t <= 0 {
		return 0
	}
	return 1 - math.Min(1, (1-b)/t)
}

// linearDodge: B(b, t) = min(1, b + t)
func linearDodge(b, t float64) float64 {
	return math.Min(1, b+t)
}

// linearBurn: B(b, t) = max(0, b + t - 1)
func linearBurn(b, t float64) float64 {
	return math.Max(0, b+t-1)
}
