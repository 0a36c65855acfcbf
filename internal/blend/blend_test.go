package blend

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(got, want float64) bool {
	return math.Abs(got-want) <= 1e-6
}

// TestCompositeNormal verifies plain source-over against the textbook formula.
func TestCompositeNormal(t *testing.T) {
	tests := []struct {
		name         string
		ba, ta       float64
		bc, tc       float64
		wantC, wantA float64
	}{
		{"opaque over opaque", 1, 1, 0.2, 0.8, 0.8, 1},
		{"half over opaque", 1, 0.5, 0.2, 0.8, 0.5, 1},
		{"half over transparent", 0, 0.5, 0.2, 0.8, 0.8, 0.5},
		{"transparent top is identity", 1, 0, 0.2, 0.8, 0.2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, a := Composite(ModeNormal, tt.bc, 0, 0, tt.ba, tt.tc, 0, 0, tt.ta)
			if !approx(r, tt.wantC) || !approx(a, tt.wantA) {
				t.Errorf("got (c=%.4f, a=%.4f), want (c=%.4f, a=%.4f)", r, a, tt.wantC, tt.wantA)
			}
		})
	}
}

// TestCompositeErase verifies erase only removes alpha.
func TestCompositeErase(t *testing.T) {
	r, g, b, a := Composite(ModeErase, 0.3, 0.4, 0.5, 1.0, 1, 1, 1, 0.25)
	if !approx(a, 0.75) {
		t.Errorf("alpha: got %.4f, want 0.75", a)
	}
	if !approx(r, 0.3) || !approx(g, 0.4) || !approx(b, 0.5) {
		t.Errorf("color changed under erase: got (%.3f, %.3f, %.3f)", r, g, b)
	}
}

// TestCompositeFullyTransparent verifies the zero-alpha result is all zero.
func TestCompositeFullyTransparent(t *testing.T) {
	r, g, b, a := Composite(ModeMultiply, 0.5, 0.5, 0.5, 0, 0.5, 0.5, 0.5, 0)
	if r != 0 || g != 0 || b != 0 || a != 0 {
		t.Errorf("got (%v, %v, %v, %v), want zeros", r, g, b, a)
	}
}

// TestChannelFunctions spot-checks the separable blend functions against
// the W3C formulas at interior points and at their discontinuities.
func TestChannelFunctions(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		b, t float64
		want float64
	}{
		{"multiply", ModeMultiply, 0.5, 0.5, 0.25},
		{"screen", ModeScreen, 0.5, 0.5, 0.75},
		{"overlay low base", ModeOverlay, 0.25, 0.5, 0.25},
		{"overlay high base", ModeOverlay, 0.75, 0.5, 0.75},
		{"hardlight low top", ModeHardLight, 0.5, 0.25, 0.25},
		{"hardlight high top", ModeHardLight, 0.5, 0.75, 0.75},
		{"darken", ModeDarken, 0.3, 0.7, 0.3},
		{"lighten", ModeLighten, 0.3, 0.7, 0.7},
		{"difference", ModeDifference, 0.3, 0.7, 0.4},
		{"exclusion", ModeExclusion, 0.5, 0.5, 0.5},
		{"dodge", ModeColorDodge, 0.25, 0.5, 0.5},
		{"dodge t=1", ModeColorDodge, 0.25, 1, 1},
		{"burn", ModeColorBurn, 0.75, 0.5, 0.5},
		{"burn t=0", ModeColorBurn, 0.75, 0, 0},
		{"linear dodge", ModeLinearDodge, 0.6, 0.6, 1},
		{"linear burn", ModeLinearBurn, 0.6, 0.6, 0.2},
		{"softlight low top", ModeSoftLight, 0.25, 0.25, 0.15625},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := channelFunc(tt.mode)(tt.b, tt.t)
			if !approx(got, tt.want) {
				t.Errorf("B(%.2f, %.2f) = %.6f, want %.6f", tt.b, tt.t, got, tt.want)
			}
		})
	}
}

// TestCompositeOpaqueBaseReducesToChannelFunc verifies that for opaque base
// and top the composite equals the raw channel function.
func TestCompositeOpaqueBaseReducesToChannelFunc(t *testing.T) {
	for mode := ModeMultiply; mode < modeCount; mode++ {
		r, _, _, a := Composite(mode, 0.4, 0, 0, 1, 0.6, 0, 0, 1)
		want := channelFunc(mode)(0.4, 0.6)
		if math.Abs(r-want) > eps || math.Abs(a-1) > eps {
			t.Errorf("mode %d: got (%.6f, a=%.6f), want (%.6f, 1)", mode, r, a, want)
		}
	}
}

// TestValid verifies the closed-set boundary.
func TestValid(t *testing.T) {
	if !ModeNormal.Valid() || !ModeLinearBurn.Valid() {
		t.Error("in-range modes reported invalid")
	}
	if Mode(-1).Valid() || modeCount.Valid() {
		t.Error("out-of-range modes reported valid")
	}
}
