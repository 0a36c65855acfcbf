package easel

import "testing"

func TestBlendModeTagRoundTrip(t *testing.T) {
	for m := BlendNormal; m < blendModeCount; m++ {
		tag := m.String()
		if tag == "unknown" {
			t.Fatalf("mode %d has no tag", m)
		}
		got, err := ParseBlendMode(tag)
		if err != nil {
			t.Fatalf("ParseBlendMode(%q): %v", tag, err)
		}
		if got != m {
			t.Errorf("ParseBlendMode(%q) = %d, want %d", tag, got, m)
		}
	}
}

func TestParseBlendModeUnknown(t *testing.T) {
	if _, err := ParseBlendMode("sparkle"); err == nil {
		t.Error("ParseBlendMode accepted an unknown tag")
	}
}

func TestBlendModeValid(t *testing.T) {
	if !BlendMultiply.Valid() {
		t.Error("BlendMultiply should be valid")
	}
	if BlendMode(-1).Valid() || blendModeCount.Valid() {
		t.Error("out-of-range modes should be invalid")
	}
}
