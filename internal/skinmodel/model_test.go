package skinmodel

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"avatar-morph/internal/skintone"
)

func channelDiff(a, b colorful.Color) [3]float64 {
	return [3]float64{math.Abs(a.R - b.R), math.Abs(a.G - b.G), math.Abs(a.B - b.B)}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		l    float64
		want Bucket
	}{
		{0, BucketDark},
		{0.29, BucketDark},
		{0.3, BucketMedium},
		{0.7, BucketMedium},
		{0.71, BucketLight},
		{1, BucketLight},
	}
	for _, tt := range tests {
		if got := Classify(tt.l); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.l, got, tt.want)
		}
	}
}

func TestLightToneKeepsObservedAttenuation(t *testing.T) {
	tone := skintone.FromRGB(235, 200, 180)
	if l := tone.Luminance(); l <= VeryLightAbove {
		t.Fatalf("fixture luminance %v not very light", l)
	}
	cfg := Compute(tone)
	if cfg.Bucket != BucketLight {
		t.Errorf("bucket = %s", cfg.Bucket)
	}
	for i, d := range channelDiff(cfg.AttenuationColor, tone.Color()) {
		if d > 0.01 {
			t.Errorf("channel %d diverges by %v, want within 1%%", i, d)
		}
	}
}

func TestFairToneBlendsThreePercent(t *testing.T) {
	tone := skintone.FromRGB(210, 165, 140)
	l := tone.Luminance()
	if l <= FairAbove || l > VeryLightAbove {
		t.Fatalf("fixture luminance %v outside fair band", l)
	}
	cfg := Compute(tone)
	if cfg.TintWeight != 0.03 {
		t.Errorf("tint weight = %v, want 0.03", cfg.TintWeight)
	}
	want := tone.Color().BlendRgb(cfg.ScatteringTint, 0.03)
	for i, d := range channelDiff(cfg.AttenuationColor, want) {
		if d > 1e-12 {
			t.Errorf("channel %d off by %v", i, d)
		}
	}
}

func TestDarkToneMayBlendTowardTint(t *testing.T) {
	tone := skintone.FromRGB(80, 45, 30)
	cfg := Compute(tone)
	if cfg.Bucket != BucketDark {
		t.Fatalf("bucket = %s", cfg.Bucket)
	}
	if cfg.TintWeight < 0.3 || cfg.TintWeight > 0.7 {
		t.Errorf("tint weight = %v, want within [0.3, 0.7]", cfg.TintWeight)
	}
	obs := tone.Color()
	bound := channelDiff(obs, cfg.ScatteringTint)
	moved := false
	for i, d := range channelDiff(cfg.AttenuationColor, obs) {
		if d > 0.7*bound[i]+1e-12 {
			t.Errorf("channel %d moved %v, more than 70%% of %v", i, d, bound[i])
		}
		if d > 0.01 {
			moved = true
		}
	}
	if !moved {
		t.Error("dark tone attenuation did not move toward the scattering tint")
	}
}

func TestTintWeightMonotonic(t *testing.T) {
	prev := TintWeight(0)
	if math.Abs(prev-0.7) > 1e-12 {
		t.Errorf("TintWeight(0) = %v, want 0.7", prev)
	}
	for l := 0.05; l <= 1; l += 0.05 {
		w := TintWeight(l)
		if w > prev+1e-12 {
			t.Errorf("TintWeight(%v) = %v rose above %v", l, w, prev)
		}
		prev = w
	}
}

func TestComputeCombinesLayers(t *testing.T) {
	tone, err := skintone.FromHex("#c68642")
	if err != nil {
		t.Fatal(err)
	}
	cfg := Compute(tone)

	if len(cfg.Layers()) != 3 || cfg.Oil.Thickness != OilThickness {
		t.Fatalf("layers = %+v", cfg.Layers())
	}
	sum := cfg.Oil.Thickness + cfg.Epidermis.Thickness + cfg.Dermis.Thickness
	if math.Abs(cfg.Thickness-sum) > 1e-12 {
		t.Errorf("thickness %v, want %v", cfg.Thickness, sum)
	}
	minIOR := math.Min(cfg.Dermis.IOR, math.Min(cfg.Epidermis.IOR, cfg.Oil.IOR))
	maxIOR := math.Max(cfg.Dermis.IOR, math.Max(cfg.Epidermis.IOR, cfg.Oil.IOR))
	if cfg.IOR < minIOR || cfg.IOR > maxIOR {
		t.Errorf("IOR %v outside layer range", cfg.IOR)
	}
	if cfg.Transmission <= 0 || cfg.Transmission >= 1 {
		t.Errorf("transmission = %v", cfg.Transmission)
	}
	if !cfg.AttenuationColor.IsValid() || !cfg.SpecularTint.IsValid() {
		t.Error("derived colours out of gamut")
	}
	if cfg.Observed != tone.Color() {
		t.Error("observed colour altered")
	}
}

func TestComputeDeterministic(t *testing.T) {
	tone := skintone.FromRGB(150, 110, 90)
	if Compute(tone) != Compute(tone) {
		t.Error("Compute not deterministic")
	}
}
