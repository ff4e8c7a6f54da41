// Package skinmodel approximates skin as three stacked layers (oil, epidermis,
// dermis) and folds them into the transmission, attenuation and specular
// parameters of a physically based material.
package skinmodel

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"avatar-morph/internal/skintone"
)

// Bucket is the luminance class of a tone.
type Bucket string

const (
	BucketDark   Bucket = "dark"
	BucketMedium Bucket = "medium"
	BucketLight  Bucket = "light"
)

// Luminance thresholds.
const (
	DarkBelow  = 0.3
	LightAbove = 0.7

	// Above these the attenuation colour stays almost exactly the observed
	// colour, otherwise light skin renders bronzed.
	VeryLightAbove = 0.75
	FairAbove      = 0.65

	OilThickness = 0.02
)

// Layer is one slab of the skin model.
type Layer struct {
	Name       string
	Thickness  float64
	Scattering colorful.Color
	Absorption colorful.Color
	IOR        float64
}

type bucketBase struct {
	epidermis    Layer
	dermis       Layer
	transmission float64
}

var bases = map[Bucket]bucketBase{
	BucketDark: {
		epidermis: Layer{
			Name: "epidermis", Thickness: 0.12, IOR: 1.44,
			Scattering: colorful.Color{R: 0.55, G: 0.32, B: 0.22},
			Absorption: colorful.Color{R: 0.45, G: 0.62, B: 0.72},
		},
		dermis: Layer{
			Name: "dermis", Thickness: 0.9, IOR: 1.40,
			Scattering: colorful.Color{R: 0.75, G: 0.35, B: 0.25},
			Absorption: colorful.Color{R: 0.2, G: 0.5, B: 0.6},
		},
		transmission: 0.08,
	},
	BucketMedium: {
		epidermis: Layer{
			Name: "epidermis", Thickness: 0.1, IOR: 1.44,
			Scattering: colorful.Color{R: 0.8, G: 0.5, B: 0.38},
			Absorption: colorful.Color{R: 0.25, G: 0.45, B: 0.55},
		},
		dermis: Layer{
			Name: "dermis", Thickness: 1.0, IOR: 1.40,
			Scattering: colorful.Color{R: 0.9, G: 0.45, B: 0.35},
			Absorption: colorful.Color{R: 0.12, G: 0.4, B: 0.5},
		},
		transmission: 0.12,
	},
	BucketLight: {
		epidermis: Layer{
			Name: "epidermis", Thickness: 0.08, IOR: 1.44,
			Scattering: colorful.Color{R: 0.95, G: 0.75, B: 0.65},
			Absorption: colorful.Color{R: 0.1, G: 0.25, B: 0.3},
		},
		dermis: Layer{
			Name: "dermis", Thickness: 1.1, IOR: 1.40,
			Scattering: colorful.Color{R: 1.0, G: 0.6, B: 0.5},
			Absorption: colorful.Color{R: 0.05, G: 0.3, B: 0.35},
		},
		transmission: 0.18,
	},
}

var oil = Layer{
	Name:       "oil",
	Thickness:  OilThickness,
	IOR:        1.47,
	Scattering: colorful.Color{R: 1, G: 1, B: 1},
}

// Config is the multi-layer approximation of one observed colour.
type Config struct {
	Bucket    Bucket
	Luminance float64
	Observed  colorful.Color

	Oil       Layer
	Epidermis Layer
	Dermis    Layer

	// Thickness-weighted combination of the layers.
	ScatteringTint colorful.Color
	Absorption     colorful.Color
	IOR            float64
	Thickness      float64
	Transmission   float64

	AttenuationColor    colorful.Color
	AttenuationDistance float64
	TintWeight          float64

	SpecularTint       colorful.Color
	SpecularIntensity  float64
	SheenColor         colorful.Color
	Sheen              float64
	SheenRoughness     float64
	Clearcoat          float64
	ClearcoatRoughness float64
	Roughness          float64
}

// Layers returns the three layers outermost first.
func (c Config) Layers() []Layer {
	return []Layer{c.Oil, c.Epidermis, c.Dermis}
}

func (c Config) String() string {
	return fmt.Sprintf("%s L=%.3f transmission=%.3f thickness=%.3f attenuation=%s tint=%.2f",
		c.Bucket, c.Luminance, c.Transmission, c.Thickness, c.AttenuationColor.Hex(), c.TintWeight)
}

// Classify returns the luminance bucket.
func Classify(l float64) Bucket {
	switch {
	case l < DarkBelow:
		return BucketDark
	case l > LightAbove:
		return BucketLight
	default:
		return BucketMedium
	}
}

// TintWeight is the share of the scattering tint mixed into the attenuation
// colour at luminance l.
func TintWeight(l float64) float64 {
	switch {
	case l > VeryLightAbove:
		return 0.01
	case l > FairAbove:
		return 0.03
	default:
		l = math.Max(0, l)
		return 0.3 + 0.4*(1-l/FairAbove)
	}
}

// Compute derives the layer stack and combined parameters for tone. The
// tone's own colour is only read.
func Compute(tone skintone.Tone) Config {
	observed := tone.Color()
	l := tone.Luminance()
	bucket := Classify(l)
	base := bases[bucket]

	cfg := Config{
		Bucket:    bucket,
		Luminance: l,
		Observed:  observed,
		Oil:       oil,
		Epidermis: base.epidermis,
		Dermis:    base.dermis,
	}

	layers := cfg.Layers()
	var total, ior float64
	var scat, abs [3]float64
	for _, ly := range layers {
		total += ly.Thickness
		ior += ly.Thickness * ly.IOR
		scat[0] += ly.Thickness * ly.Scattering.R
		scat[1] += ly.Thickness * ly.Scattering.G
		scat[2] += ly.Thickness * ly.Scattering.B
		abs[0] += ly.Thickness * ly.Absorption.R
		abs[1] += ly.Thickness * ly.Absorption.G
		abs[2] += ly.Thickness * ly.Absorption.B
	}
	cfg.Thickness = total
	cfg.IOR = ior / total
	cfg.ScatteringTint = colorful.Color{R: scat[0] / total, G: scat[1] / total, B: scat[2] / total}.Clamped()
	cfg.Absorption = colorful.Color{R: abs[0] / total, G: abs[1] / total, B: abs[2] / total}.Clamped()

	meanAbs := (cfg.Absorption.R + cfg.Absorption.G + cfg.Absorption.B) / 3
	cfg.Transmission = base.transmission * (1 - 0.5*meanAbs)

	cfg.TintWeight = TintWeight(l)
	cfg.AttenuationColor = observed.BlendRgb(cfg.ScatteringTint, cfg.TintWeight).Clamped()
	cfg.AttenuationDistance = total * (0.5 + l)

	white := colorful.Color{R: 1, G: 1, B: 1}
	cfg.SpecularTint = observed.BlendRgb(white, 0.85).Clamped()
	cfg.SpecularIntensity = 0.5
	cfg.SheenColor = observed.BlendRgb(white, 0.5).Clamped()
	cfg.Sheen = 0.15
	cfg.SheenRoughness = 0.6
	cfg.Clearcoat = OilThickness * 4
	cfg.ClearcoatRoughness = 0.35
	cfg.Roughness = 0.5 + 0.1*(1-l)
	return cfg
}
