// Package texgen synthesizes tileable skin detail maps from a tone and keeps
// them in a bounded LRU cache keyed by the tone's exact RGB.
package texgen

import (
	"fmt"
	"image"
	"math"
	"strings"

	"avatar-morph/internal/scene"
	"avatar-morph/internal/skintone"
)

// DetailLevel selects the square size of generated maps.
type DetailLevel string

const (
	DetailLow    DetailLevel = "low"
	DetailMedium DetailLevel = "medium"
	DetailHigh   DetailLevel = "high"
	DetailUltra  DetailLevel = "ultra"
)

// Size returns the edge length in pixels. Unknown levels use medium.
func (d DetailLevel) Size() int {
	switch d {
	case DetailLow:
		return 256
	case DetailHigh:
		return 1024
	case DetailUltra:
		return 2048
	default:
		return 512
	}
}

// ParseDetail accepts a level name or its pixel size.
func ParseDetail(s string) (DetailLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "256":
		return DetailLow, nil
	case "", "medium", "512":
		return DetailMedium, nil
	case "high", "1024":
		return DetailHigh, nil
	case "ultra", "2048":
		return DetailUltra, nil
	}
	return "", fmt.Errorf("texgen: unknown detail level %q", s)
}

// Options controls generation. Intensities are in [0,1].
type Options struct {
	Detail                DetailLevel
	PoreIntensity         float64
	ColorVariation        float64
	ImperfectionIntensity float64
	// Resolution overrides the detail size when positive; maps are generated
	// at the detail size and resampled.
	Resolution int
	BaseColor  bool
	SSS        bool
}

// DefaultOptions returns medium detail with moderate pores and an SSS map.
func DefaultOptions() Options {
	return Options{
		Detail:                DetailMedium,
		PoreIntensity:         0.5,
		ColorVariation:        0.3,
		ImperfectionIntensity: 0.2,
		SSS:                   true,
	}
}

// Size returns the final edge length of generated maps.
func (o Options) Size() int {
	if o.Resolution > 0 {
		return o.Resolution
	}
	return o.Detail.Size()
}

// Maps is one generated set. BaseColor and SSS are nil unless requested.
type Maps struct {
	Key       uint32
	Size      int
	BaseColor *scene.Texture
	Normal    *scene.Texture
	Roughness *scene.Texture
	SSS       *scene.Texture
}

// Textures returns the non-nil maps.
func (m *Maps) Textures() []*scene.Texture {
	var out []*scene.Texture
	for _, t := range []*scene.Texture{m.BaseColor, m.Normal, m.Roughness, m.SSS} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Dispose releases every pixel buffer.
func (m *Maps) Dispose() {
	for _, t := range m.Textures() {
		t.Dispose()
	}
}

// Disposed reports whether the normal map has been released.
func (m *Maps) Disposed() bool {
	return m.Normal == nil || m.Normal.Disposed()
}

// Generate synthesizes the maps for tone. Output depends only on the tone's
// RGB and opt.
func Generate(tone skintone.Tone, opt Options) *Maps {
	size := opt.Detail.Size()
	key := tone.Key()
	lum := tone.Luminance()
	name := fmt.Sprintf("skin_%06x", key)

	pores := fbm(size, key, saltPore, octaves{baseFreq: 64, count: 3, gain: 0.5})
	bump := fbm(size, key, saltBump, octaves{baseFreq: 128, count: 2, gain: 0.5})
	blemish := fbm(size, key, saltImperfection, octaves{baseFreq: 8, count: 3, gain: 0.6})

	height := make([]float64, size*size)
	for i := range height {
		height[i] = pores[i]*opt.PoreIntensity + bump[i]*0.35 + blemish[i]*opt.ImperfectionIntensity*0.5
	}

	m := &Maps{Key: key, Size: opt.Size()}
	m.Normal = scene.NewTexture(name+"_normal", resample(normalMap(height, size, 2.0), opt.Resolution))

	rough := fbm(size, key, saltRoughness, octaves{baseFreq: 16, count: 4, gain: 0.5})
	baseline := 0.45 + 0.15*(1-lum)
	m.Roughness = scene.NewTexture(name+"_roughness", resample(greyMap(size, func(i int) float64 {
		return baseline + (rough[i]-0.5)*0.25 + blemish[i]*opt.ImperfectionIntensity*0.1
	}), opt.Resolution))

	if opt.BaseColor {
		tint := fbm(size, key, saltTint, octaves{baseFreq: 4, count: 4, gain: 0.55})
		m.BaseColor = scene.NewTexture(name+"_basecolor", resample(tintMap(tone, tint, size, opt.ColorVariation), opt.Resolution))
	}
	if opt.SSS {
		sss := fbm(size, key, saltSSS, octaves{baseFreq: 8, count: 3, gain: 0.5})
		level := 0.35 + 0.4*(1-lum)
		m.SSS = scene.NewTexture(name+"_sss", resample(greyMap(size, func(i int) float64 {
			return level * (0.8 + 0.4*sss[i])
		}), opt.Resolution))
	}
	return m
}

// normalMap derives a tangent-space normal map from a wrapping height field.
func normalMap(height []float64, size int, strength float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	at := func(x, y int) float64 { return height[wrap(y, size)*size+wrap(x, size)] }
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			nx := -(at(x+1, y) - at(x-1, y)) * strength
			ny := -(at(x, y+1) - at(x, y-1)) * strength
			inv := 1 / math.Sqrt(nx*nx+ny*ny+1)
			i := img.PixOffset(x, y)
			img.Pix[i] = clamp8((nx*inv*0.5 + 0.5) * 255)
			img.Pix[i+1] = clamp8((ny*inv*0.5 + 0.5) * 255)
			img.Pix[i+2] = clamp8((inv*0.5 + 0.5) * 255)
			img.Pix[i+3] = 255
		}
	}
	return img
}

func greyMap(size int, value func(i int) float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < size*size; i++ {
		g := clamp8(value(i) * 255)
		img.Pix[i*4] = g
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = g
		img.Pix[i*4+3] = 255
	}
	return img
}

// tintMap varies the tone's brightness by up to ±15% of variation.
func tintMap(tone skintone.Tone, noise []float64, size int, variation float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < size*size; i++ {
		f := 1 + (noise[i]-0.5)*variation*0.3
		img.Pix[i*4] = clamp8(tone.Float[0] * f * 255)
		img.Pix[i*4+1] = clamp8(tone.Float[1] * f * 255)
		img.Pix[i*4+2] = clamp8(tone.Float[2] * f * 255)
		img.Pix[i*4+3] = 255
	}
	return img
}
