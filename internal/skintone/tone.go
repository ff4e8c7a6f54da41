// Package skintone holds the measured skin colour of an avatar and picks one
// tone when several sources supply it.
package skintone

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"avatar-morph/internal/scene"
)

// Source names where a tone came from.
type Source string

const (
	SourceOverride  Source = "override"
	SourcePersisted Source = "persisted"
	SourceDirect    Source = "direct"
	SourceScan      Source = "scan"
	SourceEstimate  Source = "estimate"
	SourceCommit    Source = "commit"
	SourceMatch     Source = "match"
	SourceSemantic  Source = "semantic"
)

// Priority lists sources from most to least trusted.
var Priority = []Source{
	SourceOverride,
	SourcePersisted,
	SourceDirect,
	SourceScan,
	SourceEstimate,
	SourceCommit,
	SourceMatch,
	SourceSemantic,
}

// Rank returns the position of s in Priority, or len(Priority) if unknown.
func (s Source) Rank() int {
	for i, p := range Priority {
		if p == s {
			return i
		}
	}
	return len(Priority)
}

// Tone is one skin colour in three equivalent encodings.
type Tone struct {
	Hex        string     `json:"hex"`
	RGB        [3]uint8   `json:"rgb"`
	Float      [3]float64 `json:"float"`
	Source     Source     `json:"source,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
}

// FromHex parses "#rrggbb", "rrggbb" or the three-digit short form.
func FromHex(hex string) (Tone, error) {
	h := strings.TrimSpace(hex)
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	if len(h) != 7 && len(h) != 4 {
		return Tone{}, fmt.Errorf("skintone: bad hex %q", hex)
	}
	c, err := colorful.Hex(strings.ToLower(h))
	if err != nil {
		return Tone{}, fmt.Errorf("skintone: bad hex %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return FromRGB(r, g, b), nil
}

// FromRGB builds a tone from 8-bit channels.
func FromRGB(r, g, b uint8) Tone {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return Tone{
		Hex:   c.Hex(),
		RGB:   [3]uint8{r, g, b},
		Float: [3]float64{c.R, c.G, c.B},
	}
}

// FromFloat builds a tone from [0,1] channels. The float values are kept as
// given; RGB and Hex are their rounded 8-bit form.
func FromFloat(r, g, b float64) (Tone, error) {
	c := colorful.Color{R: r, G: g, B: b}
	if !c.IsValid() || math.IsNaN(r) || math.IsNaN(g) || math.IsNaN(b) {
		return Tone{}, fmt.Errorf("skintone: channels out of range (%g, %g, %g)", r, g, b)
	}
	r8, g8, b8 := c.RGB255()
	t := FromRGB(r8, g8, b8)
	t.Float = [3]float64{r, g, b}
	return t, nil
}

// With returns a copy tagged with source and confidence.
func (t Tone) With(s Source, confidence float64) Tone {
	t.Source = s
	t.Confidence = confidence
	return t
}

// Valid reports whether the three encodings denote the same colour.
func (t Tone) Valid() bool {
	if t.Hex == "" {
		return false
	}
	h := t.Hex
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	if len(h) != 7 {
		return false
	}
	c, err := colorful.Hex(strings.ToLower(h))
	if err != nil {
		return false
	}
	r, g, b := c.RGB255()
	if [3]uint8{r, g, b} != t.RGB {
		return false
	}
	for i, f := range t.Float {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return false
		}
		if uint8(math.Round(f*255)) != t.RGB[i] {
			return false
		}
	}
	return true
}

// Key packs the 8-bit channels into one integer for exact-match caching.
func (t Tone) Key() uint32 {
	return uint32(t.RGB[0])<<16 | uint32(t.RGB[1])<<8 | uint32(t.RGB[2])
}

// Luminance is 0.299r + 0.587g + 0.114b over the float channels.
func (t Tone) Luminance() float64 {
	return 0.299*t.Float[0] + 0.587*t.Float[1] + 0.114*t.Float[2]
}

// Color returns the tone as a go-colorful colour.
func (t Tone) Color() colorful.Color {
	return colorful.Color{R: t.Float[0], G: t.Float[1], B: t.Float[2]}
}

// SceneColor returns the exact float colour for material assignment.
func (t Tone) SceneColor() scene.Color {
	return scene.Color{R: t.Float[0], G: t.Float[1], B: t.Float[2]}
}

// MaxChannelDiff is the largest 8-bit channel difference between two tones.
func (t Tone) MaxChannelDiff(o Tone) int {
	d := 0
	for i := range t.RGB {
		v := int(t.RGB[i]) - int(o.RGB[i])
		if v < 0 {
			v = -v
		}
		d = max(d, v)
	}
	return d
}

func (t Tone) String() string {
	if t.Source == "" {
		return t.Hex
	}
	return fmt.Sprintf("%s (%s)", t.Hex, t.Source)
}
