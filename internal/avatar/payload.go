package avatar

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"avatar-morph/internal/limbmass"
	"avatar-morph/internal/logging"
	"avatar-morph/internal/skintone"
)

// ErrInvalidPayload is returned for payloads that are not JSON objects.
var ErrInvalidPayload = errors.New("avatar: payload is not a JSON object")

// Accepted spellings of payload sections, first match wins.
var (
	shapeKeys  = []string{"shapeParams", "shape_params", "bodyParams", "body_params", "morphs"}
	faceKeys   = []string{"faceParams", "face_params", "faceMorphs"}
	limbKeys   = []string{"limbMasses", "limb_masses", "limbMass"}
	genderKeys = []string{"gender", "sex", "profile.gender", "avatar.gender"}
	toneKeys   = []string{"skinTone", "skin_tone", "tone"}
)

// embeddedResults maps result objects that may carry their own tone.
var embeddedResults = []struct {
	keys   []string
	source skintone.Source
}{
	{[]string{"scanResult", "scan_result", "scan"}, skintone.SourceScan},
	{[]string{"estimate", "estimateResult", "estimate_result"}, skintone.SourceEstimate},
	{[]string{"commitResult", "commit_result"}, skintone.SourceCommit},
	{[]string{"matchResult", "match_result"}, skintone.SourceMatch},
	{[]string{"semanticResult", "semantic_result"}, skintone.SourceSemantic},
}

// Payload is the tolerant decoding of one avatar JSON document.
type Payload struct {
	Shape      map[string]float64
	Face       map[string]float64
	LimbMasses limbmass.LimbMasses
	Gender     string
	Tones      []skintone.Tone
	Skipped    []string // entries that could not be read as numbers
}

// HasShape reports whether the payload carries any shape data.
func (p Payload) HasShape() bool {
	return len(p.Shape) > 0 || len(p.Face) > 0 || !p.LimbMasses.Empty()
}

// ParsePayload reads an avatar document. The top-level tone is tagged with
// primary; tones inside embedded result objects get their own sources.
func ParsePayload(data []byte, primary skintone.Source) (Payload, error) {
	if !gjson.ValidBytes(data) {
		return Payload{}, ErrInvalidPayload
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Payload{}, ErrInvalidPayload
	}

	var p Payload
	p.Shape = numberMap(firstOf(root, shapeKeys), &p.Skipped)
	p.Face = numberMap(firstOf(root, faceKeys), &p.Skipped)
	if lm := firstOf(root, limbKeys); lm.IsObject() {
		raw, _ := lm.Value().(map[string]any)
		masses, err := limbmass.Decode(raw)
		if err != nil {
			logging.Logger().Warn("limb masses ignored", "err", err)
			p.Skipped = append(p.Skipped, lm.Raw)
		} else {
			p.LimbMasses = masses
		}
	}
	if g := firstOf(root, genderKeys); g.Type == gjson.String {
		p.Gender = g.Str
	}

	if t, ok := parseTone(firstOf(root, toneKeys), primary); ok {
		p.Tones = append(p.Tones, t)
	}
	for _, er := range embeddedResults {
		res := firstOf(root, er.keys)
		if !res.IsObject() {
			continue
		}
		if t, ok := parseTone(firstOf(res, toneKeys), er.source); ok {
			p.Tones = append(p.Tones, t)
		}
	}
	return p, nil
}

func firstOf(r gjson.Result, keys []string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// numberMap reads an object of numbers. String numbers and booleans are
// accepted; anything else is recorded in skipped.
func numberMap(obj gjson.Result, skipped *[]string) map[string]float64 {
	if !obj.IsObject() {
		return nil
	}
	out := make(map[string]float64)
	obj.ForEach(func(k, v gjson.Result) bool {
		switch v.Type {
		case gjson.Number:
			out[k.Str] = v.Num
		case gjson.True:
			out[k.Str] = 1
		case gjson.False:
			out[k.Str] = 0
		case gjson.String:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
			if err != nil {
				*skipped = append(*skipped, k.Str)
				return true
			}
			out[k.Str] = f
		default:
			*skipped = append(*skipped, k.Str)
		}
		return true
	})
	return out
}

// parseTone accepts "#rrggbb", {"hex": ...}, {"r","g","b"} or {"rgb": [...]}.
// When an object carries both hex and RGB they are kept side by side so a
// disagreement makes the tone structurally invalid rather than silently
// picking one.
func parseTone(v gjson.Result, src skintone.Source) (skintone.Tone, bool) {
	switch {
	case v.Type == gjson.String:
		t, err := skintone.FromHex(v.Str)
		if err != nil {
			return skintone.Tone{}, false
		}
		return t.With(src, 1), true
	case v.IsObject():
	default:
		return skintone.Tone{}, false
	}

	confidence := 1.0
	if c := v.Get("confidence"); c.Type == gjson.Number {
		confidence = c.Num
	}

	rgb, hasRGB := readRGB(v)
	if hex := v.Get("hex"); hex.Type == gjson.String {
		t, err := skintone.FromHex(hex.Str)
		if err != nil {
			return skintone.Tone{}, false
		}
		if hasRGB {
			t.RGB = rgb
		}
		return t.With(src, confidence), true
	}
	if hasRGB {
		return skintone.FromRGB(rgb[0], rgb[1], rgb[2]).With(src, confidence), true
	}
	if f := v.Get("float"); f.IsArray() && len(f.Array()) == 3 {
		a := f.Array()
		t, err := skintone.FromFloat(a[0].Float(), a[1].Float(), a[2].Float())
		if err != nil {
			return skintone.Tone{}, false
		}
		return t.With(src, confidence), true
	}
	return skintone.Tone{}, false
}

func readRGB(v gjson.Result) ([3]uint8, bool) {
	var parts []gjson.Result
	switch rgb := v.Get("rgb"); {
	case rgb.IsArray():
		parts = rgb.Array()
	case rgb.IsObject():
		parts = []gjson.Result{rgb.Get("r"), rgb.Get("g"), rgb.Get("b")}
	default:
		parts = []gjson.Result{v.Get("r"), v.Get("g"), v.Get("b")}
	}
	if len(parts) != 3 {
		return [3]uint8{}, false
	}
	var out [3]uint8
	for i, p := range parts {
		if p.Type != gjson.Number || p.Num < 0 || p.Num > 255 {
			return [3]uint8{}, false
		}
		out[i] = uint8(p.Num + 0.5)
	}
	return out, true
}
