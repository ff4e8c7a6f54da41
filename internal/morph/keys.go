// Package morph reconciles loosely-spelled shape descriptors against the
// per-gender morphology table and writes them into blend-shape influences.
package morph

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// prefixFamilies are namespace prefixes exporters and estimators put in front
// of descriptor names. Matched case-insensitively and stripped repeatedly.
var prefixFamilies = []string{
	"blendshape.",
	"blendshape_",
	"blend_shape_",
	"morphtarget_",
	"morph_",
	"morph.",
	"shape_",
	"shapekey_",
	"body_",
	"face_",
	"limb_",
	"mixamo_",
	"bs_",
}

// synonyms maps alternate canonical spellings to the table's spelling.
// Every value must itself be canonical and absent from the keys.
var synonyms = map[string]string{
	"weight":           "bodyFat",
	"fat":              "bodyFat",
	"bodyWeight":       "bodyFat",
	"muscular":         "bodybuilderSize",
	"muscularity":      "bodybuilderSize",
	"bodybuilder":      "bodybuilderSize",
	"bodyBuilderSize":  "bodybuilderSize",
	"muscle":           "muscleDefinition",
	"muscleTone":       "muscleDefinition",
	"pregnancy":        "pregnant",
	"pregnantBelly":    "pregnant",
	"shoulders":        "shoulderWidth",
	"shoulderBreadth":  "shoulderWidth",
	"hips":             "hipWidth",
	"hipSize":          "hipWidth",
	"waist":            "waistSize",
	"chest":            "chestSize",
	"bust":             "chestSize",
	"legs":             "legLength",
	"jaw":              "jawWidth",
	"nose":             "noseLength",
	"eyes":             "eyeSize",
	"cheeks":           "cheekFullness",
	"lips":             "lipFullness",
	"chin":             "chinLength",
	"upperArmMass":     "armMass",
	"bicepMass":        "armMass",
	"lowerArmMass":     "forearmMass",
	"upperLegMass":     "thighMass",
	"lowerLegMass":     "calfMass",
	"shinMass":         "calfMass",
	"pelvisMass":       "hipMass",
	"chestMass":        "torsoMass",
	"trunkMass":        "torsoMass",
	"limbMassGate":     "gate",
	"massGate":         "gate",
	"active":           "isActive",
	"enabled":          "isActive",
	"limbMassIsActive": "isActive",
}

var titleCaser = cases.Title(language.Und, cases.NoLower)

// Canonicalize returns the normalized spelling of a descriptor key, or "" when
// nothing usable remains. It never panics and is idempotent.
func Canonicalize(raw string) string {
	s := strings.TrimSpace(norm.NFKC.String(raw))
	s = stripPrefixes(s)
	if s == "" {
		return ""
	}

	segments := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(segments[0])
	for _, seg := range segments[1:] {
		b.WriteString(titleCaser.String(seg))
	}
	out := lowerFirst(b.String())

	for _, r := range out {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ""
		}
	}
	if syn, ok := synonyms[out]; ok {
		return syn
	}
	return out
}

func stripPrefixes(s string) string {
	for {
		stripped := false
		for _, p := range prefixFamilies {
			if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
				s = s[len(p):]
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
