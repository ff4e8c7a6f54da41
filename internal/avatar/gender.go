package avatar

import (
	"strings"

	"avatar-morph/internal/morph"
)

var genderSpellings = map[string]morph.Gender{
	"m":         morph.Male,
	"male":      morph.Male,
	"man":       morph.Male,
	"masculine": morph.Male,
	"boy":       morph.Male,
	"f":         morph.Female,
	"female":    morph.Female,
	"woman":     morph.Female,
	"feminine":  morph.Female,
	"girl":      morph.Female,
}

// NormalizeGender maps a free-form gender to a table half. Unrecognized or
// empty input yields fallback and ok == false.
func NormalizeGender(raw string, fallback morph.Gender) (g morph.Gender, ok bool) {
	g, ok = genderSpellings[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return fallback, false
	}
	return g, true
}
