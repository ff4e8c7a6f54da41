package morph

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateClampCorrectness(t *testing.T) {
	v := NewValidator(testMapping())
	values := []float64{-5, -1, -0.25, 0, 0.3, 0.6, 1, 1.7, 2, 9, math.Inf(1), math.Inf(-1), math.NaN()}

	for _, g := range []Gender{Male, Female} {
		table := v.Mapping().Table(g)
		for _, key := range table.Keys() {
			r, _, _ := table.Lookup(key)
			for _, val := range values {
				res := v.Validate(key, val, g)
				if res.ClampedValue < r.Min || res.ClampedValue > r.Max {
					t.Errorf("%s/%s(%v): clamped %v outside [%v, %v]", g, key, val, res.ClampedValue, r.Min, r.Max)
				}
				wantValid := !math.IsNaN(val) && !math.IsInf(val, 0) && val >= r.Min && val <= r.Max
				if res.IsValid != wantValid {
					t.Errorf("%s/%s(%v): IsValid = %v, want %v", g, key, val, res.IsValid, wantValid)
				}
				if res.OutOfRange == res.IsValid {
					t.Errorf("%s/%s(%v): OutOfRange should be !IsValid", g, key, val)
				}
			}
		}
	}
}

func TestValidateNamespaces(t *testing.T) {
	v := NewValidator(testMapping())
	tests := []struct {
		key  string
		want Namespace
	}{
		{"bodyFat", NamespaceBody},
		{"jawWidth", NamespaceFace},
		{"armMass", NamespaceLimbMass},
		{"tailLength", NamespaceNone},
	}
	for _, tt := range tests {
		if got := v.Validate(tt.key, 0.5, Male).Namespace; got != tt.want {
			t.Errorf("Validate(%s).Namespace = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidateMissingGenderRejectsEverything(t *testing.T) {
	m := testMapping()
	m.Female = nil
	v := NewValidator(m)

	if v.Ready() {
		t.Fatal("validator with one gender should not be ready")
	}
	for _, g := range []Gender{Male, Female} {
		res := v.Validate("bodyFat", 0.5, g)
		if res.IsValid || res.Known {
			t.Errorf("%s: expected rejection with missing mapping, got %+v", g, res)
		}
		if res.ClampedValue != 0 {
			t.Errorf("%s: ClampedValue = %v, want 0", g, res.ClampedValue)
		}
	}
	if NewValidator(nil).Validate("bodyFat", 0.5, Male).IsValid {
		t.Error("nil mapping must reject")
	}
}

func TestIsBanned(t *testing.T) {
	m := testMapping()
	if !IsBanned("pregnant", Male, m) {
		t.Error("pregnant should be banned for male")
	}
	if IsBanned("pregnant", Female, m) {
		t.Error("pregnant should not be banned for female")
	}
	if IsBanned("tailLength", Male, m) {
		t.Error("unknown keys are not banned")
	}
	if IsBanned("pregnant", Male, &Mapping{Male: m.Male}) {
		t.Error("incomplete mapping answers nothing")
	}
}

func TestParseMapping(t *testing.T) {
	doc := `{
		"male":   {"body": {"body_fat": {"min": -1, "max": 2}}, "face": {"Jaw_Width": {"min": -1, "max": 1}},
		           "limbMass": {"armMass": {"min": 0.7, "max": 1.5}}, "categories": {"Build": ["bodyFat"]}},
		"female": {"body": {"bodyFat": {"min": -1, "max": 2}}, "face": {}, "limbMass": {}}
	}`
	m, err := ParseMapping([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMapping: %v", err)
	}
	if !m.Ready() {
		t.Fatal("parsed mapping should be ready")
	}
	if _, ns, ok := m.Male.Lookup("bodyFat"); !ok || ns != NamespaceBody {
		t.Errorf("body_fat not canonicalized: ok=%v ns=%q", ok, ns)
	}
	if _, _, ok := m.Male.Lookup("jawWidth"); !ok {
		t.Error("Jaw_Width not canonicalized")
	}
	if got := m.Male.Category("build"); len(got) != 1 || got[0] != "bodyFat" {
		t.Errorf("Category(build) = %v", got)
	}
}

func TestParseMappingRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"inverted range", `{"male": {"body": {"bodyFat": {"min": 2, "max": 1}}}}`, "invalid range"},
		{"namespace overlap", `{"male": {"body": {"jawWidth": {"min": 0, "max": 1}}, "face": {"jaw_width": {"min": 0, "max": 1}}}}`, "appears in both"},
		{"unnormalizable key", `{"female": {"face": {"(x)": {"min": 0, "max": 1}}}}`, "does not normalize"},
		{"not json", `{`, "parse mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMapping([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseMapping error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestErrMappingNotReadyIsSentinel(t *testing.T) {
	_, err := Apply(nil, nil, Male, NewValidator(nil), nil)
	if !errors.Is(err, ErrMappingNotReady) {
		t.Errorf("Apply with nil mapping = %v, want ErrMappingNotReady", err)
	}
}
