package morph

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bodyFat", "bodyFat"},
		{"body_fat", "bodyFat"},
		{"Body_Fat", "bodyFat"},
		{"BODY_fat", "bodyFat"},
		{"blendShape.muscle_definition", "muscleDefinition"},
		{"morph_body_shoulder_width", "shoulderWidth"},
		{"face_jaw_width", "jawWidth"},
		{"  chest-size ", "chestSize"},
		{"shape-chest-size", "shapeChestSize"},
		{"Pregnancy", "pregnant"},
		{"weight", "bodyFat"},
		{"muscular", "bodybuilderSize"},
		{"bodybuilder_size", "bodybuilderSize"},
		{"limb_upper_arm_mass", "armMass"},
		{"ｂｏｄｙＦａｔ", "bodyFat"},
		{"", ""},
		{"   ", ""},
		{"body_", ""},
		{"___", ""},
		{"eye(size)", ""},
		{"bs_", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Canonicalize(tt.in); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"body_fat", "Morph_Body_Hip-Width", "face.nose.length", "weight",
		"blendshape_bs_limb_thigh_mass", "Chest Size", "x", "ÄrmMass",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		if twice := Canonicalize(once); twice != once {
			t.Errorf("Canonicalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSynonymTargetsAreFixedPoints(t *testing.T) {
	for from, to := range synonyms {
		if _, chained := synonyms[to]; chained {
			t.Errorf("synonym %q -> %q chains into another synonym", from, to)
		}
		if got := Canonicalize(to); got != to {
			t.Errorf("synonym target %q canonicalizes to %q", to, got)
		}
	}
}
