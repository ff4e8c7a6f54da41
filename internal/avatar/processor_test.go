package avatar

import (
	"errors"
	"math"
	"testing"

	"avatar-morph/internal/limbmass"
	"avatar-morph/internal/morph"
	"avatar-morph/internal/scene"
	"avatar-morph/internal/skintone"
	"avatar-morph/internal/texgen"
)

const mappingJSON = `{
	"male": {
		"body": {"bodyFat": {"min": -1, "max": 2}, "pregnant": {"min": 0, "max": 0}, "bodybuilderSize": {"min": 0, "max": 1}},
		"face": {"jawWidth": {"min": -1, "max": 1}},
		"limbMass": {"neckMass": {"min": 0.8, "max": 1.4}}
	},
	"female": {
		"body": {"bodyFat": {"min": -1, "max": 2}, "pregnant": {"min": 0, "max": 1}, "bodybuilderSize": {"min": 0, "max": 0.6}},
		"face": {"jawWidth": {"min": -1, "max": 0.5}},
		"limbMass": {"neckMass": {"min": 0.8, "max": 1.4}}
	}
}`

func newProcessor(t *testing.T, withCache bool) *Processor {
	t.Helper()
	m, err := morph.ParseMapping([]byte(mappingJSON))
	if err != nil {
		t.Fatalf("ParseMapping: %v", err)
	}
	calc, err := limbmass.NewCalculator(limbmass.DefaultConfig())
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	var cache *texgen.Cache
	if withCache {
		opt := texgen.DefaultOptions()
		opt.Detail = texgen.DetailLow
		cache = texgen.NewCache(4, opt)
	}
	return NewProcessor(morph.NewValidator(m), calc, cache, DefaultOptions())
}

func influence(t *testing.T, root *scene.Node, node, key string) float64 {
	t.Helper()
	v, ok := root.Find(node).Mesh.Influence(key)
	if !ok {
		t.Fatalf("%s has no channel %q", node, key)
	}
	return v
}

func TestProcessSavedPayload(t *testing.T) {
	p := newProcessor(t, true)
	root := scene.NewReferenceRig()

	out, err := p.Process(root, Input{
		Saved: []byte(`{
			"gender": "male",
			"shapeParams": {"body_fat": 0.5, "pregnant": 0.8},
			"faceParams": {"jaw_width": -0.3},
			"limbMasses": {"neckMass": 1.2},
			"skinTone": "#c68642"
		}`),
		Live: []byte(`{"shapeParams": {"bodyFat": -1}, "skinTone": "#ffe0bd"}`),
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Strategy != StrategySaved || out.Gender != morph.Male || out.GenderFallback {
		t.Errorf("strategy %s gender %s fallback %v", out.Strategy, out.Gender, out.GenderFallback)
	}

	if got := influence(t, root, "Body", "bodyFat"); got != 0.5 {
		t.Errorf("bodyFat = %v, want 0.5", got)
	}
	if got := influence(t, root, "Body", "pregnant"); got != 0 {
		t.Errorf("pregnant = %v, want 0 for a banned key", got)
	}
	if got := influence(t, root, "Head", "jawWidth"); got != -0.3 {
		t.Errorf("jawWidth = %v, want -0.3", got)
	}
	if out.MorphTotal.Banned == 0 {
		t.Errorf("banned key not counted: %s", out.MorphTotal.String())
	}
	if _, ok := out.Morph["Eyes"]; ok {
		t.Error("morphs applied to a mesh without channels")
	}

	if !out.Limbs.Applied {
		t.Fatalf("limbs not applied: %s", out.Limbs)
	}
	neck := root.Find("mixamorig:Neck")
	if math.Abs(neck.Scale[0]-1.12) > 1e-9 || neck.Scale[1] != 1 {
		t.Errorf("neck scale = %v", neck.Scale)
	}

	if out.Tone == nil || out.Tone.Source != skintone.SourcePersisted || out.Tone.Tone.Hex != "#c68642" {
		t.Fatalf("tone = %+v", out.Tone)
	}
	if out.Materials == nil || !out.Materials.Success || out.Materials.ProceduralTexturesApplied != 2 {
		t.Errorf("materials = %v", out.Materials)
	}
}

func TestProcessProjectionOverrideWins(t *testing.T) {
	p := newProcessor(t, false)
	root := scene.NewReferenceRig()

	out, err := p.Process(root, Input{
		Saved:      []byte(`{"shapeParams": {"bodyFat": 0.5}, "skinTone": "#c68642"}`),
		Override:   []byte(`{"shapeParams": {"bodyFat": 1.5}, "skinTone": "#3b2219"}`),
		Projection: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Strategy != StrategyOverride {
		t.Errorf("strategy = %s", out.Strategy)
	}
	if got := influence(t, root, "Body", "bodyFat"); got != 1.5 {
		t.Errorf("bodyFat = %v, want override 1.5", got)
	}
	if out.Tone == nil || out.Tone.Source != skintone.SourceOverride {
		t.Fatalf("tone = %+v", out.Tone)
	}
	want, _ := skintone.FromHex("#3b2219")
	body := root.Find("Body").Mesh.Materials[0].Base()
	if d := body.Color.MaxDiff(want.SceneColor()); d >= 1e-3 {
		t.Errorf("body colour off by %v", d)
	}
	if out.Materials.ProceduralTexturesApplied != 0 {
		t.Error("textures applied without a cache")
	}
}

func TestProcessOverrideIgnoredOutsideProjection(t *testing.T) {
	p := newProcessor(t, false)
	root := scene.NewReferenceRig()

	out, err := p.Process(root, Input{
		Live:     []byte(`{"shapeParams": {"bodyFat": 0.25}, "sex": "alien"}`),
		Override: []byte(`{"shapeParams": {"bodyFat": 1.5}, "skinTone": "#3b2219"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Strategy != StrategyLive {
		t.Errorf("strategy = %s", out.Strategy)
	}
	if out.Gender != morph.Female || !out.GenderFallback {
		t.Errorf("gender = %s fallback %v", out.Gender, out.GenderFallback)
	}
	if got := influence(t, root, "Body", "bodyFat"); got != 0.25 {
		t.Errorf("bodyFat = %v", got)
	}
	if out.Tone != nil || out.Materials != nil {
		t.Error("override tone leaked outside projection")
	}
}

func TestProcessToneOnly(t *testing.T) {
	p := newProcessor(t, false)
	root := scene.NewReferenceRig()
	tone := skintone.FromRGB(224, 172, 105)

	out, err := p.Process(root, Input{Tone: &tone})
	if err != nil {
		t.Fatal(err)
	}
	if out.Strategy != StrategyNone || out.Morph != nil || out.Limbs.Applied {
		t.Errorf("outcome = %+v", out)
	}
	if out.Tone == nil || out.Tone.Source != skintone.SourceDirect {
		t.Fatalf("tone = %+v", out.Tone)
	}
	if !out.Materials.Success {
		t.Errorf("materials = %s", out.Materials)
	}
	for _, b := range root.Bones() {
		if b.Scale[0] != 1 || b.Scale[1] != 1 || b.Scale[2] != 1 {
			t.Errorf("%s scaled without a payload", b.Name)
		}
	}
}

func TestProcessErrors(t *testing.T) {
	incomplete := &morph.Mapping{Male: &morph.GenderTable{}}
	p := NewProcessor(morph.NewValidator(incomplete), nil, nil, Options{})
	_, err := p.Process(scene.NewReferenceRig(), Input{Saved: []byte(`{}`)})
	if !errors.Is(err, ErrNotReady) || !errors.Is(err, morph.ErrMappingNotReady) {
		t.Errorf("incomplete mapping err = %v", err)
	}

	p = newProcessor(t, false)
	if _, err := p.Process(scene.NewReferenceRig(), Input{Saved: []byte(`[1, 2]`)}); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("malformed saved payload err = %v", err)
	}
	if _, err := p.Process(scene.NewReferenceRig(), Input{Override: []byte(`nope`)}); err != nil {
		t.Errorf("override outside projection should not be parsed: %v", err)
	}
}
