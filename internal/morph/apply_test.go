package morph

import (
	"errors"
	"math"
	"testing"

	"avatar-morph/internal/scene"
)

func bodyNode() *scene.Node {
	mat := &scene.StandardMaterial{MaterialBase: scene.MaterialBase{Name: "Body_Skin"}}
	n := scene.NewMeshNode("Body", scene.NewMesh(
		[]string{"bodyFat", "bodybuilderSize", "pregnant", "shoulderWidth", "jawWidth"}, mat))
	n.Visible = false
	return n
}

func influence(t *testing.T, n *scene.Node, key string) float64 {
	t.Helper()
	v, ok := n.Mesh.Influence(key)
	if !ok {
		t.Fatalf("no channel %q", key)
	}
	return v
}

func TestApplyWritesClampedValues(t *testing.T) {
	n := bodyNode()
	v := NewValidator(testMapping())

	stats, err := Apply(n, map[string]float64{
		"body_fat":         0.5,
		"Bodybuilder_Size": 3,
		"shoulder-width":   -0.2,
		"tail_length":      1,
		"(bad)":            1,
	}, Male, v, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if got := influence(t, n, "bodyFat"); got != 0.5 {
		t.Errorf("bodyFat = %v, want 0.5", got)
	}
	if got := influence(t, n, "bodybuilderSize"); got != 1 {
		t.Errorf("bodybuilderSize = %v, want clamped 1", got)
	}
	if got := influence(t, n, "shoulderWidth"); got != -0.2 {
		t.Errorf("shoulderWidth = %v, want -0.2", got)
	}

	want := ApplyStats{Applied: 3, Clamped: 1, SkippedUnknown: 2, Changed: true}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if !n.Mesh.GeometryNeedsUpdate || !n.Visible || !n.Mesh.Materials[0].Base().NeedsUpdate {
		t.Error("changed influences should flag geometry, materials and visibility")
	}
}

func TestApplyIdempotent(t *testing.T) {
	n := bodyNode()
	v := NewValidator(testMapping())
	params := map[string]float64{"bodyFat": 1.2, "bodybuilderSize": 0.4, "shoulderWidth": 5}

	if _, err := Apply(n, params, Female, v, nil); err != nil {
		t.Fatal(err)
	}
	first := append([]float64(nil), n.Mesh.MorphInfluences...)

	n.Mesh.GeometryNeedsUpdate = false
	stats, err := Apply(n, params, Female, v, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if n.Mesh.MorphInfluences[i] != first[i] {
			t.Errorf("influence[%d] drifted: %v -> %v", i, first[i], n.Mesh.MorphInfluences[i])
		}
	}
	if stats.Changed || n.Mesh.GeometryNeedsUpdate {
		t.Error("second identical apply should not report a change")
	}
}

// A banned channel resolves to zero no matter what is requested.
func TestApplyBannedChannelScenario(t *testing.T) {
	n := bodyNode()
	n.Mesh.MorphInfluences[n.Mesh.MorphDictionary["pregnant"]] = 0.7
	v := NewValidator(testMapping())

	stats, err := Apply(n, map[string]float64{"pregnant": 1.0}, Male, v, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := influence(t, n, "pregnant"); got != 0 {
		t.Errorf("pregnant = %v, want 0", got)
	}
	if stats.Banned != 1 || stats.Applied != 0 {
		t.Errorf("stats = %+v, want one banned", stats)
	}

	if _, err := Apply(n, map[string]float64{"pregnant": 1.0}, Female, v, nil); err != nil {
		t.Fatal(err)
	}
	if got := influence(t, n, "pregnant"); got != 1 {
		t.Errorf("female pregnant = %v, want 1", got)
	}
}

func TestApplyFaceParamsWinOnCollision(t *testing.T) {
	n := bodyNode()
	v := NewValidator(testMapping())

	_, err := Apply(n,
		map[string]float64{"jawWidth": -0.9},
		Male, v,
		map[string]float64{"face_jaw_width": 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if got := influence(t, n, "jawWidth"); got != 0.3 {
		t.Errorf("jawWidth = %v, want face value 0.3", got)
	}
}

func TestApplyNonFiniteSkipped(t *testing.T) {
	n := bodyNode()
	n.Mesh.MorphInfluences[0] = 0.25
	v := NewValidator(testMapping())

	stats, err := Apply(n, map[string]float64{"bodyFat": math.NaN()}, Male, v, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SkippedInvalid != 1 || stats.Changed {
		t.Errorf("stats = %+v, want one invalid and no change", stats)
	}
	if got := influence(t, n, "bodyFat"); got != 0.25 {
		t.Errorf("bodyFat = %v, want untouched 0.25", got)
	}
}

func TestApplyStructuralErrors(t *testing.T) {
	v := NewValidator(testMapping())
	if _, err := Apply(scene.NewNode("empty"), nil, Male, v, nil); !errors.Is(err, ErrNoMorphTargets) {
		t.Errorf("node without mesh: err = %v, want ErrNoMorphTargets", err)
	}
	incomplete := testMapping()
	incomplete.Male = nil
	if _, err := Apply(bodyNode(), map[string]float64{"bodyFat": 1}, Female, NewValidator(incomplete), nil); !errors.Is(err, ErrMappingNotReady) {
		t.Errorf("incomplete mapping: err = %v, want ErrMappingNotReady", err)
	}
}

func TestApplyMatchesExporterChannelNames(t *testing.T) {
	mat := &scene.StandardMaterial{MaterialBase: scene.MaterialBase{Name: "Body_Skin"}}
	n := scene.NewMeshNode("Body", scene.NewMesh([]string{"Body_Fat", "bs_pregnant", "Shoulder_Width", "shoulderWidth"}, mat))

	stats, err := Apply(n, map[string]float64{"bodyFat": 0.4, "pregnant": 0.6, "shoulder_width": 0.3}, Female, NewValidator(testMapping()), nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if stats.Applied != 3 || stats.SkippedUnknown != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if got := influence(t, n, "Body_Fat"); got != 0.4 {
		t.Errorf("Body_Fat = %v, want 0.4", got)
	}
	if got := influence(t, n, "bs_pregnant"); got != 0.6 {
		t.Errorf("bs_pregnant = %v, want 0.6", got)
	}
	// The exactly-named channel takes the value over its loose twin.
	if got := influence(t, n, "shoulderWidth"); got != 0.3 {
		t.Errorf("shoulderWidth = %v, want 0.3", got)
	}
	if got := influence(t, n, "Shoulder_Width"); got != 0 {
		t.Errorf("Shoulder_Width = %v, want untouched", got)
	}
}
