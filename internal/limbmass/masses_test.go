package limbmass

import (
	"math"
	"slices"
	"testing"
)

func TestDecodeCanonicalizesLooseKeys(t *testing.T) {
	m, err := Decode(map[string]any{
		"limb_arm_mass": "1.2",
		"thigh-mass":    1.1,
		"limbMassGate":  1,
		"active":        "false",
		"tailMass":      3,
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.ArmMass == nil || *m.ArmMass != 1.2 {
		t.Errorf("ArmMass = %v, want 1.2", m.ArmMass)
	}
	if m.ThighMass == nil || *m.ThighMass != 1.1 {
		t.Errorf("ThighMass = %v, want 1.1", m.ThighMass)
	}
	if m.GateValue() != 1 {
		t.Errorf("GateValue = %v, want 1", m.GateValue())
	}
	if !m.Inactive() {
		t.Error("expected Inactive after active=false")
	}
	if m.CalfMass != nil {
		t.Errorf("CalfMass = %v, want nil", *m.CalfMass)
	}
}

func TestDecodeEmpty(t *testing.T) {
	m, err := Decode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Empty() || m.Inactive() || m.GateValue() != NeutralGate {
		t.Errorf("zero LimbMasses not neutral: %+v", m)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(map[string]any{"armMass": "heavy"}); err == nil {
		t.Error("expected error for non-numeric armMass")
	}
}

func TestDerive(t *testing.T) {
	in := map[string]float64{ArmMass: 1.3, ThighMass: 1.2}
	out, fired := Derive(in, DefaultFormulas)

	if len(in) != 2 {
		t.Fatalf("input mutated: %v", in)
	}
	want := map[string]float64{
		ArmMass:     1.3,
		ThighMass:   1.2,
		ForearmMass: 1.24,
		CalfMass:    1.15,
		HipMass:     1.1,
		TorsoMass:   1.175,
		NeckMass:    1.105,
	}
	for k, v := range want {
		if math.Abs(out[k]-v) > 1e-9 {
			t.Errorf("%s = %v, want %v", k, out[k], v)
		}
	}
	wantFired := []string{"forearmFromArm", "calfFromThigh", "hipFromThigh", "torsoFromLimbs", "neckFromTorso"}
	if !slices.Equal(fired, wantFired) {
		t.Errorf("fired = %v, want %v", fired, wantFired)
	}
}

func TestDeriveKeepsPresentAndClamps(t *testing.T) {
	out, fired := Derive(map[string]float64{ArmMass: 3, ForearmMass: 0.9}, DefaultFormulas)
	if out[ForearmMass] != 0.9 {
		t.Errorf("present forearm overwritten: %v", out[ForearmMass])
	}
	if slices.Contains(fired, "forearmFromArm") {
		t.Error("forearmFromArm fired for a present target")
	}
	if _, ok := out[TorsoMass]; ok {
		t.Error("torso derived without thigh")
	}

	out, _ = Derive(map[string]float64{ThighMass: 5}, DefaultFormulas)
	if out[CalfMass] != 1.5 {
		t.Errorf("calf = %v, want clamp 1.5", out[CalfMass])
	}
	if out[HipMass] != 1.4 {
		t.Errorf("hip = %v, want clamp 1.4", out[HipMass])
	}
}
