package limbmass

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"avatar-morph/internal/morph"
)

// Distribution spreads a mapping's deviation over the bones of its groups.
type Distribution string

const (
	// DistributionUniform gives every bone the full deviation.
	DistributionUniform Distribution = "uniform"
	// DistributionFalloff attenuates each successive bone by FalloffStep,
	// never below FalloffFloor.
	DistributionFalloff Distribution = "falloff"
)

// Softening selects the curve mapping mass deviation to scale deviation.
type Softening string

const (
	SoftenLinear Softening = "linear"
	SoftenTanh   Softening = "tanh"
)

// GateMode decides how a non-neutral gate is interpreted.
type GateMode string

const (
	// GateKillSwitch skips the whole calculation when the gate is not neutral.
	GateKillSwitch GateMode = "killswitch"
	// GateMultiplier multiplies final scales by the clamped gate.
	GateMultiplier GateMode = "multiplier"
)

// Mapping drives bone groups from one composite mass. The largest-magnitude
// entry of AxisWeights scales both girth axes; the length axis is never
// weighted, whichever axis LengthAxis names.
type Mapping struct {
	Key          string       `json:"key"`
	Groups       []string     `json:"groups"`
	AxisWeights  [3]float64   `json:"axisWeights"`
	Distribution Distribution `json:"distribution"`
	Softening    Softening    `json:"softening"`
	Clamp        morph.Range  `json:"clamp"`
	Enabled      bool         `json:"enabled"`
	Interplay    string       `json:"interplay,omitempty"`
}

// Config holds every limb-mass tunable.
type Config struct {
	BoneGroups   GroupPatterns `json:"boneGroups"`
	Mappings     []Mapping     `json:"mappings"`
	LengthAxis   string        `json:"lengthAxis"`
	GateMode     GateMode      `json:"gateMode"`
	GateRange    morph.Range   `json:"gateRange"`
	ScaleRange   morph.Range   `json:"scaleRange"`
	LinearBlend  float64       `json:"linearBlend"`
	TanhLimit    float64       `json:"tanhLimit"`
	FalloffStep  float64       `json:"falloffStep"`
	FalloffFloor float64       `json:"falloffFloor"`
}

const bodybuilderRule = "bodybuilderSize >= 0.8"

// DefaultConfig returns the shipped mapping set. Arm, forearm, thigh and calf
// stay off unless the avatar is built like a bodybuilder.
func DefaultConfig() Config {
	girth := [3]float64{1, 0, 1}
	limb := morph.Range{Min: 0.7, Max: 1.5}
	return Config{
		BoneGroups: maps.Clone(DefaultBoneGroups),
		Mappings: []Mapping{
			{Key: ArmMass, Groups: []string{"upperArm"}, AxisWeights: girth, Distribution: DistributionUniform, Clamp: limb, Interplay: bodybuilderRule},
			{Key: ForearmMass, Groups: []string{"forearm"}, AxisWeights: girth, Distribution: DistributionUniform, Clamp: limb, Interplay: bodybuilderRule},
			{Key: ThighMass, Groups: []string{"thigh"}, AxisWeights: girth, Distribution: DistributionUniform, Clamp: limb, Interplay: bodybuilderRule},
			{Key: CalfMass, Groups: []string{"calf"}, AxisWeights: girth, Distribution: DistributionUniform, Clamp: limb, Interplay: bodybuilderRule},
			{Key: NeckMass, Groups: []string{"neck"}, AxisWeights: girth, Distribution: DistributionUniform, Clamp: morph.Range{Min: 0.8, Max: 1.4}, Enabled: true},
			{Key: HipMass, Groups: []string{"hips"}, AxisWeights: girth, Distribution: DistributionUniform, Clamp: morph.Range{Min: 0.8, Max: 1.4}, Interplay: "pregnant >= 0.5 || bodyFat >= 1.0"},
			{Key: TorsoMass, Groups: []string{"spine"}, AxisWeights: girth, Distribution: DistributionFalloff, Softening: SoftenTanh, Clamp: morph.Range{Min: 0.7, Max: 1.6}, Enabled: true},
		},
		LengthAxis:   "y",
		GateMode:     GateKillSwitch,
		GateRange:    morph.Range{Min: 0, Max: 2},
		ScaleRange:   morph.Range{Min: 0.5, Max: 2},
		LinearBlend:  0.6,
		TanhLimit:    0.5,
		FalloffStep:  0.15,
		FalloffFloor: 0.4,
	}
}

// LoadConfig decodes a JSON document over DefaultConfig.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("limbmass: parse config: %w", err)
	}
	if _, err := axisIndex(cfg.LengthAxis); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func axisIndex(axis string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(axis)) {
	case "x":
		return 0, nil
	case "", "y":
		return 1, nil
	case "z":
		return 2, nil
	default:
		return 0, fmt.Errorf("limbmass: unknown length axis %q", axis)
	}
}
