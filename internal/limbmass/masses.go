// Package limbmass turns semantic limb-mass descriptors into non-uniform bone
// scale on a rig, gated by interplay rules over the avatar's shape parameters.
package limbmass

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-viper/mapstructure/v2"

	"avatar-morph/internal/morph"
)

// Composite limb-mass keys.
const (
	ArmMass     = "armMass"
	ForearmMass = "forearmMass"
	ThighMass   = "thighMass"
	CalfMass    = "calfMass"
	NeckMass    = "neckMass"
	HipMass     = "hipMass"
	TorsoMass   = "torsoMass"
)

// NeutralGate is the gate value that leaves scaling untouched.
const NeutralGate = 1.0

// LimbMasses carries the composite scale descriptors of one avatar. Absent
// composites are nil; IsActive is nil when the payload did not say.
type LimbMasses struct {
	ArmMass     *float64 `mapstructure:"armMass" json:"armMass,omitempty"`
	ForearmMass *float64 `mapstructure:"forearmMass" json:"forearmMass,omitempty"`
	ThighMass   *float64 `mapstructure:"thighMass" json:"thighMass,omitempty"`
	CalfMass    *float64 `mapstructure:"calfMass" json:"calfMass,omitempty"`
	NeckMass    *float64 `mapstructure:"neckMass" json:"neckMass,omitempty"`
	HipMass     *float64 `mapstructure:"hipMass" json:"hipMass,omitempty"`
	TorsoMass   *float64 `mapstructure:"torsoMass" json:"torsoMass,omitempty"`

	Gate     *float64 `mapstructure:"gate" json:"gate,omitempty"`
	IsActive *bool    `mapstructure:"isActive" json:"isActive,omitempty"`
}

// Values returns the present composites keyed by name.
func (m LimbMasses) Values() map[string]float64 {
	out := make(map[string]float64, 7)
	for key, p := range map[string]*float64{
		ArmMass:     m.ArmMass,
		ForearmMass: m.ForearmMass,
		ThighMass:   m.ThighMass,
		CalfMass:    m.CalfMass,
		NeckMass:    m.NeckMass,
		HipMass:     m.HipMass,
		TorsoMass:   m.TorsoMass,
	} {
		if p != nil {
			out[key] = *p
		}
	}
	return out
}

// Empty reports whether no composite is present.
func (m LimbMasses) Empty() bool {
	return len(m.Values()) == 0
}

// GateValue returns the gate, defaulting to neutral.
func (m LimbMasses) GateValue() float64 {
	if m.Gate == nil {
		return NeutralGate
	}
	return *m.Gate
}

// Inactive reports whether the payload explicitly switched limb masses off.
func (m LimbMasses) Inactive() bool {
	return m.IsActive != nil && !*m.IsActive
}

// Decode reads a loosely-typed limb-mass object. Keys are canonicalized first
// so "limb_arm_mass", "upperArmMass" and "armMass" all land on ArmMass; string
// numbers and booleans are accepted. Unknown keys are ignored.
func Decode(raw map[string]any) (LimbMasses, error) {
	var out LimbMasses
	if len(raw) == 0 {
		return out, nil
	}
	canon := make(map[string]any, len(raw))
	for _, k := range sortedAnyKeys(raw) {
		if key := morph.Canonicalize(k); key != "" {
			canon[key] = raw[k]
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return LimbMasses{}, fmt.Errorf("limbmass: decoder: %w", err)
	}
	if err := dec.Decode(canon); err != nil {
		return LimbMasses{}, fmt.Errorf("limbmass: decode: %w", err)
	}
	return out, nil
}

// Float is a helper for building LimbMasses literals.
func Float(v float64) *float64 { return &v }

// Bool is a helper for building LimbMasses literals.
func Bool(v bool) *bool { return &v }

func sortedAnyKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
