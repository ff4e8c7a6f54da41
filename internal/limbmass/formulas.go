package limbmass

import (
	"maps"
	"math"
)

// Formula derives one composite from others when the payload left it out.
type Formula struct {
	Name   string
	Target string
	Inputs []string
	Min    float64
	Max    float64
	Eval   func(in []float64) float64
}

// DefaultFormulas run in order, so later formulas may consume earlier results.
var DefaultFormulas = []Formula{
	{
		Name: "forearmFromArm", Target: ForearmMass, Inputs: []string{ArmMass},
		Min: 0.7, Max: 1.5,
		Eval: func(in []float64) float64 { return 1 + (in[0]-1)*0.8 },
	},
	{
		Name: "calfFromThigh", Target: CalfMass, Inputs: []string{ThighMass},
		Min: 0.7, Max: 1.5,
		Eval: func(in []float64) float64 { return 1 + (in[0]-1)*0.75 },
	},
	{
		Name: "hipFromThigh", Target: HipMass, Inputs: []string{ThighMass},
		Min: 0.8, Max: 1.4,
		Eval: func(in []float64) float64 { return 1 + (in[0]-1)*0.5 },
	},
	{
		Name: "torsoFromLimbs", Target: TorsoMass, Inputs: []string{ArmMass, ThighMass},
		Min: 0.7, Max: 1.6,
		Eval: func(in []float64) float64 { return 1 + ((in[0]+in[1])/2-1)*0.7 },
	},
	{
		Name: "neckFromTorso", Target: NeckMass, Inputs: []string{TorsoMass},
		Min: 0.8, Max: 1.4,
		Eval: func(in []float64) float64 { return 1 + (in[0]-1)*0.6 },
	},
}

// Derive fills missing composites. The input map is not modified; the names
// of the formulas that fired are returned in order.
func Derive(values map[string]float64, formulas []Formula) (map[string]float64, []string) {
	out := maps.Clone(values)
	if out == nil {
		out = make(map[string]float64)
	}
	var fired []string
	for _, f := range formulas {
		if _, present := out[f.Target]; present {
			continue
		}
		in := make([]float64, len(f.Inputs))
		ok := true
		for i, name := range f.Inputs {
			v, present := out[name]
			if !present {
				ok = false
				break
			}
			in[i] = v
		}
		if !ok {
			continue
		}
		v := f.Eval(in)
		if math.IsNaN(v) {
			continue
		}
		out[f.Target] = math.Max(f.Min, math.Min(f.Max, v))
		fired = append(fired, f.Name)
	}
	return out, fired
}
