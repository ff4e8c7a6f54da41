package limbmass

import (
	"fmt"
	"math"
	"sort"

	"avatar-morph/internal/logging"
	"avatar-morph/internal/mathutil"
	"avatar-morph/internal/morph"
	"avatar-morph/internal/scene"
)

// Reasons reported by Result when nothing was applied.
const (
	ReasonInactive  = "inactive"
	ReasonEmpty     = "empty"
	ReasonGated     = "gated"
	ReasonNoMapping = "no mapping enabled"
	ReasonNoBones   = "no bones matched"
)

// Result summarizes one ComputeAndApply call. It is meant for logging.
type Result struct {
	Applied     bool
	Reason      string
	Derived     []string
	Enabled     []string
	BonesScaled int
}

func (r Result) String() string {
	if !r.Applied {
		return "limb masses skipped: " + r.Reason
	}
	return fmt.Sprintf("limb masses applied: %d bones, mappings %v, derived %v", r.BonesScaled, r.Enabled, r.Derived)
}

type compiledMapping struct {
	Mapping
	rule    Condition
	weights mathutil.Vec3
}

// girthWeights spreads the strongest configured weight over both girth axes
// and zeroes the length axis, so weights authored for one length axis stay
// valid for another.
func girthWeights(w [3]float64, lengthAxis int) mathutil.Vec3 {
	var g float64
	for _, v := range w {
		if math.Abs(v) > math.Abs(g) {
			g = v
		}
	}
	out := mathutil.Vec3{g, g, g}
	out[lengthAxis] = 0
	return out
}

// Calculator turns limb masses into bone scale. Interplay rules and bone
// patterns are compiled once by NewCalculator.
type Calculator struct {
	cfg        Config
	mappings   []compiledMapping
	resolver   *BoneGroupResolver
	formulas   []Formula
	lengthAxis int
}

// NewCalculator compiles cfg. A rule that does not parse is logged and never
// enables its mapping.
func NewCalculator(cfg Config) (*Calculator, error) {
	axis, err := axisIndex(cfg.LengthAxis)
	if err != nil {
		return nil, err
	}
	c := &Calculator{
		cfg:        cfg,
		resolver:   NewBoneGroupResolver(cfg.BoneGroups),
		formulas:   DefaultFormulas,
		lengthAxis: axis,
	}
	for _, m := range cfg.Mappings {
		cm := compiledMapping{Mapping: m, weights: girthWeights(m.AxisWeights, axis)}
		if m.Interplay != "" {
			rule, err := CompileCondition(m.Interplay)
			if err != nil {
				logging.Logger().Warn("interplay rule disabled", "key", m.Key, "err", err)
			}
			cm.rule = rule
		}
		c.mappings = append(c.mappings, cm)
	}
	return c, nil
}

// Config returns the configuration the calculator was built from.
func (c *Calculator) Config() Config { return c.cfg }

// Resolver exposes the bone group resolver so callers can Reset it when a new
// rig is loaded.
func (c *Calculator) Resolver() *BoneGroupResolver { return c.resolver }

// ComputeAndApply scales the rig's bones from masses. shape feeds the
// interplay rules. Identical inputs on an unchanged rig give identical scales.
func (c *Calculator) ComputeAndApply(root *scene.Node, masses LimbMasses, shape map[string]float64) Result {
	log := logging.Logger()
	if masses.Inactive() {
		return Result{Reason: ReasonInactive}
	}
	if masses.Empty() {
		return Result{Reason: ReasonEmpty}
	}
	gate := masses.GateValue()
	if c.cfg.GateMode != GateMultiplier && gate != NeutralGate {
		log.Debug("limb masses gated", "gate", gate)
		return Result{Reason: ReasonGated}
	}
	if !finite(gate) {
		log.Warn("limb mass gate not finite, using neutral", "gate", gate)
		gate = NeutralGate
	}

	values, derived := Derive(masses.Values(), c.formulas)
	groups := c.resolver.Resolve(root)
	vars, _ := morph.MergeParams(shape, nil)

	res := Result{Derived: derived}
	devs := make(map[*scene.Node]mathutil.Vec3)
	var order []*scene.Node
	for _, m := range c.mappings {
		if !m.Enabled && (m.rule == nil || !m.rule.Eval(vars)) {
			continue
		}
		mass, ok := values[m.Key]
		if !ok || !finite(mass) {
			continue
		}
		res.Enabled = append(res.Enabled, m.Key)
		dev := c.soften(m.Clamp.Clamp(mass)-1, m.Softening)

		for _, group := range m.Groups {
			for i, bone := range groups[group] {
				d := dev * c.distribution(m.Distribution, i)
				want := mathutil.Vec3{d * m.weights[0], d * m.weights[1], d * m.weights[2]}
				have, seen := devs[bone]
				if !seen {
					order = append(order, bone)
				}
				devs[bone] = maxMagnitude(have, want)
			}
		}
	}
	if len(res.Enabled) == 0 {
		res.Reason = ReasonNoMapping
		c.resetUntouched(groups, devs)
		return res
	}
	if len(devs) == 0 {
		res.Reason = ReasonNoBones
		return res
	}

	factor := 1.0
	if c.cfg.GateMode == GateMultiplier {
		factor = c.cfg.GateRange.Clamp(gate)
	}
	for _, bone := range order {
		d := devs[bone]
		var s mathutil.Vec3
		for a := 0; a < 3; a++ {
			if a == c.lengthAxis {
				s[a] = 1
				continue
			}
			s[a] = c.cfg.ScaleRange.Clamp((1 + d[a]) * factor)
		}
		bone.Scale = s
	}
	c.resetUntouched(groups, devs)
	for _, bone := range order {
		bone.UpdateWorldMatrix()
	}

	res.Applied = true
	res.BonesScaled = len(order)
	log.Debug("limb masses applied", "bones", res.BonesScaled, "mappings", res.Enabled, "derived", res.Derived)
	return res
}

func (c *Calculator) soften(dev float64, s Softening) float64 {
	if s == SoftenTanh {
		limit := c.cfg.TanhLimit
		if limit <= 0 {
			return 0
		}
		return limit * math.Tanh(dev/limit)
	}
	return c.cfg.LinearBlend * dev
}

func (c *Calculator) distribution(d Distribution, index int) float64 {
	if d != DistributionFalloff {
		return 1
	}
	return math.Max(c.cfg.FalloffFloor, 1-c.cfg.FalloffStep*float64(index))
}

// resetUntouched restores unit scale on grouped bones no enabled mapping
// reached, so a mapping switched off by its rule does not leave stale scale.
func (c *Calculator) resetUntouched(groups Groups, touched map[*scene.Node]mathutil.Vec3) {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, bone := range groups[name] {
			if _, ok := touched[bone]; ok || bone.Scale == mathutil.One {
				continue
			}
			bone.Scale = mathutil.One
			bone.UpdateWorldMatrix()
		}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func maxMagnitude(a, b mathutil.Vec3) mathutil.Vec3 {
	for i := range a {
		if math.Abs(b[i]) > math.Abs(a[i]) {
			a[i] = b[i]
		}
	}
	return a
}
