// Package avatar is the top-level entry point: it decides which payload
// drives the avatar, normalizes gender and runs morphs, limb masses, tone
// resolution and material configuration in order.
package avatar

import (
	"fmt"
	"sort"

	"avatar-morph/internal/limbmass"
	"avatar-morph/internal/logging"
	"avatar-morph/internal/material"
	"avatar-morph/internal/morph"
	"avatar-morph/internal/scene"
	"avatar-morph/internal/skintone"
	"avatar-morph/internal/texgen"
)

// ErrNotReady is returned while the morphology mapping is missing. It wraps
// morph.ErrMappingNotReady.
var ErrNotReady = fmt.Errorf("avatar: %w", morph.ErrMappingNotReady)

// Strategy names which payload drove an avatar.
type Strategy string

const (
	StrategyOverride Strategy = "override"
	StrategySaved    Strategy = "saved"
	StrategyLive     Strategy = "live"
	StrategyNone     Strategy = "none"
)

// Input bundles every payload available for one avatar. Payloads are raw
// JSON; empty slices mean absent.
type Input struct {
	Saved    []byte
	Live     []byte
	Override []byte
	// Projection marks a read-only session whose Override payload wins.
	Projection bool
	// Tone is a tone handed in directly, outside any payload.
	Tone *skintone.Tone
}

// Options configures a Processor.
type Options struct {
	DefaultGender      morph.Gender
	ToneTolerance      int
	ProceduralTextures bool
}

// DefaultOptions falls back to female and the default tone tolerance.
func DefaultOptions() Options {
	return Options{
		DefaultGender:      morph.Female,
		ToneTolerance:      skintone.DefaultTolerance,
		ProceduralTextures: true,
	}
}

// Processor applies avatar payloads to rigs. The texture cache may be shared
// with other processors.
type Processor struct {
	validator *morph.Validator
	limbs     *limbmass.Calculator
	cache     *texgen.Cache
	opts      Options
}

// NewProcessor wires the collaborators. limbs and cache may be nil to skip
// limb masses and procedural textures.
func NewProcessor(v *morph.Validator, limbs *limbmass.Calculator, cache *texgen.Cache, opts Options) *Processor {
	if opts.DefaultGender == "" {
		opts.DefaultGender = morph.Female
	}
	return &Processor{validator: v, limbs: limbs, cache: cache, opts: opts}
}

// Outcome reports what Process did. It is meant for logging.
type Outcome struct {
	Strategy       Strategy
	Gender         morph.Gender
	GenderFallback bool
	Morph          map[string]morph.ApplyStats
	MorphTotal     morph.ApplyStats
	Limbs          limbmass.Result
	Tone           *skintone.Resolution
	Materials      *material.Result
	Skipped        []string
}

// SelectStrategy picks the driving payload: a projection override, then a
// saved payload with shape data, then a live payload.
func SelectStrategy(in Input, saved, live *Payload) Strategy {
	switch {
	case in.Projection && len(in.Override) > 0:
		return StrategyOverride
	case saved != nil && saved.HasShape():
		return StrategySaved
	case live != nil:
		return StrategyLive
	default:
		return StrategyNone
	}
}

// Process applies in to the rig under root. Only a missing mapping or a
// malformed driving payload is an error; per-item problems are reported in
// the outcome.
func (p *Processor) Process(root *scene.Node, in Input) (Outcome, error) {
	log := logging.Logger()
	if !p.validator.Ready() {
		return Outcome{}, ErrNotReady
	}

	saved, err := parseOptional(in.Saved, skintone.SourcePersisted)
	if err != nil {
		return Outcome{}, fmt.Errorf("avatar: saved payload: %w", err)
	}
	live, err := parseOptional(in.Live, skintone.SourceDirect)
	if err != nil {
		return Outcome{}, fmt.Errorf("avatar: live payload: %w", err)
	}
	var override *Payload
	if in.Projection {
		if override, err = parseOptional(in.Override, skintone.SourceOverride); err != nil {
			return Outcome{}, fmt.Errorf("avatar: override payload: %w", err)
		}
	}

	out := Outcome{Strategy: SelectStrategy(in, saved, live)}
	var driver *Payload
	switch out.Strategy {
	case StrategyOverride:
		driver = override
	case StrategySaved:
		driver = saved
	case StrategyLive:
		driver = live
	default:
		driver = &Payload{}
	}
	out.Skipped = driver.Skipped
	g, known := NormalizeGender(driver.Gender, p.opts.DefaultGender)
	out.Gender, out.GenderFallback = g, !known

	if out.Strategy != StrategyNone {
		out.Morph = make(map[string]morph.ApplyStats)
		for _, n := range root.Meshes() {
			if !n.Mesh.HasMorphTargets() {
				continue
			}
			stats, err := morph.Apply(n, driver.Shape, out.Gender, p.validator, driver.Face)
			if err != nil {
				log.Warn("morphs not applied", "node", n.Name, "err", err)
				continue
			}
			out.Morph[n.Name] = stats
			out.MorphTotal.Add(stats)
		}
		if p.limbs != nil {
			out.Limbs = p.limbs.ComputeAndApply(root, driver.LimbMasses, driver.Shape)
		}
	}

	if res, ok := skintone.Resolve(toneCandidates(in, override, saved, live), p.opts.ToneTolerance); ok {
		out.Tone = &res
		mr := material.Configure(root, res.Tone, material.Options{
			ProceduralTextures: p.opts.ProceduralTextures && p.cache != nil,
			Cache:              p.cache,
		})
		out.Materials = &mr
	}

	log.Info("avatar processed", "strategy", out.Strategy, "gender", out.Gender,
		"morphs", out.MorphTotal.String(), "limbs", out.Limbs.String(), "meshes", meshNames(out.Morph))
	return out, nil
}

func parseOptional(data []byte, src skintone.Source) (*Payload, error) {
	if len(data) == 0 {
		return nil, nil
	}
	p, err := ParsePayload(data, src)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// toneCandidates gathers tones from every payload; Resolve orders them.
func toneCandidates(in Input, payloads ...*Payload) []skintone.Tone {
	var out []skintone.Tone
	if in.Tone != nil {
		t := *in.Tone
		if t.Source == "" {
			t.Source = skintone.SourceDirect
		}
		out = append(out, t)
	}
	for _, p := range payloads {
		if p != nil {
			out = append(out, p.Tones...)
		}
	}
	return out
}

func meshNames(m map[string]morph.ApplyStats) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
