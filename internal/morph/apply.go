package morph

import (
	"errors"
	"fmt"
	"math"

	"avatar-morph/internal/logging"
	"avatar-morph/internal/scene"
)

// ErrNoMorphTargets is returned when the target node carries no blend shapes.
var ErrNoMorphTargets = errors.New("morph: node has no morph targets")

// ApplyStats aggregates per-key outcomes of one Apply call.
type ApplyStats struct {
	Applied        int
	Clamped        int
	SkippedUnknown int
	SkippedInvalid int
	Banned         int
	Changed        bool
}

// Add accumulates another call's counters.
func (s *ApplyStats) Add(o ApplyStats) {
	s.Applied += o.Applied
	s.Clamped += o.Clamped
	s.SkippedUnknown += o.SkippedUnknown
	s.SkippedInvalid += o.SkippedInvalid
	s.Banned += o.Banned
	s.Changed = s.Changed || o.Changed
}

// MergeParams canonicalizes shape then face params into one map. Raw keys are
// visited in sorted order and face params win on canonical collision.
// Keys that do not normalize are returned separately.
func MergeParams(shape, face map[string]float64) (map[string]float64, []string) {
	merged := make(map[string]float64, len(shape)+len(face))
	var rejected []string
	for _, src := range []map[string]float64{shape, face} {
		for _, raw := range sortedKeys(src) {
			key := Canonicalize(raw)
			if key == "" {
				rejected = append(rejected, raw)
				continue
			}
			merged[key] = src[raw]
		}
	}
	return merged, rejected
}

// Apply writes validated shape and face values into the blend-shape
// influences of node's mesh. Per-key failures are counted, never returned.
// Re-applying identical input leaves identical state.
func Apply(node *scene.Node, shape map[string]float64, g Gender, v *Validator, face map[string]float64) (ApplyStats, error) {
	var stats ApplyStats
	if !v.Ready() {
		return stats, ErrMappingNotReady
	}
	if node == nil || !node.Mesh.HasMorphTargets() {
		return stats, ErrNoMorphTargets
	}
	mesh := node.Mesh
	log := logging.Logger().With("mesh", node.Name, "gender", string(g))

	channels := channelIndex(mesh)
	merged, rejected := MergeParams(shape, face)
	stats.SkippedUnknown += len(rejected)
	for _, raw := range rejected {
		log.Debug("morph key does not normalize", "key", raw)
	}

	for _, key := range sortedKeys(merged) {
		value := merged[key]

		res := v.Validate(key, value, g)
		if !res.Known {
			stats.SkippedUnknown++
			log.Debug("morph key not in mapping", "key", key)
			continue
		}
		idx, ok := channels[key]
		if !ok || idx < 0 || idx >= len(mesh.MorphInfluences) {
			stats.SkippedUnknown++
			log.Debug("morph key has no channel on mesh", "key", key)
			continue
		}

		var target float64
		switch {
		case res.Range.Banned():
			target = 0
			stats.Banned++
		case math.IsNaN(value) || math.IsInf(value, 0):
			stats.SkippedInvalid++
			log.Debug("morph value not finite", "key", key)
			continue
		default:
			target = res.ClampedValue
			if res.OutOfRange {
				stats.Clamped++
				log.Debug("morph value clamped", "key", key, "value", value, "clamped", target)
			}
			stats.Applied++
		}

		if mesh.MorphInfluences[idx] != target {
			mesh.MorphInfluences[idx] = target
			stats.Changed = true
		}
	}

	if stats.Changed {
		mesh.GeometryNeedsUpdate = true
		for _, m := range mesh.Materials {
			if m != nil {
				m.Base().NeedsUpdate = true
			}
		}
		node.Visible = true
	}

	log.Debug("morph apply",
		"applied", stats.Applied,
		"clamped", stats.Clamped,
		"unknown", stats.SkippedUnknown,
		"invalid", stats.SkippedInvalid,
		"banned", stats.Banned)
	return stats, nil
}

// channelIndex maps canonical keys to morph channels. A dictionary name that
// already is the canonical key wins over any spelling that normalizes to it;
// otherwise the first name in sorted order wins.
func channelIndex(mesh *scene.Mesh) map[string]int {
	out := make(map[string]int, len(mesh.MorphDictionary))
	for _, name := range sortedKeys(mesh.MorphDictionary) {
		key := Canonicalize(name)
		if key == "" {
			continue
		}
		if _, taken := out[key]; taken && key != name {
			continue
		}
		out[key] = mesh.MorphDictionary[name]
	}
	return out
}

// String renders stats for CLI summaries.
func (s ApplyStats) String() string {
	return fmt.Sprintf("applied=%d clamped=%d unknown=%d invalid=%d banned=%d changed=%v",
		s.Applied, s.Clamped, s.SkippedUnknown, s.SkippedInvalid, s.Banned, s.Changed)
}
