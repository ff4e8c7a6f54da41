package skintone

import (
	"fmt"
	"sort"

	"avatar-morph/internal/logging"
)

// DefaultTolerance is the per-channel 8-bit difference above which two
// sources are reported as disagreeing.
const DefaultTolerance = 10

// Resolution is the outcome of Resolve.
type Resolution struct {
	Tone     Tone
	Source   Source
	Warnings []string
}

// Resolve picks the highest-priority structurally valid candidate. Valid
// candidates that differ from the winner by more than tolerance on any channel
// are logged and reported as warnings; they never change the result. ok is
// false when no candidate is valid.
func Resolve(candidates []Tone, tolerance int) (res Resolution, ok bool) {
	log := logging.Logger()
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}

	valid := make([]Tone, 0, len(candidates))
	for _, c := range candidates {
		if !c.Valid() {
			log.Debug("skin tone candidate rejected", "source", c.Source, "hex", c.Hex)
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return Resolution{}, false
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Source.Rank() < valid[j].Source.Rank()
	})

	winner := valid[0]
	res = Resolution{Tone: winner, Source: winner.Source}
	for _, other := range valid[1:] {
		if d := winner.MaxChannelDiff(other); d > tolerance {
			msg := fmt.Sprintf("skin tone %s disagrees with %s by %d/255", other, winner, d)
			res.Warnings = append(res.Warnings, msg)
			log.Warn("skin tone sources incoherent", "winner", winner.Source, "other", other.Source, "diff", d)
		}
	}
	return res, true
}
