package morph

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Gender selects one half of the morphology table.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Namespace identifies which table section a key was found in.
type Namespace string

const (
	NamespaceNone     Namespace = ""
	NamespaceBody     Namespace = "body"
	NamespaceFace     Namespace = "face"
	NamespaceLimbMass Namespace = "limbMass"
)

// Range is the inclusive validity interval of one channel.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Banned reports whether the range marks a channel the gender must not use.
func (r Range) Banned() bool {
	return r.Min == 0 && r.Max == 0
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// GenderTable holds the ranges of one gender across three disjoint namespaces.
type GenderTable struct {
	Body       map[string]Range    `json:"body"`
	Face       map[string]Range    `json:"face"`
	LimbMass   map[string]Range    `json:"limbMass"`
	Categories map[string][]string `json:"categories,omitempty"`
}

// Lookup finds key in the body, face and limb-mass namespaces.
func (t *GenderTable) Lookup(key string) (Range, Namespace, bool) {
	if t == nil {
		return Range{}, NamespaceNone, false
	}
	if r, ok := t.Body[key]; ok {
		return r, NamespaceBody, true
	}
	if r, ok := t.Face[key]; ok {
		return r, NamespaceFace, true
	}
	if r, ok := t.LimbMass[key]; ok {
		return r, NamespaceLimbMass, true
	}
	return Range{}, NamespaceNone, false
}

// Mapping is the per-gender morphology table served by the backend.
type Mapping struct {
	Male   *GenderTable `json:"male"`
	Female *GenderTable `json:"female"`
}

// Ready reports whether both genders are present. An incomplete mapping
// rejects every query.
func (m *Mapping) Ready() bool {
	return m != nil && m.Male != nil && m.Female != nil
}

// Table returns the table for g, or nil.
func (m *Mapping) Table(g Gender) *GenderTable {
	if m == nil {
		return nil
	}
	switch g {
	case Male:
		return m.Male
	case Female:
		return m.Female
	default:
		return nil
	}
}

// ParseMapping decodes a mapping document and checks its invariants: every
// range has min <= max and no key appears in more than one namespace.
// Keys are canonicalized on the way in.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("morph: parse mapping: %w", err)
	}
	for _, g := range []Gender{Male, Female} {
		t := m.Table(g)
		if t == nil {
			continue
		}
		if err := t.normalize(); err != nil {
			return nil, fmt.Errorf("morph: %s table: %w", g, err)
		}
	}
	return &m, nil
}

func (t *GenderTable) normalize() error {
	seen := make(map[string]Namespace)
	sections := []struct {
		ns    Namespace
		table *map[string]Range
	}{
		{NamespaceBody, &t.Body},
		{NamespaceFace, &t.Face},
		{NamespaceLimbMass, &t.LimbMass},
	}
	for _, sec := range sections {
		src := *sec.table
		out := make(map[string]Range, len(src))
		for _, raw := range sortedKeys(src) {
			r := src[raw]
			key := Canonicalize(raw)
			if key == "" {
				return fmt.Errorf("%s key %q does not normalize", sec.ns, raw)
			}
			if r.Min > r.Max || math.IsNaN(r.Min) || math.IsNaN(r.Max) {
				return fmt.Errorf("%s key %q: invalid range [%v, %v]", sec.ns, raw, r.Min, r.Max)
			}
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("key %q appears in both %s and %s", key, prev, sec.ns)
			}
			seen[key] = sec.ns
			out[key] = r
		}
		*sec.table = out
	}
	return nil
}

// Keys returns every key in the table, sorted.
func (t *GenderTable) Keys() []string {
	var out []string
	for _, m := range []map[string]Range{t.Body, t.Face, t.LimbMass} {
		for k := range m {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Category returns the keys listed under a descriptive category, matched
// case-insensitively.
func (t *GenderTable) Category(name string) []string {
	for k, v := range t.Categories {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
