package morph

import (
	"errors"
	"math"
)

// ErrMappingNotReady is returned by whole-call operations when the mapping is
// missing either gender. Any per-key decision would otherwise be unbounded.
var ErrMappingNotReady = errors.New("morph: morphology mapping not ready")

// Validation is the outcome of checking one value against its range.
// ClampedValue is always usable, even when IsValid is false.
type Validation struct {
	IsValid      bool
	ClampedValue float64
	OutOfRange   bool
	Namespace    Namespace
	Range        Range
	Known        bool
}

// Validator answers range queries against one mapping.
type Validator struct {
	mapping *Mapping
}

// NewValidator binds a validator to m. A nil or incomplete mapping yields a
// validator that rejects everything.
func NewValidator(m *Mapping) *Validator {
	return &Validator{mapping: m}
}

// Ready reports whether the underlying mapping covers both genders.
func (v *Validator) Ready() bool {
	return v != nil && v.mapping.Ready()
}

// Mapping returns the bound mapping.
func (v *Validator) Mapping() *Mapping {
	if v == nil {
		return nil
	}
	return v.mapping
}

// Lookup returns the range of a canonical key for g.
func (v *Validator) Lookup(key string, g Gender) (Range, Namespace, bool) {
	if !v.Ready() {
		return Range{}, NamespaceNone, false
	}
	return v.mapping.Table(g).Lookup(key)
}

// Validate checks value against the range of key for gender g.
func (v *Validator) Validate(key string, value float64, g Gender) Validation {
	r, ns, ok := v.Lookup(key, g)
	if !ok {
		return Validation{}
	}
	res := Validation{Namespace: ns, Range: r, Known: true}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		res.ClampedValue = r.Clamp(0)
		res.OutOfRange = true
		return res
	}
	res.ClampedValue = r.Clamp(value)
	res.IsValid = r.Contains(value)
	res.OutOfRange = !res.IsValid
	return res
}

// IsBanned reports whether key is banned for g (range [0,0]). Unknown keys and
// a missing mapping are not banned; they are rejected elsewhere.
func (v *Validator) IsBanned(key string, g Gender) bool {
	r, _, ok := v.Lookup(key, g)
	return ok && r.Banned()
}

// Validate is a convenience wrapper for one-off queries.
func Validate(key string, value float64, g Gender, m *Mapping) Validation {
	return NewValidator(m).Validate(key, value, g)
}

// IsBanned is a convenience wrapper for one-off queries.
func IsBanned(key string, g Gender, m *Mapping) bool {
	return NewValidator(m).IsBanned(key, g)
}
