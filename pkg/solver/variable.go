package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Tolerance is the absolute difference below which two scalar values are
// considered equal. All constraints compare against it before writing a
// variable, so repeated floating-point solving converges instead of
// oscillating.
const Tolerance = 1e-6

// WithinTolerance reports whether a and b differ by less than [Tolerance].
func WithinTolerance(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}

// ErrUnknownStrength is returned by [ParseStrength] when the name does not
// match any strength tier.
var ErrUnknownStrength = errors.New("unknown strength")

// Strength is the ordinal priority of a variable. Lower tiers yield first
// when constraints conflict; Required never yields while an alternative
// exists. The numeric gaps leave room for intermediate tiers without
// renumbering.
type Strength int

// Strength tiers, most flexible first.
const (
	VeryWeak   Strength = 0
	Weak       Strength = 10
	Normal     Strength = 20
	Strong     Strength = 30
	VeryStrong Strength = 40
	Required   Strength = 100
)

// String returns the lowercase tier name, or the numeric value for
// non-standard tiers.
func (s Strength) String() string {
	switch s {
	case VeryWeak:
		return "veryweak"
	case Weak:
		return "weak"
	case Normal:
		return "normal"
	case Strong:
		return "strong"
	case VeryStrong:
		return "verystrong"
	case Required:
		return "required"
	}
	return fmt.Sprintf("strength(%d)", int(s))
}

// ParseStrength converts a tier name (case-insensitive) to a Strength.
// Returns ErrUnknownStrength for unrecognized names.
func ParseStrength(name string) (Strength, error) {
	switch strings.ToLower(name) {
	case "veryweak", "very_weak":
		return VeryWeak, nil
	case "weak":
		return Weak, nil
	case "normal", "":
		return Normal, nil
	case "strong":
		return Strong, nil
	case "verystrong", "very_strong":
		return VeryStrong, nil
	case "required":
		return Required, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrength, name)
}

// Variable is a mutable scalar with a fixed strength tier. It is the unit the
// solver reasons about. A variable is shared by reference between every
// constraint that mentions it, so a write made while solving one constraint
// is observed by all others.
//
// The zero value is not usable - use NewVariable.
type Variable struct {
	value    float64
	strength Strength
	dirty    bool
}

// NewVariable creates a variable with an initial value and strength.
// Strength is fixed for the variable's lifetime.
func NewVariable(value float64, strength Strength) *Variable {
	return &Variable{value: value, strength: strength}
}

// Value returns the current value.
func (v *Variable) Value() float64 { return v.value }

// SetValue assigns a new value and flags the variable dirty. This is the
// single mutation point for variable values: both external callers and
// constraints go through it. External callers must follow up with
// [Solver.RequestResolve] to schedule re-resolution.
func (v *Variable) SetValue(value float64) {
	v.value = value
	v.dirty = true
}

// Strength returns the variable's strength tier.
func (v *Variable) Strength() Strength { return v.strength }

// Dirty reports whether the value changed since the variable was last
// settled by a resolve pass.
func (v *Variable) Dirty() bool { return v.dirty }

// String returns a compact representation, e.g. "Variable(10, normal)".
func (v *Variable) String() string {
	return fmt.Sprintf("Variable(%g, %s)", v.value, v.strength)
}
