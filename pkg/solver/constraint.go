package solver

import (
	"fmt"
	"slices"
)

// Constraint is a relationship over a fixed ordered list of variables that
// can re-derive variables when one of them changes. Concrete kinds live in
// the constraint package and embed [Base] for the shared bookkeeping.
type Constraint interface {
	// Variables returns the constraint's variables in construction order.
	// The returned slice is a read-only view; callers must not modify it.
	Variables() []*Variable

	// Weakest returns the preferred variable to overwrite when a choice
	// exists: the least-recently-driven variable among those with the
	// lowest strength tier.
	Weakest() *Variable

	// MarkDirty records that v changed externally or during solving. If v
	// is the current weakest, it is demoted to the back of the rotation so
	// the next resolution picks a different equally-weak variable.
	MarkDirty(v *Variable)

	// SolveFor re-derives variables given that v drives this resolution
	// step. Which variables are read and which are written is defined per
	// kind. SolveFor must be idempotent when the constraint is already
	// satisfied: values within [Tolerance] are never rewritten.
	//
	// A non-nil error reports a recoverable numerical condition (such as a
	// root-finder failing to converge); the best available estimate has
	// already been applied. Passing a variable the constraint does not own
	// is a programmer error and panics.
	SolveFor(v *Variable) error
}

// Base carries the variable list and weakest-rotation bookkeeping shared by
// all constraint kinds. Embed it and wire the typed slots to entries of the
// same variable list.
type Base struct {
	vars    []*Variable
	weakest []*Variable // lowest-strength vars, least-recently-driven first
}

// NewBase creates the bookkeeping for a constraint over vars. The weakest
// rotation is computed once from the variables' strengths; strengths are
// fixed, so it never needs recomputing.
//
// Panics if vars is empty or contains a nil variable: every constraint has
// at least one variable.
func NewBase(vars ...*Variable) Base {
	if len(vars) == 0 {
		panic("solver: constraint requires at least one variable")
	}
	min := vars[0]
	for _, v := range vars {
		if v == nil {
			panic("solver: constraint variable is nil")
		}
		if v.strength < min.strength {
			min = v
		}
	}
	b := Base{vars: slices.Clone(vars)}
	for _, v := range b.vars {
		if v.strength == min.strength {
			b.weakest = append(b.weakest, v)
		}
	}
	return b
}

// Variables returns the constraint's variables in construction order.
// The returned slice is a read-only view.
func (b *Base) Variables() []*Variable { return b.vars }

// Weakest returns the front of the weakest rotation.
func (b *Base) Weakest() *Variable { return b.weakest[0] }

// MarkDirty demotes v to the back of the weakest rotation if it is currently
// at the front. Rotating spreads "which variable gets overwritten" fairly
// across equally-weak candidates instead of always picking the same one.
func (b *Base) MarkDirty(v *Variable) {
	if v == b.weakest[0] {
		b.weakest = append(b.weakest[1:], v)
	}
}

// Owns reports whether v is one of the constraint's variables. Comparison is
// by reference: two distinct variables with equal values are not the same
// variable.
func (b *Base) Owns(v *Variable) bool {
	return slices.Contains(b.vars, v)
}

// MustOwn panics if v is not one of the constraint's variables. Constraint
// kinds call it at the top of SolveFor: being handed a foreign variable is a
// programmer error, not a runtime condition to recover from.
func (b *Base) MustOwn(v *Variable) {
	if !b.Owns(v) {
		panic(fmt.Sprintf("solver: constraint does not own variable %s", v))
	}
}
