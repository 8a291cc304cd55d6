package solver

import (
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/tenon/pkg/observability"
)

// Solver owns the set of registered constraints, indexes which constraints
// touch which variable, tracks dirty variables, and drives the resolve loop
// that converges the whole network after a perturbation.
//
// The zero value is not usable - use New. Solver is not safe for concurrent
// use; solving is a deterministic, synchronous pass with no suspension
// points.
type Solver struct {
	index map[*Variable]map[Constraint]struct{}
	dirty map[*Variable]struct{}
}

// New creates an empty solver.
func New() *Solver {
	return &Solver{
		index: make(map[*Variable]map[Constraint]struct{}),
		dirty: make(map[*Variable]struct{}),
	}
}

// AddConstraint registers c in the index under every variable it references.
// Registering the same constraint twice is a no-op.
func (s *Solver) AddConstraint(c Constraint) {
	for _, v := range c.Variables() {
		set, ok := s.index[v]
		if !ok {
			set = make(map[Constraint]struct{})
			s.index[v] = set
		}
		set[c] = struct{}{}
	}
}

// RemoveConstraint deregisters c from every variable's index entry, leaving
// no dangling rows. It is safe to call with a constraint that was never
// registered, or whose entries were already partially removed.
func (s *Solver) RemoveConstraint(c Constraint) {
	for _, v := range c.Variables() {
		set, ok := s.index[v]
		if !ok {
			continue
		}
		delete(set, c)
		if len(set) == 0 {
			delete(s.index, v)
		}
	}
}

// Constraints returns every registered constraint, deduplicated. The order
// is unspecified.
func (s *Solver) Constraints() []Constraint {
	seen := make(map[Constraint]struct{})
	var out []Constraint
	for _, set := range s.index {
		for c := range set {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// ConstraintsWithVariable returns every registered constraint that references
// v. Collaborators use it to answer "what still depends on this variable",
// e.g. when disconnecting diagram items. The order is unspecified.
func (s *Solver) ConstraintsWithVariable(v *Variable) []Constraint {
	set, ok := s.index[v]
	if !ok {
		return nil
	}
	out := make([]Constraint, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// RequestResolve schedules v for resolution in the next Solve pass. External
// callers invoke it after mutating a variable's value; the solver does not
// observe mutations itself.
func (s *Solver) RequestResolve(v *Variable) {
	v.dirty = true
	s.dirty[v] = struct{}{}
}

// Solve drives the dirty set to a fixed point: for each dirty variable, every
// constraint referencing it is re-resolved against its weakest variable, and
// any variable written as a result becomes dirty in turn. The pass ends when
// no variable remains dirty.
//
// Tie-breaking: before resolving, the constraint demotes the dirty variable
// in its weakest rotation (see [Base.MarkDirty]) so the changed value is
// preserved and another equally-weak variable gives way. A constraint whose
// weakest variable is Required has only Required variables and is skipped: a
// conflict between Required variables is left unresolved by design.
//
// The returned error aggregates recoverable numerical diagnostics (such as
// root-finder non-convergence); the pass always runs to completion and best
// estimates are applied. Convergence is expected for well-formed constraint
// graphs; pathological graphs with contradictory feedback may loop
// indefinitely, which is an accepted limitation.
func (s *Solver) Solve() error {
	hooks := observability.Solver()
	hooks.OnSolveStart(len(s.dirty))
	start := time.Now()

	steps := 0
	var diags []error
	for len(s.dirty) > 0 {
		v := s.popDirty()
		for _, c := range s.ConstraintsWithVariable(v) {
			c.MarkDirty(v)
			target := c.Weakest()
			if target.Strength() == Required {
				// Every variable in c is Required; none may give way.
				hooks.OnRequiredConflict(fmt.Sprintf("%T", c))
				continue
			}
			written, err := s.resolve(c, target)
			steps++
			if err != nil {
				hooks.OnConvergenceFailure(fmt.Sprintf("%T", c), err)
				diags = append(diags, err)
			}
			for _, w := range written {
				s.dirty[w] = struct{}{}
			}
		}
		v.dirty = false
	}

	err := errors.Join(diags...)
	hooks.OnSolveComplete(steps, time.Since(start), err)
	return err
}

// resolve invokes c.SolveFor(target) and reports which variables it wrote,
// detected by comparing values before and after. Constraints only write
// beyond tolerance, so every detected change is a real update that dependent
// constraints must see.
func (s *Solver) resolve(c Constraint, target *Variable) ([]*Variable, error) {
	vars := c.Variables()
	before := make([]float64, len(vars))
	for i, v := range vars {
		before[i] = v.value
	}

	err := c.SolveFor(target)

	var written []*Variable
	for i, v := range vars {
		if v.value != before[i] {
			written = append(written, v)
		}
	}
	return written, err
}

// popDirty removes and returns an arbitrary dirty variable. The order in
// which independent dirty variables are processed is unspecified and must
// not affect the final fixed point for well-formed graphs.
func (s *Solver) popDirty() *Variable {
	for v := range s.dirty {
		delete(s.dirty, v)
		return v
	}
	return nil
}
