// Package solver implements an incremental constraint solver for diagram
// geometry.
//
// The solver maintains a network of algebraic relationships (constraints) over
// shared scalar variables. When a variable changes, the solver re-derives the
// dependent variables, cascading through the network until every constraint is
// satisfied again (a fixed point) within a small numerical tolerance.
//
// # Architecture
//
// The package provides three building blocks:
//
//   - Variable: a mutable scalar with a fixed strength tier. Variables are
//     shared by reference between every constraint that mentions them.
//   - Constraint: a relationship over a fixed ordered list of variables that
//     can re-derive one variable from the others. Concrete kinds live in the
//     constraint package; they embed Base for the bookkeeping.
//   - Solver: owns the set of registered constraints, indexes which
//     constraints touch which variable, tracks dirty variables, and drives
//     the resolve loop.
//
// # Strength and tie-breaking
//
// Every variable carries a strength tier (VeryWeak up to Required). When a
// constraint must pick a variable to overwrite, it picks among its weakest
// variables, rotating fairly between equally-weak candidates (see
// [Base.MarkDirty]). A Required variable is never overwritten while an
// alternative exists; two Required variables in conflict are left unresolved.
//
// # Usage
//
//	a := solver.NewVariable(1, solver.Normal)
//	b := solver.NewVariable(2, solver.Weak)
//
//	s := solver.New()
//	s.AddConstraint(constraint.NewEquals(a, b))
//
//	a.SetValue(10)
//	s.RequestResolve(a)
//	_ = s.Solve() // b is now 10
//
// The solver is deterministic, synchronous, and not safe for concurrent use.
// External callers mutate variables directly and are responsible for calling
// RequestResolve afterwards; the solver does not observe mutations itself.
package solver
