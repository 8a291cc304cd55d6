// Package constraint provides the concrete constraint kinds understood by the
// solver.
//
// Each kind is a relationship over shared [solver.Variable] values:
//
//   - Equals: two variables hold the same value
//   - Center: a variable sits midway between two others
//   - LessThan: one variable stays below another, with an optional gap
//   - Balance: a variable keeps a fixed fractional position inside a band
//   - Line: a point keeps a fixed fractional position along a segment
//   - Equation: a generic f(args) = 0 solved by secant iteration
//
// All kinds embed [solver.Base] and satisfy [solver.Constraint]. SolveFor
// semantics differ per kind and are documented on each type; every kind gates
// its writes on [solver.WithinTolerance], so re-resolving an already-satisfied
// constraint performs no writes and triggers no further dirty cascades.
//
// Balance and Line are ratio-preserving: the fractional position is captured
// once (at construction, or explicitly via UpdateBalance/UpdateRatio) and
// reapplied when the reference geometry moves, so the dependent value "rides"
// the moving band or segment proportionally instead of snapping to absolute
// coordinates.
package constraint
