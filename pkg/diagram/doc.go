// Package diagram turns declarative manifests into live constraint systems.
//
// A manifest (TOML or JSON) declares named variables with strengths and
// the constraints between them. Build wires the declarations into a
// solver.Solver with concrete constraints from pkg/constraint, and the
// resulting Diagram supports pinning values, resolving, and snapshotting
// the solved state.
//
// Functional constraints (arbitrary equations) cannot be declared in a
// manifest; they are attached programmatically with Diagram.AddEquation.
package diagram
