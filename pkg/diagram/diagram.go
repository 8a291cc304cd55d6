package diagram

import (
	"github.com/matzehuels/tenon/pkg/constraint"
	"github.com/matzehuels/tenon/pkg/errors"
	"github.com/matzehuels/tenon/pkg/solver"
)

// BoundConstraint pairs a constraint with the declaration it came from,
// so exporters and inspectors can label it.
type BoundConstraint struct {
	Def        ConstraintDef
	Constraint solver.Constraint
}

// Diagram is a live constraint system built from a Definition.
type Diagram struct {
	def    *Definition
	solver *solver.Solver
	vars   map[string]*solver.Variable
	order  []string
	cons   []BoundConstraint
}

// Build validates a definition and wires it into a live diagram.
// All variables start dirty, so the first Resolve establishes the
// initial fixed point.
func Build(def *Definition) (*Diagram, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	d := &Diagram{
		def:    def,
		solver: solver.New(),
		vars:   make(map[string]*solver.Variable, len(def.Variables)),
		order:  make([]string, 0, len(def.Variables)),
	}

	for _, vd := range def.Variables {
		strength, err := solver.ParseStrength(vd.Strength)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidStrength, err, "variable %q", vd.Name)
		}
		v := solver.NewVariable(vd.Value, strength)
		d.vars[vd.Name] = v
		d.order = append(d.order, vd.Name)
	}

	for _, cd := range def.Constraints {
		con := d.bind(cd)
		d.solver.AddConstraint(con)
		d.cons = append(d.cons, BoundConstraint{Def: cd, Constraint: con})
	}

	for _, name := range d.order {
		d.solver.RequestResolve(d.vars[name])
	}
	return d, nil
}

// bind creates the concrete constraint for a validated declaration.
func (d *Diagram) bind(cd ConstraintDef) solver.Constraint {
	switch cd.Kind {
	case KindEquals:
		return constraint.NewEquals(d.vars[cd.A], d.vars[cd.B])
	case KindCenter:
		return constraint.NewCenter(d.vars[cd.A], d.vars[cd.B], d.vars[cd.Center])
	case KindLessThan:
		return constraint.NewLessThan(d.vars[cd.Smaller], d.vars[cd.Bigger], cd.Delta)
	case KindBalance:
		if cd.Ratio != nil {
			return constraint.NewBalanceRatio(d.vars[cd.B1], d.vars[cd.B2], d.vars[cd.V], *cd.Ratio)
		}
		return constraint.NewBalance(d.vars[cd.B1], d.vars[cd.B2], d.vars[cd.V])
	case KindLine:
		return constraint.NewLine(
			constraint.Point{X: d.vars[cd.Start[0]], Y: d.vars[cd.Start[1]]},
			constraint.Point{X: d.vars[cd.End[0]], Y: d.vars[cd.End[1]]},
			constraint.Point{X: d.vars[cd.Point[0]], Y: d.vars[cd.Point[1]]},
		)
	}
	// Validate rejects every other kind before bind runs.
	panic("diagram: unbindable constraint kind " + cd.Kind)
}

// Definition returns the declaration this diagram was built from.
func (d *Diagram) Definition() *Definition { return d.def }

// Solver returns the underlying engine.
func (d *Diagram) Solver() *solver.Solver { return d.solver }

// Constraints returns the bound constraints in declaration order.
func (d *Diagram) Constraints() []BoundConstraint { return d.cons }

// VariableNames returns variable names in declaration order.
func (d *Diagram) VariableNames() []string { return d.order }

// Variable looks up a variable by name.
func (d *Diagram) Variable(name string) (*solver.Variable, error) {
	v, ok := d.vars[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidVariable, "unknown variable: %q", name)
	}
	return v, nil
}

// SetValue pins a variable to a value and schedules it for resolution.
func (d *Diagram) SetValue(name string, value float64) error {
	v, err := d.Variable(name)
	if err != nil {
		return err
	}
	v.SetValue(value)
	d.solver.RequestResolve(v)
	return nil
}

// AddEquation attaches a functional constraint. args maps the function's
// argument names to diagram variable names. Equations cannot be expressed
// in manifests, so they are not reflected in Definition().
func (d *Diagram) AddEquation(f constraint.Func, args map[string]string) error {
	bound := make(map[string]*solver.Variable, len(args))
	for arg, name := range args {
		v, err := d.Variable(name)
		if err != nil {
			return err
		}
		bound[arg] = v
	}

	eq := constraint.NewEquation(f, bound)
	d.solver.AddConstraint(eq)
	d.cons = append(d.cons, BoundConstraint{
		Def:        ConstraintDef{Kind: KindEquation},
		Constraint: eq,
	})
	for _, v := range bound {
		d.solver.RequestResolve(v)
	}
	return nil
}

// Resolve runs the engine to a fixed point.
func (d *Diagram) Resolve() error {
	if err := d.solver.Solve(); err != nil {
		return errors.Wrap(errors.ErrCodeNonConvergence, err, "diagram %q did not fully converge", d.def.Name)
	}
	return nil
}

// Snapshot returns the current value of every variable by name.
func (d *Diagram) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(d.order))
	for name, v := range d.vars {
		out[name] = v.Value()
	}
	return out
}
