package constraint

import "github.com/matzehuels/tenon/pkg/solver"

// Equals keeps two variables at the same value.
type Equals struct {
	solver.Base
	a, b *solver.Variable
}

// NewEquals creates an equality constraint between a and b.
func NewEquals(a, b *solver.Variable) *Equals {
	return &Equals{Base: solver.NewBase(a, b), a: a, b: b}
}

// SolveFor assigns the other side's value to v. Passing the weakest variable
// therefore pulls it onto its stronger partner. No write happens when the two
// values already agree within tolerance.
func (c *Equals) SolveFor(v *solver.Variable) error {
	c.MustOwn(v)

	if solver.WithinTolerance(c.a.Value(), c.b.Value()) {
		return nil
	}
	if v == c.a {
		c.a.SetValue(c.b.Value())
	} else {
		c.b.SetValue(c.a.Value())
	}
	return nil
}

var _ solver.Constraint = (*Equals)(nil)
