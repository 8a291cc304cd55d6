package constraint

import "github.com/matzehuels/tenon/pkg/solver"

// Center keeps a variable midway between two others.
type Center struct {
	solver.Base
	a, b, center *solver.Variable
}

// NewCenter creates a constraint holding center at (a+b)/2.
func NewCenter(a, b, center *solver.Variable) *Center {
	return &Center{Base: solver.NewBase(a, b, center), a: a, b: b, center: center}
}

// SolveFor recomputes center from the current endpoints whenever it is out of
// tolerance, regardless of which of the three variables is passed.
func (c *Center) SolveFor(v *solver.Variable) error {
	c.MustOwn(v)

	mid := (c.a.Value() + c.b.Value()) / 2
	if !solver.WithinTolerance(c.center.Value(), mid) {
		c.center.SetValue(mid)
	}
	return nil
}

var _ solver.Constraint = (*Center)(nil)
