package constraint

import "github.com/matzehuels/tenon/pkg/solver"

// LessThan keeps one variable at least delta below another. The variable
// passed to SolveFor is the one that moved most recently and is preserved;
// the other side is pushed or pulled to restore the gap.
type LessThan struct {
	solver.Base
	smaller, bigger *solver.Variable
	delta           float64
}

// NewLessThan creates a constraint enforcing smaller <= bigger - delta.
// A delta of zero enforces plain ordering.
func NewLessThan(smaller, bigger *solver.Variable, delta float64) *LessThan {
	return &LessThan{
		Base:    solver.NewBase(smaller, bigger),
		smaller: smaller,
		bigger:  bigger,
		delta:   delta,
	}
}

// Delta returns the minimum gap between the two variables.
func (c *LessThan) Delta() float64 { return c.delta }

// SolveFor restores the gap when violated: with v the smaller side, bigger is
// pushed up to smaller+delta; with v the bigger side, smaller is pulled down
// to bigger-delta. Satisfied constraints are left untouched.
func (c *LessThan) SolveFor(v *solver.Variable) error {
	c.MustOwn(v)

	if c.smaller.Value() <= c.bigger.Value()-c.delta+solver.Tolerance {
		return nil
	}
	if v == c.smaller {
		c.bigger.SetValue(c.smaller.Value() + c.delta)
	} else {
		c.smaller.SetValue(c.bigger.Value() - c.delta)
	}
	return nil
}

var _ solver.Constraint = (*LessThan)(nil)
