package constraint

import "github.com/matzehuels/tenon/pkg/solver"

// Balance keeps a variable at a fixed fractional position inside a band
// spanned by two other variables. The fraction (the balance ratio) is
// captured once and held fixed; when the band moves or stretches, the
// dependent variable rides along proportionally.
//
// The band endpoints do not need to be ordered: b1 > b2 is allowed.
type Balance struct {
	solver.Base
	b1, b2, v *solver.Variable
	balance   float64
}

// NewBalance creates a balance constraint for v inside the band (b1, b2).
// The ratio is captured from the current positions, as if by UpdateBalance.
func NewBalance(b1, b2, v *solver.Variable) *Balance {
	c := &Balance{Base: solver.NewBase(b1, b2, v), b1: b1, b2: b2, v: v}
	c.UpdateBalance()
	return c
}

// NewBalanceRatio creates a balance constraint with an explicitly supplied
// ratio instead of capturing it from the current positions.
func NewBalanceRatio(b1, b2, v *solver.Variable, balance float64) *Balance {
	return &Balance{Base: solver.NewBase(b1, b2, v), b1: b1, b2: b2, v: v, balance: balance}
}

// Balance returns the current ratio. SolveFor never changes it; only
// UpdateBalance (or the constructor) does.
func (c *Balance) Balance() float64 { return c.balance }

// UpdateBalance recaptures the ratio from the current positions:
// (v-b1)/(b2-b1). A zero-width band is degenerate geometry and yields a
// ratio of 0 rather than an error.
func (c *Balance) UpdateBalance() {
	w := c.b2.Value() - c.b1.Value()
	if w == 0 {
		c.balance = 0
		return
	}
	c.balance = (c.v.Value() - c.b1.Value()) / w
}

// SolveFor writes the balanced position b1 + (b2-b1)*balance to v, the
// variable passed in. No write happens when v already sits there within
// tolerance.
func (c *Balance) SolveFor(v *solver.Variable) error {
	c.MustOwn(v)

	value := c.b1.Value() + (c.b2.Value()-c.b1.Value())*c.balance
	if !solver.WithinTolerance(v.Value(), value) {
		v.SetValue(value)
	}
	return nil
}

var _ solver.Constraint = (*Balance)(nil)
