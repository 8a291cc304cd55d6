package constraint

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/tenon/pkg/solver"
)

// iterLimit caps the secant iteration. Exceeding it is a recoverable
// condition: the best estimate found so far is used.
const iterLimit = 1000

// closeRuns is the number of extra refinement passes allowed once the
// function value is within tolerance of zero. Not stopping on the first
// sufficiently-close value damps oscillation near shallow roots.
const closeRuns = 10

// ErrNotConverged is returned by [Equation.SolveFor] when the secant
// iteration exceeds its cap or degenerates to a zero slope away from a root.
// The best available estimate has already been written; callers may log the
// diagnostic and continue.
var ErrNotConverged = errors.New("equation did not converge")

// Func evaluates the equation's left-hand side for a set of named argument
// values. The constraint drives it toward zero.
type Func func(args map[string]float64) float64

// Equation is a generic constraint of the form f(args) = 0. Each argument
// name is bound to a variable; solving for a variable finds the value of its
// argument that zeroes f while all other arguments stay fixed.
//
// The root is found by secant-style Newton iteration: the derivative is
// approximated from the two most recent trial points rather than computed
// symbolically, so f can be any black-box function of its arguments.
type Equation struct {
	solver.Base
	f     Func
	names []string // sorted, aligned with Variables() order
	args  map[string]*solver.Variable
}

// NewEquation creates an equation constraint binding each argument name to a
// variable. Panics if args is empty or contains a nil variable.
func NewEquation(f Func, args map[string]*solver.Variable) *Equation {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	slices.Sort(names)

	vars := make([]*solver.Variable, len(names))
	for i, name := range names {
		vars[i] = args[name]
	}

	bound := make(map[string]*solver.Variable, len(args))
	for name, v := range args {
		bound[name] = v
	}

	return &Equation{
		Base:  solver.NewBase(vars...),
		f:     f,
		names: names,
		args:  bound,
	}
}

// Arg returns the variable bound to the given argument name, or nil if the
// name is not bound.
func (c *Equation) Arg(name string) *solver.Variable { return c.args[name] }

// SolveFor treats v's argument as the unknown and finds the value that
// zeroes f with all other arguments held at their current values. The result
// is written back only if it differs from the current value beyond
// tolerance.
//
// Returns an error wrapping [ErrNotConverged] when the iteration cap is
// exceeded or the secant slope degenerates away from a root; the best
// estimate found is still applied.
func (c *Equation) SolveFor(v *solver.Variable) error {
	c.MustOwn(v)

	unknown := ""
	values := make(map[string]float64, len(c.args))
	for name, av := range c.args {
		values[name] = av.Value()
		if av == v {
			unknown = name
		}
	}

	x, err := c.findRoot(unknown, values)
	if !solver.WithinTolerance(v.Value(), x) {
		v.SetValue(x)
	}
	return err
}

// findRoot runs the secant iteration for the named unknown. values is used
// as scratch space for evaluations and holds every other argument fixed.
func (c *Equation) findRoot(unknown string, values map[string]float64) (float64, error) {
	f := func(x float64) float64 {
		values[unknown] = x
		return c.f(values)
	}

	// Seed from the current value; an unset (zero) argument seeds at 1 so
	// the two trial points are distinct.
	x0 := values[unknown]
	if x0 == 0 {
		x0 = 1
	}
	x1 := x0 * 1.1

	fx0 := f(x0)
	runs := closeRuns
	for n := 0; ; n++ {
		fx1 := f(x1)
		if fx1 == 0 || x1 == x0 {
			// Nailed it exactly.
			return x1, nil
		}
		if math.Abs(fx1) < solver.Tolerance {
			if runs == 0 {
				return x1, nil
			}
			runs--
		}
		if n >= iterLimit {
			return x1, fmt.Errorf("%w: exceeded %d iterations solving for %q", ErrNotConverged, iterLimit, unknown)
		}

		slope := (fx1 - fx0) / (x1 - x0)
		if slope == 0 {
			if math.Abs(fx1) < solver.Tolerance {
				// Zero slope but close enough to the root.
				return x1, nil
			}
			return x1, fmt.Errorf("%w: zero slope away from root solving for %q", ErrNotConverged, unknown)
		}

		x2 := x1 - fx1/slope
		x0, fx0 = x1, fx1
		x1 = x2
	}
}

var _ solver.Constraint = (*Equation)(nil)
