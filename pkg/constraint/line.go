package constraint

import "github.com/matzehuels/tenon/pkg/solver"

// Point is a pair of variables forming a 2D position.
type Point struct {
	X, Y *solver.Variable
}

// Line keeps a point at a fixed fractional position along a segment. The
// per-axis ratios are captured once and held fixed; when the endpoints move,
// the point rides the segment proportionally instead of snapping to absolute
// coordinates.
type Line struct {
	solver.Base
	start, end, point Point
	ratioX, ratioY    float64
}

// NewLine creates a line constraint keeping point on the segment from start
// to end. The ratios are captured from the current positions, as if by
// UpdateRatio.
func NewLine(start, end, point Point) *Line {
	c := &Line{
		Base:  solver.NewBase(start.X, start.Y, end.X, end.Y, point.X, point.Y),
		start: start,
		end:   end,
		point: point,
	}
	c.UpdateRatio()
	return c
}

// Ratio returns the captured per-axis ratios.
func (c *Line) Ratio() (x, y float64) { return c.ratioX, c.ratioY }

// UpdateRatio recaptures the fractional position of the point along the
// segment, per axis: (point-start)/(end-start). A zero-length axis is
// degenerate geometry and yields a ratio of 0 for that axis.
func (c *Line) UpdateRatio() {
	c.ratioX = axisRatio(c.start.X.Value(), c.end.X.Value(), c.point.X.Value())
	c.ratioY = axisRatio(c.start.Y.Value(), c.end.Y.Value(), c.point.Y.Value())
}

func axisRatio(start, end, pos float64) float64 {
	if end == start {
		return 0
	}
	return (pos - start) / (end - start)
}

// SolveFor recomputes the point from the current endpoints and the captured
// ratios. The passed variable is ignored: the point is always the side that
// follows the segment. Coordinates already in place within tolerance are not
// rewritten.
func (c *Line) SolveFor(v *solver.Variable) error {
	c.MustOwn(v)

	x := c.start.X.Value() + (c.end.X.Value()-c.start.X.Value())*c.ratioX
	y := c.start.Y.Value() + (c.end.Y.Value()-c.start.Y.Value())*c.ratioY

	if !solver.WithinTolerance(c.point.X.Value(), x) {
		c.point.X.SetValue(x)
	}
	if !solver.WithinTolerance(c.point.Y.Value(), y) {
		c.point.Y.SetValue(y)
	}
	return nil
}

var _ solver.Constraint = (*Line)(nil)
