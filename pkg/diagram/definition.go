package diagram

import (
	"github.com/matzehuels/tenon/pkg/errors"
	"github.com/matzehuels/tenon/pkg/solver"
)

// Constraint kinds accepted in manifests.
const (
	KindEquals   = "equals"
	KindCenter   = "center"
	KindLessThan = "lessthan"
	KindBalance  = "balance"
	KindLine     = "line"

	// KindEquation is only produced by Diagram.AddEquation; manifests
	// cannot carry arbitrary functions.
	KindEquation = "equation"
)

// Definition is the declarative form of a diagram.
type Definition struct {
	Name        string          `toml:"name" json:"name"`
	Variables   []VariableDef   `toml:"variable" json:"variables"`
	Constraints []ConstraintDef `toml:"constraint" json:"constraints"`
}

// VariableDef declares a named variable.
type VariableDef struct {
	Name     string  `toml:"name" json:"name"`
	Value    float64 `toml:"value" json:"value"`
	Strength string  `toml:"strength,omitempty" json:"strength,omitempty"`
}

// ConstraintDef declares one constraint. Kind selects which of the
// role fields apply:
//
//	equals:   a, b
//	center:   a, b, center
//	lessthan: smaller, bigger, delta (optional)
//	balance:  b1, b2, v, ratio (optional; captured from positions if omitted)
//	line:     start, end, point (each a [x, y] pair of variable names)
type ConstraintDef struct {
	Kind string `toml:"kind" json:"kind"`

	A      string `toml:"a,omitempty" json:"a,omitempty"`
	B      string `toml:"b,omitempty" json:"b,omitempty"`
	Center string `toml:"center,omitempty" json:"center,omitempty"`

	Smaller string  `toml:"smaller,omitempty" json:"smaller,omitempty"`
	Bigger  string  `toml:"bigger,omitempty" json:"bigger,omitempty"`
	Delta   float64 `toml:"delta,omitempty" json:"delta,omitempty"`

	B1    string   `toml:"b1,omitempty" json:"b1,omitempty"`
	B2    string   `toml:"b2,omitempty" json:"b2,omitempty"`
	V     string   `toml:"v,omitempty" json:"v,omitempty"`
	Ratio *float64 `toml:"ratio,omitempty" json:"ratio,omitempty"`

	Start []string `toml:"start,omitempty" json:"start,omitempty"`
	End   []string `toml:"end,omitempty" json:"end,omitempty"`
	Point []string `toml:"point,omitempty" json:"point,omitempty"`
}

// Validate checks a definition for structural problems: bad names,
// duplicate variables, unknown kinds, dangling references.
func (d *Definition) Validate() error {
	if d.Name != "" {
		if err := errors.ValidateDiagramName(d.Name); err != nil {
			return err
		}
	}
	if len(d.Variables) == 0 {
		return errors.New(errors.ErrCodeInvalidManifest, "manifest declares no variables")
	}

	seen := make(map[string]bool, len(d.Variables))
	for _, v := range d.Variables {
		if err := errors.ValidateVariableName(v.Name); err != nil {
			return err
		}
		if seen[v.Name] {
			return errors.New(errors.ErrCodeInvalidVariable, "duplicate variable: %q", v.Name)
		}
		seen[v.Name] = true
		if _, err := solver.ParseStrength(v.Strength); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidStrength, err, "variable %q", v.Name)
		}
	}

	for i, c := range d.Constraints {
		if err := c.validate(seen); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConstraint, err, "constraint %d (%s)", i, c.Kind)
		}
	}
	return nil
}

func (c *ConstraintDef) validate(vars map[string]bool) error {
	ref := func(role, name string) error {
		if name == "" {
			return errors.New(errors.ErrCodeInvalidConstraint, "missing %q variable", role)
		}
		if !vars[name] {
			return errors.New(errors.ErrCodeInvalidVariable, "unknown variable %q for %q", name, role)
		}
		return nil
	}
	pair := func(role string, names []string) error {
		if len(names) != 2 {
			return errors.New(errors.ErrCodeInvalidConstraint, "%q must name exactly two variables [x, y]", role)
		}
		if err := ref(role+".x", names[0]); err != nil {
			return err
		}
		return ref(role+".y", names[1])
	}

	switch c.Kind {
	case KindEquals:
		if err := ref("a", c.A); err != nil {
			return err
		}
		return ref("b", c.B)
	case KindCenter:
		if err := ref("a", c.A); err != nil {
			return err
		}
		if err := ref("b", c.B); err != nil {
			return err
		}
		return ref("center", c.Center)
	case KindLessThan:
		if err := ref("smaller", c.Smaller); err != nil {
			return err
		}
		return ref("bigger", c.Bigger)
	case KindBalance:
		if err := ref("b1", c.B1); err != nil {
			return err
		}
		if err := ref("b2", c.B2); err != nil {
			return err
		}
		return ref("v", c.V)
	case KindLine:
		if err := pair("start", c.Start); err != nil {
			return err
		}
		if err := pair("end", c.End); err != nil {
			return err
		}
		return pair("point", c.Point)
	case KindEquation:
		return errors.New(errors.ErrCodeUnsupported, "equation constraints cannot be declared in a manifest")
	default:
		return errors.New(errors.ErrCodeUnknownKind, "unknown constraint kind: %q", c.Kind)
	}
}
