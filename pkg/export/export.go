// Package export renders a diagram's constraint network for inspection.
//
// The network is drawn bipartite: variables as ellipses, constraints as
// boxes, with an edge for every variable a constraint touches. The edge
// to each constraint's current weakest variable is highlighted, which
// makes the engine's write targets visible at a glance.
package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/solver"
)

// Options configures constraint-network rendering.
type Options struct {
	// Detailed includes values and strengths in variable labels.
	// When false, only the variable name is shown.
	Detailed bool
}

// ToDOT converts a diagram's constraint network to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(d *diagram.Diagram, opts Options) string {
	names := make(map[*solver.Variable]string)
	for _, name := range d.VariableNames() {
		v, _ := d.Variable(name)
		names[v] = name
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14];\n")
	buf.WriteString("\n")

	for _, name := range d.VariableNames() {
		v, _ := d.Variable(name)
		fmt.Fprintf(&buf, "  %q [shape=ellipse, label=%q];\n", name, varLabel(name, v, opts.Detailed))
	}

	buf.WriteString("\n")
	for i, bc := range d.Constraints() {
		id := fmt.Sprintf("c%d", i)
		fmt.Fprintf(&buf, "  %q [shape=box, style=filled, fillcolor=lightgrey, label=%q];\n",
			id, conLabel(bc.Def))

		weakest := bc.Constraint.Weakest()
		for _, v := range bc.Constraint.Variables() {
			if v == weakest {
				fmt.Fprintf(&buf, "  %q -- %q [color=red, penwidth=2];\n", id, names[v])
			} else {
				fmt.Fprintf(&buf, "  %q -- %q;\n", id, names[v])
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func varLabel(name string, v *solver.Variable, detailed bool) string {
	if !detailed {
		return name
	}
	return fmt.Sprintf("%s\n%g (%s)", name, v.Value(), v.Strength())
}

func conLabel(def diagram.ConstraintDef) string {
	switch def.Kind {
	case diagram.KindLessThan:
		if def.Delta != 0 {
			return fmt.Sprintf("%s\ndelta=%g", def.Kind, def.Delta)
		}
	case diagram.KindBalance:
		if def.Ratio != nil {
			return fmt.Sprintf("%s\nratio=%g", def.Kind, *def.Ratio)
		}
	}
	return def.Kind
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(dot, graphviz.SVG, &buf); err != nil {
		return nil, err
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(dot, graphviz.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func render(dot string, format graphviz.Format, buf *bytes.Buffer) error {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := gv.Render(ctx, g, format, buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg tag so the image scales cleanly when
// embedded; Graphviz emits points-based width/height that browsers honor
// over the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Formats supported by Render.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Render produces one artifact in the named format.
func Render(d *diagram.Diagram, format string, opts Options) ([]byte, error) {
	dot := ToDOT(d, opts)
	switch strings.ToLower(format) {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(dot)
	case FormatPNG:
		return RenderPNG(dot)
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}
