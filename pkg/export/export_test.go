package export

import (
	"strings"
	"testing"

	"github.com/matzehuels/tenon/pkg/diagram"
)

func buildDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	d, err := diagram.Build(&diagram.Definition{
		Name: "box",
		Variables: []diagram.VariableDef{
			{Name: "left", Value: 0, Strength: "strong"},
			{Name: "right", Value: 10, Strength: "strong"},
			{Name: "mid", Value: 5, Strength: "weak"},
		},
		Constraints: []diagram.ConstraintDef{
			{Kind: diagram.KindCenter, A: "left", B: "right", Center: "mid"},
			{Kind: diagram.KindLessThan, Smaller: "left", Bigger: "right", Delta: 2},
		},
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return d
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(buildDiagram(t), Options{})

	for _, want := range []string{
		"graph G {",
		`"left" [shape=ellipse`,
		`"right" [shape=ellipse`,
		`"mid" [shape=ellipse`,
		`"c0" [shape=box`,
		`"c1" [shape=box`,
		"center",
		"lessthan\\ndelta=2",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// The weakest variable of the center constraint is the weak midpoint;
	// its edge is the highlighted one.
	if !strings.Contains(dot, `"c0" -- "mid" [color=red`) {
		t.Errorf("DOT should highlight the weakest edge:\n%s", dot)
	}
	if strings.Contains(dot, `"c0" -- "left" [color=red`) {
		t.Errorf("DOT highlighted a non-weakest edge:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(buildDiagram(t), Options{Detailed: true})

	if !strings.Contains(dot, "left\\n0 (strong)") {
		t.Errorf("detailed DOT should include value and strength:\n%s", dot)
	}
}

func TestRenderDOTFormat(t *testing.T) {
	data, err := Render(buildDiagram(t), FormatDOT, Options{})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.HasPrefix(string(data), "graph G {") {
		t.Errorf("unexpected DOT output: %.40s", data)
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	if _, err := Render(buildDiagram(t), "gif", Options{}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>` + "\n" +
		`<svg width="134pt" height="116pt" viewBox="0.00 0.00 134.00 116.00" xmlns="http://www.w3.org/2000/svg">` +
		`<g></g></svg>`)

	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 134.00 116.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="134" height="116"`) {
		t.Errorf("width/height not rewritten: %s", out)
	}
	if strings.Contains(out, "134pt") {
		t.Errorf("points-based dimensions survived: %s", out)
	}
}

func TestNormalizeViewBoxNoMatch(t *testing.T) {
	in := []byte("<svg><g></g></svg>")
	if string(normalizeViewBox(in)) != string(in) {
		t.Error("svg without viewBox should pass through unchanged")
	}
}
