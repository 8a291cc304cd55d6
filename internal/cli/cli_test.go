package cli

import (
	"io"
	"reflect"
	"testing"

	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/pipeline"
)

func TestParseSets(t *testing.T) {
	sets, err := parseSets([]string{"mid=12", "left=-3.5"})
	if err != nil {
		t.Fatalf("parseSets() error: %v", err)
	}
	want := map[string]float64{"mid": 12, "left": -3.5}
	if !reflect.DeepEqual(sets, want) {
		t.Errorf("parseSets() = %v, want %v", sets, want)
	}
}

func TestParseSetsEmpty(t *testing.T) {
	sets, err := parseSets(nil)
	if err != nil {
		t.Fatalf("parseSets() error: %v", err)
	}
	if sets != nil {
		t.Errorf("parseSets(nil) = %v, want nil", sets)
	}
}

func TestSplitPinErrors(t *testing.T) {
	for _, bad := range []string{"mid", "=12", "mid=twelve", "mid="} {
		if _, _, err := splitPin(bad); err == nil {
			t.Errorf("splitPin(%q) expected error", bad)
		}
	}
}

func TestParseFormatsDefault(t *testing.T) {
	formats := parseFormats("")
	if !reflect.DeepEqual(formats, []string{pipeline.FormatSVG}) {
		t.Errorf("parseFormats(\"\") = %v, want [svg]", formats)
	}

	formats = parseFormats("dot,png")
	if !reflect.DeepEqual(formats, []string{"dot", "png"}) {
		t.Errorf("parseFormats = %v, want [dot png]", formats)
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		output string
		input  string
		format string
		multi  bool
		want   string
	}{
		{"", "box.toml", "svg", false, "box.svg"},
		{"out.svg", "box.toml", "svg", false, "out.svg"},
		{"", "box.toml", "dot", true, "box.dot"},
		{"out", "box.toml", "png", true, "out.png"},
		{"out.svg", "box.toml", "png", true, "out.png"},
	}
	for _, tt := range tests {
		got := artifactPath(tt.output, tt.input, tt.format, tt.multi)
		if got != tt.want {
			t.Errorf("artifactPath(%q, %q, %q, %v) = %q, want %q",
				tt.output, tt.input, tt.format, tt.multi, got, tt.want)
		}
	}
}

func TestConstraintLabel(t *testing.T) {
	ratio := 0.25
	tests := []struct {
		def  diagram.ConstraintDef
		want string
	}{
		{diagram.ConstraintDef{Kind: diagram.KindEquals, A: "a", B: "b"}, "a = b"},
		{diagram.ConstraintDef{Kind: diagram.KindCenter, A: "l", B: "r", Center: "m"}, "m centers l..r"},
		{diagram.ConstraintDef{Kind: diagram.KindLessThan, Smaller: "s", Bigger: "b"}, "s ≤ b"},
		{diagram.ConstraintDef{Kind: diagram.KindLessThan, Smaller: "s", Bigger: "b", Delta: 2}, "s + 2 ≤ b"},
		{diagram.ConstraintDef{Kind: diagram.KindBalance, B1: "l", B2: "r", V: "v"}, "v between l and r"},
		{diagram.ConstraintDef{Kind: diagram.KindBalance, B1: "l", B2: "r", V: "v", Ratio: &ratio}, "v between l and r (ratio 0.25)"},
		{diagram.ConstraintDef{Kind: diagram.KindLine, Start: []string{"sx", "sy"}, End: []string{"ex", "ey"}, Point: []string{"px", "py"}}, "(px, py) on (sx, sy)–(ex, ey)"},
		{diagram.ConstraintDef{Kind: diagram.KindEquation}, "equation"},
	}
	for _, tt := range tests {
		if got := constraintLabel(tt.def); got != tt.want {
			t.Errorf("constraintLabel(%s) = %q, want %q", tt.def.Kind, got, tt.want)
		}
	}
}

func TestSolutionRowsOrder(t *testing.T) {
	result := &pipeline.Result{
		Definition: &diagram.Definition{
			Variables: []diagram.VariableDef{
				{Name: "left", Strength: "strong"},
				{Name: "right"},
			},
		},
		Solution: map[string]float64{
			"right": 20,
			"zeta":  1, // produced outside the manifest
			"left":  0,
		},
	}

	rows := solutionRows(result)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	var names []string
	for _, row := range rows {
		names = append(names, row[0])
	}
	// Declared order first, extras appended alphabetically.
	for i, want := range []string{"left", "right", "zeta"} {
		if names[i] != StyleValue.Render(want) {
			t.Errorf("row %d = %q, want %q", i, names[i], want)
		}
	}
}

func TestNewConstraintListModel(t *testing.T) {
	def, err := diagram.Parse([]byte(`{
		"name": "box",
		"variables": [
			{"name": "left", "value": 0, "strength": "strong"},
			{"name": "right", "value": 20, "strength": "strong"},
			{"name": "mid", "value": 0, "strength": "weak"}
		],
		"constraints": [
			{"kind": "center", "a": "left", "b": "right", "center": "mid"}
		]
	}`), diagram.FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	d, err := diagram.Build(def)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if err := d.Resolve(); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	m := newConstraintListModel(d)
	if len(m.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(m.Rows))
	}
	row := m.Rows[0]
	if row.Kind != diagram.KindCenter {
		t.Errorf("kind = %q, want center", row.Kind)
	}
	if row.Weakest != "mid" {
		t.Errorf("weakest = %q, want mid", row.Weakest)
	}
	if len(row.Vars) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(row.Vars))
	}
	for _, v := range row.Vars {
		if v.Name == "mid" {
			if v.Value != 10 {
				t.Errorf("mid = %v, want 10", v.Value)
			}
			if !v.Weakest {
				t.Error("mid should be flagged weakest")
			}
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"solve": false, "viz": false, "inspect": false,
		"serve": false, "cache": false, "completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
